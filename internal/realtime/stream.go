// Package realtime abstracts the live event channel the backend pushes order
// and rider updates on. Topics follow the backend's naming scheme:
// "order-update-{orderId}" and "rider-location-{orderId}".
package realtime

import (
	"context"
	"fmt"
)

// Stream delivers raw event payloads for a topic. The returned channel is
// closed when ctx is cancelled or the underlying transport drops; the
// subscriber does not auto-retry — restarting is the caller's job.
type Stream interface {
	Subscribe(ctx context.Context, topic string) (<-chan []byte, error)
}

func OrderTopic(orderID string) string {
	return fmt.Sprintf("order-update-%s", orderID)
}

func RiderTopic(orderID string) string {
	return fmt.Sprintf("rider-location-%s", orderID)
}
