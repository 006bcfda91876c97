// Package notify is the user-facing notification sink. Terminal checkout and
// tracking transitions are pushed here fire-and-forget; a failed notification
// never affects the state machine that emitted it.
package notify

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Notification is one user-visible message tied to an order.
type Notification struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
	OrderID string `json:"order_id"`
}

// NewNotification assigns a fresh id so downstream sinks can dedupe.
func NewNotification(title, message, orderID string) Notification {
	return Notification{
		ID:      uuid.NewString(),
		Title:   title,
		Message: message,
		OrderID: orderID,
	}
}

// Notifier delivers a notification. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Multi fans a notification out to every sink. Individual sink failures are
// logged and swallowed; Multi itself never fails.
type Multi struct {
	sinks []Notifier
}

func NewMulti(sinks ...Notifier) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Notify(ctx context.Context, n Notification) error {
	for _, s := range m.sinks {
		if err := s.Notify(ctx, n); err != nil {
			logger.Warn().Err(err).Str("order_id", n.OrderID).Msg("notification sink failed")
		}
	}
	return nil
}

// Log writes notifications to the structured log. Used in dev and as a
// fallback sink.
type Log struct{}

func (Log) Notify(ctx context.Context, n Notification) error {
	logger.Info().
		Str("order_id", n.OrderID).
		Str("title", n.Title).
		Msg(n.Message)
	return nil
}
