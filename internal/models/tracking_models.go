package models

import "time"

// TrackingEvent is a raw status event from the live stream.
type TrackingEvent struct {
	Status    OrderStatus      `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Location  *CourierLocation `json:"location,omitempty"`
}

// CourierLocation is a rider position pushed on the location topic. Nearby is
// derived by the backend from distance to the destination.
type CourierLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Nearby    bool    `json:"nearby"`
}

// TrackingHistoryItem is one rendered row of the tracking timeline.
type TrackingHistoryItem struct {
	Status    OrderStatus `json:"status"`
	Message   string      `json:"message"`
	Completed bool        `json:"completed"`
}

// TrackingView is the reconciled, renderable state of one tracked order. It
// is rebuilt from scratch on every received event.
type TrackingView struct {
	OrderID       string                `json:"order_id"`
	CurrentStatus OrderStatus           `json:"current_status"`
	PaymentStatus PaymentStatus         `json:"payment_status"`
	Timeline      []TrackingHistoryItem `json:"timeline"`
	Location      *CourierLocation      `json:"location,omitempty"`
	CourierNearby bool                  `json:"courier_nearby"`
	Cancelled     bool                  `json:"cancelled"`
	Delivered     bool                  `json:"delivered"`
}

// StatusMessage is the user-facing label for each pipeline status.
func StatusMessage(s OrderStatus) string {
	switch s {
	case StatusPending:
		return "Order placed"
	case StatusConfirmed:
		return "Restaurant confirmed your order"
	case StatusPreparing:
		return "Your food is being prepared"
	case StatusReady:
		return "Order ready for pickup"
	case StatusPickedUp:
		return "Rider picked up your order"
	case StatusOnTheWay:
		return "Rider is on the way"
	case StatusDelivered:
		return "Order delivered"
	case StatusCancelled:
		return "Order cancelled"
	default:
		return string(s)
	}
}
