package models

import "time"

// OrderStatus is the fixed delivery pipeline. Statuses advance strictly in
// this order, except CANCELLED which is terminal and reachable from any
// non-terminal state.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusPreparing OrderStatus = "PREPARING"
	StatusReady     OrderStatus = "READY"
	StatusPickedUp  OrderStatus = "PICKED_UP"
	StatusOnTheWay  OrderStatus = "ON_THE_WAY"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// StatusPipeline lists the non-terminal-to-terminal progression in order.
// CANCELLED is deliberately absent; it is not part of the timeline.
var StatusPipeline = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusReady,
	StatusPickedUp,
	StatusOnTheWay,
	StatusDelivered,
}

// Ordinal returns the position of s in the pipeline, or -1 for CANCELLED and
// unknown statuses.
func (s OrderStatus) Ordinal() int {
	for i, st := range StatusPipeline {
		if st == s {
			return i
		}
	}
	return -1
}

// Terminal reports whether no further status transition is expected.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// PaymentMethodType is the closed set of supported payment methods.
type PaymentMethodType string

const (
	MethodCash        PaymentMethodType = "CASH"
	MethodMobileMoney PaymentMethodType = "MOBILE_MONEY"
	MethodCard        PaymentMethodType = "CARD"
)

// PaymentMethod carries the chosen method plus method-specific data.
type PaymentMethod struct {
	Type        PaymentMethodType `json:"type" validate:"omitempty,oneof=CASH MOBILE_MONEY CARD"`
	PhoneNumber string            `json:"phone_number,omitempty"` // MOBILE_MONEY only
}

// Address is the delivery destination.
type Address struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Text         string  `json:"text"`
	Instructions string  `json:"instructions,omitempty"`
}

// OrderRequest is the body of POST /orders.
type OrderRequest struct {
	CustomerID          string        `json:"customer_id"`
	RestaurantID        string        `json:"restaurant_id"`
	Items               []LineItem    `json:"items"`
	Address             Address       `json:"address"`
	PaymentMethod       PaymentMethod `json:"payment_method"`
	SpecialInstructions string        `json:"special_instructions,omitempty"`
	Tip                 float64       `json:"tip,omitempty"`
}

// Order is the backend's view of a created order. The id is immutable; only
// Status and PaymentStatus change, and only via backend pushes.
type Order struct {
	ID            string        `json:"id"`
	OrderNumber   string        `json:"order_number"`
	Status        OrderStatus   `json:"status"`
	FinalAmount   float64       `json:"final_amount"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time     `json:"created_at"`
}

// PaymentInitiation is the provider-issued reference correlating a
// client-initiated payment with its asynchronous confirmation.
type PaymentInitiation struct {
	CheckoutRequestID string `json:"checkout_request_id,omitempty"` // mobile money
	AccessCode        string `json:"access_code,omitempty"`         // card
}

// OrderResponse is what POST /orders returns.
type OrderResponse struct {
	Order   Order              `json:"order"`
	Payment *PaymentInitiation `json:"payment,omitempty"`
}

// ErrorResponse is the uniform HTTP error body.
type ErrorResponse struct {
	Message string `json:"message"`
}
