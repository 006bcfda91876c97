package models

import "errors"

// Precondition errors: checkout is rejected before any backend call is made.
// These are never retried; the message is shown to the user as-is.
var ErrMissingAddress = errors.New("please select a delivery address")
var ErrMissingPaymentMethod = errors.New("please select a payment method")
var ErrEmptyCart = errors.New("your cart is empty")
var ErrMissingRestaurant = errors.New("restaurant could not be resolved")
var ErrNoSession = errors.New("you must be signed in to place an order")

// ErrTransport wraps a network or backend failure on create/fetch/poll calls.
// The backend's own message is attached by the caller.
var ErrTransport = errors.New("request failed")

// ErrPaymentInitiation means the order was created but the backend did not
// return the initiation handle needed for the chosen payment method. The
// order exists and must not be silently abandoned.
var ErrPaymentInitiation = errors.New("payment initialization failed")

// ErrPaymentNotVerified means the payment's outcome could not be confirmed
// within the polling budget. Absence of confirmation is never success.
var ErrPaymentNotVerified = errors.New("could not verify payment")

var ErrOrderNotFound = errors.New("order not found")

// IsPrecondition reports whether err is one of the client-side checkout
// precondition failures.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrMissingAddress) ||
		errors.Is(err, ErrMissingPaymentMethod) ||
		errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrMissingRestaurant) ||
		errors.Is(err, ErrNoSession)
}
