package models

import "math"

// LineItem is a single cart entry at checkout time.
type LineItem struct {
	MenuItemID          string  `json:"menu_item_id" validate:"required"`
	UnitPrice           float64 `json:"unit_price" validate:"gte=0"`
	Quantity            int     `json:"quantity" validate:"required,gt=0"`
	SpecialInstructions string  `json:"special_instructions,omitempty"`
}

// CartSnapshot is an immutable pricing of the cart. It is computed once, after
// the delivery fee has been resolved, and recomputed from scratch on every
// cart mutation; it is never patched in place.
type CartSnapshot struct {
	RestaurantID string     `json:"restaurant_id"`
	Items        []LineItem `json:"items"`
	Subtotal     float64    `json:"subtotal"`
	Tax          float64    `json:"tax"`
	DeliveryFee  float64    `json:"delivery_fee"`
	Total        float64    `json:"total"`
}

// NewCartSnapshot prices the cart. Total = Subtotal + Tax + DeliveryFee holds
// exactly for the returned snapshot.
func NewCartSnapshot(restaurantID string, items []LineItem, deliveryFee, taxRate float64) *CartSnapshot {
	subtotal := 0.0
	for _, it := range items {
		subtotal += it.UnitPrice * float64(it.Quantity)
	}
	tax := roundMoney(subtotal * taxRate)
	copied := make([]LineItem, len(items))
	copy(copied, items)
	return &CartSnapshot{
		RestaurantID: restaurantID,
		Items:        copied,
		Subtotal:     subtotal,
		Tax:          tax,
		DeliveryFee:  deliveryFee,
		Total:        subtotal + tax + deliveryFee,
	}
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
