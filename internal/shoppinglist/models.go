package shoppinglist

import "time"

// Item is one row on an owner's shopping list. Rows are created by the
// reconciler on shortfall and toggled or consumed by the surrounding UI.
type Item struct {
	ID              int64     `json:"id"`
	OwnerID         string    `json:"owner_id"`
	Name            string    `json:"name"`
	QuantityDisplay string    `json:"quantity_display"`
	Checked         bool      `json:"checked"`
	CreatedAt       time.Time `json:"created_at"`
}
