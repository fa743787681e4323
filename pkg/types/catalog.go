package types

import "time"

// CatalogItem is a sellable product or service. Deactivated items stay in
// storage for historical line items but no longer resolve a price.
type CatalogItem struct {
	ItemID    string    `json:"item_id"` // UUID v7, generated on creation.
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	Unit      string    `json:"unit,omitempty"` // e.g. "bag", "liter", "hectare".
	Price     float64   `json:"price"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
