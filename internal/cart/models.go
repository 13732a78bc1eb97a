package cart

import (
	"encoding/json"

	"storefront/internal/products"
)

// Item is one line of the shopping cart
type Item struct {
	ID         int64             `json:"id"`
	Product    *products.Product `json:"product,omitempty"`
	Quantity   int               `json:"quantity"`
	Selected   bool              `json:"selected"`
	TotalPrice json.Number       `json:"total_price,omitempty"`
	CreatedAt  string            `json:"created_at,omitempty"`
	UpdatedAt  string            `json:"updated_at,omitempty"`
}

// NewItem adds a product to the cart
type NewItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// ItemUpdate changes the quantity or selection of a cart line
type ItemUpdate struct {
	Quantity int   `json:"quantity"`
	Selected *bool `json:"selected,omitempty"`
}
