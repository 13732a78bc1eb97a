package products

import (
	"encoding/json"
	"net/url"

	"storefront/internal/client"
)

// Category is a product category; Parent is nil for top-level categories
type Category struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Parent    *int64 `json:"parent"`
	Level     int    `json:"level"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Image is a product picture
type Image struct {
	ID       int64  `json:"id"`
	ImageURL string `json:"image_url"`
	IsMain   bool   `json:"is_main"`
}

// Specification is a name/value product attribute
type Specification struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Product is a catalogue entry. Prices are decimals sent as strings or numbers.
type Product struct {
	ID             int64           `json:"id"`
	Category       int64           `json:"category"`
	CategoryName   string          `json:"category_name,omitempty"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Price          json.Number     `json:"price"`
	Stock          int             `json:"stock"`
	Sales          int             `json:"sales"`
	IsActive       bool            `json:"is_active"`
	Images         []Image         `json:"images,omitempty"`
	Specifications []Specification `json:"specifications,omitempty"`
	CreatedAt      string          `json:"created_at,omitempty"`
	UpdatedAt      string          `json:"updated_at,omitempty"`
}

// MainImage returns the main picture URL, falling back to the first one
func (p Product) MainImage() string {
	for _, img := range p.Images {
		if img.IsMain {
			return img.ImageURL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].ImageURL
	}
	return ""
}

// Review is a customer review of a product
type Review struct {
	ID        int64  `json:"id"`
	Rating    int    `json:"rating"`
	Content   string `json:"content"`
	Username  string `json:"username,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ReviewInput is the payload for a new review
type ReviewInput struct {
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

// ListParams filters the product list
type ListParams struct {
	client.PageParams
	Search   string
	Category int64
	Ordering string
}

func (p ListParams) values() url.Values {
	q := url.Values{}
	p.PageParams.Apply(q)
	client.SetString(q, "search", p.Search)
	client.SetInt(q, "category", int(p.Category))
	client.SetString(q, "ordering", p.Ordering)
	return q
}
