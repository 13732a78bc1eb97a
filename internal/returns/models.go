package returns

import (
	"io"
	"net/url"

	"storefront/internal/client"
	"storefront/internal/orders"
)

// Type distinguishes returns from exchanges
type Type int

const (
	TypeReturn   Type = 1
	TypeExchange Type = 2
)

// Status is the review state of a return request
type Status int

const (
	StatusPending   Status = 0
	StatusApproved  Status = 1
	StatusRejected  Status = 2
	StatusCompleted Status = 3
	StatusCancelled Status = 4
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Image is a picture attached to a return request
type Image struct {
	ID        int64  `json:"id"`
	Image     string `json:"image"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Request is a return or exchange request
type Request struct {
	ID            int64         `json:"id"`
	Order         *orders.Order `json:"order,omitempty"`
	Type          Type          `json:"type"`
	TypeDisplay   string        `json:"type_display,omitempty"`
	Reason        string        `json:"reason"`
	Status        Status        `json:"status"`
	StatusDisplay string        `json:"status_display,omitempty"`
	Images        []Image       `json:"images,omitempty"`
	CreatedAt     string        `json:"created_at,omitempty"`
	UpdatedAt     string        `json:"updated_at,omitempty"`
}

// NewRequest opens a return request for an order
type NewRequest struct {
	OrderID int64    `json:"order_id"`
	Type    Type     `json:"type"`
	Reason  string   `json:"reason"`
	Images  []string `json:"images,omitempty"`
}

// Upload is an image to attach to a return request
type Upload struct {
	Filename    string
	ContentType string
	Content     io.Reader
	Fields      map[string]string
}

// UploadResult is the stored image reference
type UploadResult struct {
	ID    int64  `json:"id,omitempty"`
	URL   string `json:"url,omitempty"`
	Image string `json:"image,omitempty"`
}

// Location returns the URL of the uploaded image
func (r UploadResult) Location() string {
	if r.URL != "" {
		return r.URL
	}
	return r.Image
}

// ShippingInfo is the carrier information for goods sent back
type ShippingInfo struct {
	ShippingCompany string `json:"shipping_company"`
	ShippingNo      string `json:"shipping_no"`
}

// ListParams filters the return request list
type ListParams struct {
	client.PageParams
	Status *Status
	Type   Type
}

func (p ListParams) values() url.Values {
	q := url.Values{}
	p.PageParams.Apply(q)
	if p.Status != nil {
		status := int(*p.Status)
		client.SetIntPtr(q, "status", &status)
	}
	client.SetInt(q, "type", int(p.Type))
	return q
}
