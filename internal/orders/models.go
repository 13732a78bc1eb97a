package orders

import (
	"encoding/json"
	"net/url"

	"storefront/internal/client"
	"storefront/internal/products"
)

// Status is the order lifecycle state
type Status int

const (
	StatusPendingPayment  Status = 0
	StatusPendingShipment Status = 1
	StatusShipped         Status = 2
	StatusCompleted       Status = 3
	StatusCancelled       Status = 4
)

func (s Status) String() string {
	switch s {
	case StatusPendingPayment:
		return "pending payment"
	case StatusPendingShipment:
		return "pending shipment"
	case StatusShipped:
		return "shipped"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Payment methods accepted by the backend
const (
	PaymentAlipay = "alipay"
	PaymentWechat = "wechat"
)

// Item is one product line of an order
type Item struct {
	ID           int64             `json:"id"`
	Product      *products.Product `json:"product,omitempty"`
	ProductName  string            `json:"product_name"`
	ProductImage string            `json:"product_image,omitempty"`
	Price        json.Number       `json:"price"`
	Quantity     int               `json:"quantity"`
	TotalPrice   json.Number       `json:"total_price"`
	CreatedAt    string            `json:"created_at,omitempty"`
}

// Order is a placed order with its shipping snapshot
type Order struct {
	ID                    int64       `json:"id"`
	OrderNo               string      `json:"order_no"`
	TotalAmount           json.Number `json:"total_amount"`
	DiscountAmount        json.Number `json:"discount_amount,omitempty"`
	Status                Status      `json:"status"`
	StatusDisplay         string      `json:"status_display,omitempty"`
	ShippingName          string      `json:"shipping_name"`
	ShippingPhone         string      `json:"shipping_phone"`
	ShippingProvince      string      `json:"shipping_province"`
	ShippingCity          string      `json:"shipping_city"`
	ShippingDistrict      string      `json:"shipping_district"`
	ShippingAddressDetail string      `json:"shipping_address_detail"`
	ShippingNo            string      `json:"shipping_no,omitempty"`
	ShippingCompany       string      `json:"shipping_company,omitempty"`
	PaymentTime           string      `json:"payment_time,omitempty"`
	ShippingTime          string      `json:"shipping_time,omitempty"`
	CompleteTime          string      `json:"complete_time,omitempty"`
	CreatedAt             string      `json:"created_at,omitempty"`
	UpdatedAt             string      `json:"updated_at,omitempty"`
	Items                 []Item      `json:"items,omitempty"`
}

// LineItem selects a cart product and the quantity to order
type LineItem struct {
	ProductID int64 `json:"id"`
	Quantity  int   `json:"quantity"`
}

// NewOrder is the checkout payload
type NewOrder struct {
	AddressID       int64      `json:"address_id"`
	ShippingAddress int64      `json:"shipping_address"`
	Items           []LineItem `json:"items"`
	CouponID        *int64     `json:"coupon_id,omitempty"`
	PaymentMethod   string     `json:"payment_method,omitempty"`
	Remark          string     `json:"remark,omitempty"`
}

// Payment is the pay action payload
type Payment struct {
	PaymentMethod string `json:"payment_method"`
}

// PaymentResult is returned by the pay action
type PaymentResult struct {
	Detail        string      `json:"detail,omitempty"`
	PaymentNo     string      `json:"payment_no"`
	PaymentTime   string      `json:"payment_time"`
	PaymentMethod string      `json:"payment_method"`
	Amount        json.Number `json:"amount,omitempty"`
}

// PaymentStatus reports whether an order has been paid
type PaymentStatus struct {
	Status        Status `json:"status"`
	Paid          bool   `json:"paid"`
	PaymentNo     string `json:"payment_no,omitempty"`
	PaymentTime   string `json:"payment_time,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

// ListParams filters the order list
type ListParams struct {
	client.PageParams
	Status   *Status
	Search   string
	Ordering string
}

// Values encodes the non-empty filters as query parameters
func (p ListParams) Values() url.Values {
	q := url.Values{}
	p.PageParams.Apply(q)
	if p.Status != nil {
		status := int(*p.Status)
		client.SetIntPtr(q, "status", &status)
	}
	client.SetString(q, "search", p.Search)
	client.SetString(q, "ordering", p.Ordering)
	return q
}
