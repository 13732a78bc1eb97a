// Package orders wraps the order endpoints: checkout, payment and the order lifecycle actions.
package orders

import (
	"context"
	"fmt"

	"storefront/internal/client"
)

const basePath = "/orders/orders/"

// Service defines the order operations
type Service interface {
	List(ctx context.Context, params ListParams) (*client.Page[Order], error)
	Get(ctx context.Context, id int64) (*Order, error)
	Create(ctx context.Context, order NewOrder) (*Order, error)
	Cancel(ctx context.Context, id int64) (*client.Ack, error)
	Pay(ctx context.Context, id int64, payment Payment) (*PaymentResult, error)
	PaymentStatus(ctx context.Context, id int64) (*PaymentStatus, error)
	ConfirmReceive(ctx context.Context, id int64) (*client.Ack, error)
	Products(ctx context.Context, id int64) (*client.Page[Item], error)
}

type service struct {
	client *client.Client
}

// NewService creates the order service
func NewService(c *client.Client) Service {
	return &service{client: c}
}

func orderPath(id int64, action string) string {
	if action == "" {
		return fmt.Sprintf("%s%d/", basePath, id)
	}
	return fmt.Sprintf("%s%d/%s/", basePath, id, action)
}

func (s *service) List(ctx context.Context, params ListParams) (*client.Page[Order], error) {
	var page client.Page[Order]
	if err := s.client.Get(ctx, basePath, params.Values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *service) Get(ctx context.Context, id int64) (*Order, error) {
	var order Order
	if err := s.client.Get(ctx, orderPath(id, ""), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *service) Create(ctx context.Context, order NewOrder) (*Order, error) {
	if order.ShippingAddress == 0 {
		order.ShippingAddress = order.AddressID
	}

	var created Order
	if err := s.client.Post(ctx, basePath, order, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *service) Cancel(ctx context.Context, id int64) (*client.Ack, error) {
	return s.action(ctx, id, "cancel")
}

func (s *service) Pay(ctx context.Context, id int64, payment Payment) (*PaymentResult, error) {
	var result PaymentResult
	if err := s.client.Post(ctx, orderPath(id, "pay"), payment, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) PaymentStatus(ctx context.Context, id int64) (*PaymentStatus, error) {
	var status PaymentStatus
	if err := s.client.Get(ctx, orderPath(id, "payment_status"), nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (s *service) ConfirmReceive(ctx context.Context, id int64) (*client.Ack, error) {
	return s.action(ctx, id, "confirm_receive")
}

func (s *service) Products(ctx context.Context, id int64) (*client.Page[Item], error) {
	var page client.Page[Item]
	if err := s.client.Get(ctx, orderPath(id, "products"), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *service) action(ctx context.Context, id int64, name string) (*client.Ack, error) {
	var ack client.Ack
	if err := s.client.Post(ctx, orderPath(id, name), nil, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}
