// Package cart wraps the shopping cart endpoints.
package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/internal/client"
)

// Service defines the cart operations
type Service interface {
	List(ctx context.Context) (*client.Page[Item], error)
	Add(ctx context.Context, item NewItem) (*Item, error)
	Update(ctx context.Context, id int64, update ItemUpdate) (*Item, error)
	Remove(ctx context.Context, id int64) error
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

type service struct {
	client *client.Client
}

// NewService creates the cart service
func NewService(c *client.Client) Service {
	return &service{client: c}
}

func (s *service) List(ctx context.Context) (*client.Page[Item], error) {
	var page client.Page[Item]
	if err := s.client.Get(ctx, "/cart/", nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *service) Add(ctx context.Context, item NewItem) (*Item, error) {
	var added Item
	if err := s.client.Post(ctx, "/cart/", item, &added); err != nil {
		return nil, err
	}
	return &added, nil
}

func (s *service) Update(ctx context.Context, id int64, update ItemUpdate) (*Item, error) {
	var updated Item
	if err := s.client.Put(ctx, fmt.Sprintf("/cart/%d/", id), update, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *service) Remove(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/cart/%d/", id), nil)
}

func (s *service) Clear(ctx context.Context) error {
	return s.client.Post(ctx, "/cart/clear/", nil, nil)
}

// Count returns the number of items in the cart. The backend answers either a
// bare number or an object with a count field.
func (s *service) Count(ctx context.Context) (int, error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, "/cart/count/", nil, &raw); err != nil {
		return 0, err
	}
	return parseCount(raw)
}

func parseCount(raw json.RawMessage) (int, error) {
	if len(raw) == 0 {
		return 0, nil
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var body struct {
		Count *int `json:"count"`
		Total *int `json:"total"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return 0, fmt.Errorf("unexpected cart count payload: %w", err)
	}
	switch {
	case body.Count != nil:
		return *body.Count, nil
	case body.Total != nil:
		return *body.Total, nil
	}
	return 0, fmt.Errorf("unexpected cart count payload: %s", raw)
}
