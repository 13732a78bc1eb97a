// Package products wraps the catalogue endpoints: products, categories and reviews.
package products

import (
	"context"
	"fmt"
	"net/url"

	"storefront/internal/client"
)

// Service defines the catalogue operations
type Service interface {
	List(ctx context.Context, params ListParams) (*client.Page[Product], error)
	Get(ctx context.Context, id int64) (*Product, error)
	Categories(ctx context.Context) (*client.Page[Category], error)
	Reviews(ctx context.Context, productID int64, params client.PageParams) (*client.Page[Review], error)
	CreateReview(ctx context.Context, productID int64, review ReviewInput) (*Review, error)
}

type service struct {
	client *client.Client
}

// NewService creates the catalogue service
func NewService(c *client.Client) Service {
	return &service{client: c}
}

func (s *service) List(ctx context.Context, params ListParams) (*client.Page[Product], error) {
	var page client.Page[Product]
	if err := s.client.Get(ctx, "/products/", params.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *service) Get(ctx context.Context, id int64) (*Product, error) {
	var product Product
	if err := s.client.Get(ctx, fmt.Sprintf("/products/%d/", id), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *service) Categories(ctx context.Context) (*client.Page[Category], error) {
	var page client.Page[Category]
	if err := s.client.Get(ctx, "/categories/", nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *service) Reviews(ctx context.Context, productID int64, params client.PageParams) (*client.Page[Review], error) {
	q := url.Values{}
	params.Apply(q)

	var page client.Page[Review]
	if err := s.client.Get(ctx, fmt.Sprintf("/products/%d/reviews/", productID), q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *service) CreateReview(ctx context.Context, productID int64, review ReviewInput) (*Review, error) {
	var created Review
	if err := s.client.Post(ctx, fmt.Sprintf("/products/%d/reviews/", productID), review, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
