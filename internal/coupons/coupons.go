// Package coupons wraps the user coupon endpoints.
package coupons

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"storefront/internal/client"
)

const basePath = "/coupons/user-coupons/"

// Coupon types
const (
	TypeFixed    = 1
	TypeDiscount = 2
)

// Status of a coupon owned by the user
type Status int

const (
	StatusUnused  Status = 0
	StatusUsed    Status = 1
	StatusExpired Status = 2
)

// Coupon is the coupon definition. Amount is a fixed reduction or, for
// discount coupons, a rate out of ten.
type Coupon struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	Type          int         `json:"type"`
	TypeDisplay   string      `json:"type_display,omitempty"`
	Amount        json.Number `json:"amount"`
	MinAmount     json.Number `json:"min_amount"`
	StartTime     string      `json:"start_time,omitempty"`
	EndTime       string      `json:"end_time,omitempty"`
	Status        int         `json:"status"`
	StatusDisplay string      `json:"status_display,omitempty"`
}

// UserCoupon is a coupon claimed by the user
type UserCoupon struct {
	ID            int64  `json:"id"`
	Coupon        Coupon `json:"coupon"`
	Status        Status `json:"status"`
	StatusDisplay string `json:"status_display,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
	UsedAt        string `json:"used_at,omitempty"`
}

// Service defines the coupon operations
type Service interface {
	List(ctx context.Context) (*client.Page[UserCoupon], error)
	Available(ctx context.Context) (*client.Page[UserCoupon], error)
	Use(ctx context.Context, id int64) (*client.Ack, error)
}

type service struct {
	client *client.Client
}

// NewService creates the coupon service
func NewService(c *client.Client) Service {
	return &service{client: c}
}

// List returns every coupon of the user
func (s *service) List(ctx context.Context) (*client.Page[UserCoupon], error) {
	return s.list(ctx, nil)
}

// Available returns the unused coupons
func (s *service) Available(ctx context.Context) (*client.Page[UserCoupon], error) {
	status := int(StatusUnused)
	q := url.Values{}
	client.SetIntPtr(q, "status", &status)
	return s.list(ctx, q)
}

func (s *service) list(ctx context.Context, q url.Values) (*client.Page[UserCoupon], error) {
	var page client.Page[UserCoupon]
	if err := s.client.Get(ctx, basePath, q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Use marks a coupon as used
func (s *service) Use(ctx context.Context, id int64) (*client.Ack, error) {
	var ack client.Ack
	if err := s.client.Post(ctx, fmt.Sprintf("%s%d/use/", basePath, id), nil, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}
