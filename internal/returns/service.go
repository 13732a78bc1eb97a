// Package returns wraps the return and exchange endpoints, including the image
// upload and the order lookups the return flow needs.
package returns

import (
	"context"
	"fmt"

	"storefront/internal/client"
	"storefront/internal/orders"
)

const (
	basePath   = "/returns/requests/"
	uploadPath = "/returns/upload/"
	orderPath  = "/orders/orders/"

	// ImageField is the multipart part name of an uploaded image
	ImageField = "image"
)

// Service defines the return operations
type Service interface {
	List(ctx context.Context, params ListParams) (*client.Page[Request], error)
	Get(ctx context.Context, id int64) (*Request, error)
	Create(ctx context.Context, req NewRequest) (*Request, error)
	UploadImage(ctx context.Context, upload Upload) (*UploadResult, error)
	SubmitShipping(ctx context.Context, id int64, info ShippingInfo) (*client.Ack, error)
	ReturnableOrders(ctx context.Context, params orders.ListParams) (*client.Page[orders.Order], error)
	SearchOrders(ctx context.Context, params orders.ListParams) (*client.Page[orders.Order], error)
	OrderDetail(ctx context.Context, id int64) (*orders.Order, error)
	OrderProducts(ctx context.Context, id int64) (*client.Page[orders.Item], error)
}

type service struct {
	client *client.Client
}

// NewService creates the return service
func NewService(c *client.Client) Service {
	return &service{client: c}
}

func (s *service) List(ctx context.Context, params ListParams) (*client.Page[Request], error) {
	var page client.Page[Request]
	if err := s.client.Get(ctx, basePath, params.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *service) Get(ctx context.Context, id int64) (*Request, error) {
	var req Request
	if err := s.client.Get(ctx, fmt.Sprintf("%s%d/", basePath, id), nil, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *service) Create(ctx context.Context, req NewRequest) (*Request, error) {
	var created Request
	if err := s.client.Post(ctx, basePath, req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UploadImage sends one image as multipart/form-data
func (s *service) UploadImage(ctx context.Context, upload Upload) (*UploadResult, error) {
	form := client.Form{
		Fields: upload.Fields,
		Files: []client.File{{
			Field:       ImageField,
			Filename:    upload.Filename,
			ContentType: upload.ContentType,
			Content:     upload.Content,
		}},
	}

	var result UploadResult
	if err := s.client.Upload(ctx, uploadPath, form, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) SubmitShipping(ctx context.Context, id int64, info ShippingInfo) (*client.Ack, error) {
	var ack client.Ack
	if err := s.client.Post(ctx, fmt.Sprintf("%s%d/shipping/", basePath, id), info, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// ReturnableOrders lists orders eligible for a return; only completed orders
// qualify unless params asks for another status.
func (s *service) ReturnableOrders(ctx context.Context, params orders.ListParams) (*client.Page[orders.Order], error) {
	if params.Status == nil {
		completed := orders.StatusCompleted
		params.Status = &completed
	}
	return s.SearchOrders(ctx, params)
}

func (s *service) SearchOrders(ctx context.Context, params orders.ListParams) (*client.Page[orders.Order], error) {
	var page client.Page[orders.Order]
	if err := s.client.Get(ctx, orderPath, params.Values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *service) OrderDetail(ctx context.Context, id int64) (*orders.Order, error) {
	var order orders.Order
	if err := s.client.Get(ctx, fmt.Sprintf("%s%d/", orderPath, id), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *service) OrderProducts(ctx context.Context, id int64) (*client.Page[orders.Item], error) {
	var page client.Page[orders.Item]
	if err := s.client.Get(ctx, fmt.Sprintf("%s%d/products/", orderPath, id), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
