// Package addresses wraps the per-user shipping address endpoints. Every path is
// scoped by the signed-in user's id.
package addresses

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/client"
)

// ErrNoUser is returned when there is no signed-in user to scope the request
var ErrNoUser = errors.New("no signed-in user")

// UserSource yields the id of the signed-in user
type UserSource interface {
	UserID() (int64, bool)
}

// Service defines the address operations
type Service interface {
	List(ctx context.Context) (*client.Page[Address], error)
	Create(ctx context.Context, addr Input) (*Address, error)
	Update(ctx context.Context, id int64, addr Input) (*Address, error)
	Delete(ctx context.Context, id int64) error
	SetDefault(ctx context.Context, id int64) (*client.Ack, error)
}

type service struct {
	client *client.Client
	users  UserSource
}

// NewService creates the address service
func NewService(c *client.Client, users UserSource) Service {
	return &service{client: c, users: users}
}

func (s *service) basePath() (string, error) {
	uid, ok := s.users.UserID()
	if !ok {
		return "", ErrNoUser
	}
	return fmt.Sprintf("/users/%d/addresses/", uid), nil
}

func (s *service) itemPath(id int64, action string) (string, error) {
	base, err := s.basePath()
	if err != nil {
		return "", err
	}
	if action == "" {
		return fmt.Sprintf("%s%d/", base, id), nil
	}
	return fmt.Sprintf("%s%d/%s/", base, id, action), nil
}

func (s *service) List(ctx context.Context) (*client.Page[Address], error) {
	path, err := s.basePath()
	if err != nil {
		return nil, err
	}

	var page client.Page[Address]
	if err := s.client.Get(ctx, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *service) Create(ctx context.Context, addr Input) (*Address, error) {
	path, err := s.basePath()
	if err != nil {
		return nil, err
	}

	var created Address
	if err := s.client.Post(ctx, path, addr, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *service) Update(ctx context.Context, id int64, addr Input) (*Address, error) {
	path, err := s.itemPath(id, "")
	if err != nil {
		return nil, err
	}

	var updated Address
	if err := s.client.Put(ctx, path, addr, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	path, err := s.itemPath(id, "")
	if err != nil {
		return err
	}
	return s.client.Delete(ctx, path, nil)
}

func (s *service) SetDefault(ctx context.Context, id int64) (*client.Ack, error) {
	path, err := s.itemPath(id, "set_default")
	if err != nil {
		return nil, err
	}

	var ack client.Ack
	if err := s.client.Post(ctx, path, nil, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}
