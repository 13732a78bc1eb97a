// Package auth implements the account operations of the storefront: login,
// registration, logout, profile and password changes. Successful calls update
// the session; failures are normalised into a single *Error message.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"storefront/internal/client"
	"storefront/internal/session"
)

// Default messages used when the backend gives no usable error text
const (
	MessageLoginFailed          = "login failed"
	MessageRegistrationFailed   = "registration failed"
	MessageUpdateProfileFailed  = "failed to update profile"
	MessageChangePasswordFailed = "failed to change password"
	MessageProfileFailed        = "failed to load profile"
	MessageSessionExpired       = "login expired, please log in again"
)

var (
	// ErrNotAuthenticated is returned when an operation needs a session and there is none
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSessionExpired is returned when the stored token expired before the call
	ErrSessionExpired = errors.New("session expired")
	// ErrMissingToken is returned when a login response carries no token
	ErrMissingToken = errors.New("login response has no token")
)

// Error is the uniform failure of an auth operation
type Error struct {
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Service defines the account operations
type Service interface {
	Login(ctx context.Context, creds Credentials) (*LoginResponse, error)
	Register(ctx context.Context, reg Registration) (*session.User, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*session.User, error)
	UpdateProfile(ctx context.Context, update ProfileUpdate) (*session.User, error)
	ChangePassword(ctx context.Context, change PasswordChange) error
}

type service struct {
	client  *client.Client
	session *session.Manager
	logger  *slog.Logger
}

// NewService creates the auth service on top of the backend client and session
func NewService(c *client.Client, m *session.Manager, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{client: c, session: m, logger: logger}
}

// Login authenticates and stores the returned token and user
func (s *service) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	var resp LoginResponse
	if err := s.client.Post(ctx, "/users/login/", creds, &resp); err != nil {
		return nil, normalize("login", err, MessageLoginFailed)
	}
	if resp.Token == "" {
		return nil, &Error{Op: "login", Message: MessageLoginFailed, Err: ErrMissingToken}
	}

	if err := s.session.SetAuth(ctx, resp.Token, resp.User); err != nil {
		return &resp, fmt.Errorf("failed to persist session: %w", err)
	}

	s.logger.Info("User logged in", "username", creds.Username)
	return &resp, nil
}

// Register creates an account. It does not log in.
func (s *service) Register(ctx context.Context, reg Registration) (*session.User, error) {
	payload := registrationPayload{
		Username:  reg.Username,
		Email:     reg.Email,
		Password:  reg.Password,
		Password2: reg.ConfirmPassword,
		Phone:     reg.Phone,
	}

	var user session.User
	if err := s.client.Post(ctx, "/users/", payload, &user); err != nil {
		return nil, normalize("register", err, MessageRegistrationFailed)
	}

	s.logger.Info("User registered", "username", reg.Username)
	return &user, nil
}

// Logout tells the backend and always clears the local session
func (s *service) Logout(ctx context.Context) error {
	if err := s.client.Post(ctx, "/users/logout/", nil, nil); err != nil {
		s.logger.Warn("Logout request failed", "error", err)
	}
	return s.session.ClearAuth(ctx)
}

// Profile fetches the current user and refreshes the cached copy
func (s *service) Profile(ctx context.Context) (*session.User, error) {
	if err := s.requireFreshSession(ctx, "profile"); err != nil {
		return nil, err
	}

	var user session.User
	if err := s.client.Get(ctx, "/users/profile/", nil, &user); err != nil {
		return nil, normalize("profile", err, MessageProfileFailed)
	}
	if err := s.session.SetUser(ctx, &user); err != nil {
		s.logger.Warn("Failed to persist user", "error", err)
	}
	return &user, nil
}

// UpdateProfile saves profile changes and caches the returned user
func (s *service) UpdateProfile(ctx context.Context, update ProfileUpdate) (*session.User, error) {
	if err := s.requireFreshSession(ctx, "update_profile"); err != nil {
		return nil, err
	}

	var user session.User
	if err := s.client.Put(ctx, "/users/profile/", update, &user); err != nil {
		return nil, normalize("update_profile", err, MessageUpdateProfileFailed)
	}
	if err := s.session.SetUser(ctx, &user); err != nil {
		s.logger.Warn("Failed to persist user", "error", err)
	}
	return &user, nil
}

// ChangePassword changes the password of the current user
func (s *service) ChangePassword(ctx context.Context, change PasswordChange) error {
	if err := s.requireFreshSession(ctx, "change_password"); err != nil {
		return err
	}

	payload := passwordChangePayload{
		OldPassword:  change.CurrentPassword,
		NewPassword:  change.NewPassword,
		NewPassword2: change.ConfirmPassword,
	}
	if err := s.client.Post(ctx, "/users/change_password/", payload, nil); err != nil {
		return normalize("change_password", err, MessageChangePasswordFailed)
	}
	return nil
}

// requireFreshSession fails without a request when there is no usable token
func (s *service) requireFreshSession(ctx context.Context, op string) error {
	if !s.session.Authenticated() {
		return &Error{Op: op, Message: MessageSessionExpired, Err: ErrNotAuthenticated}
	}
	if !s.session.CheckTokenExpiration(ctx) {
		return &Error{Op: op, Message: MessageSessionExpired, Err: ErrSessionExpired}
	}
	return nil
}

// normalize wraps a transport error with the backend text or a default message
func normalize(op string, err error, fallback string) error {
	msg := fallback
	if backend, ok := client.BackendMessage(err); ok {
		msg = backend
	}
	return &Error{Op: op, Message: msg, Err: err}
}
