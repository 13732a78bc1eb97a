// Package session holds the client-side session: the bearer token and the cached
// user profile, mirrored to a durable Store so they survive restarts.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"storefront/internal/events"
)

// Option configures a Manager
type Option func(*Manager)

// WithClock overrides the clock used for token expiration checks
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithEvents makes the manager publish SessionExpired on bus
func WithEvents(bus *events.Bus) Option {
	return func(m *Manager) { m.bus = bus }
}

// WithLogger sets the logger used for storage failures
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// Manager owns the token and user. It is the only writer of session state.
type Manager struct {
	mu    sync.RWMutex
	token string
	user  *User

	store  Store
	bus    *events.Bus
	logger *slog.Logger
	now    func() time.Time
}

// NewManager creates a new session manager on top of store
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load populates the in-memory session from durable storage.
// A corrupt user record is dropped; the token is kept.
func (m *Manager) Load(ctx context.Context) error {
	token, err := m.store.Get(ctx, TokenKey)
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		return fmt.Errorf("failed to load token: %w", err)
	}

	var user *User
	raw, err := m.store.Get(ctx, UserKey)
	switch {
	case err == nil && raw != "" && raw != "null":
		var u User
		if jsonErr := json.Unmarshal([]byte(raw), &u); jsonErr != nil {
			m.logger.Warn("Discarding unreadable stored user", "error", jsonErr)
		} else {
			user = &u
		}
	case err != nil && !errors.Is(err, ErrKeyNotFound):
		return fmt.Errorf("failed to load user: %w", err)
	}

	m.mu.Lock()
	m.token = token
	m.user = user
	m.mu.Unlock()

	return nil
}

// SetAuth stores token and user in memory and durable storage.
// Memory is updated even when persisting fails.
func (m *Manager) SetAuth(ctx context.Context, token string, user *User) error {
	m.mu.Lock()
	m.token = token
	m.user = cloneUser(user)
	m.mu.Unlock()

	return errors.Join(
		m.store.Set(ctx, TokenKey, token, 0),
		m.persistUser(ctx, user),
	)
}

// SetUser replaces the cached user profile, keeping the token
func (m *Manager) SetUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	m.user = cloneUser(user)
	m.mu.Unlock()

	return m.persistUser(ctx, user)
}

func (m *Manager) persistUser(ctx context.Context, user *User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	return m.store.Set(ctx, UserKey, string(data), 0)
}

// ClearAuth resets the session in memory and removes both keys from storage. Idempotent.
func (m *Manager) ClearAuth(ctx context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.user = nil
	m.mu.Unlock()

	return errors.Join(
		m.store.Delete(ctx, TokenKey),
		m.store.Delete(ctx, UserKey),
	)
}

// clearIfToken clears the session only when it still holds token
func (m *Manager) clearIfToken(ctx context.Context, token string) error {
	m.mu.RLock()
	current := m.token
	m.mu.RUnlock()

	if current != token {
		return nil
	}
	return m.ClearAuth(ctx)
}

// Token returns the current bearer token, or "" when logged out
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// User returns a copy of the cached profile, or nil
func (m *Manager) User() *User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneUser(m.user)
}

// UserID returns the cached user's id
func (m *Manager) UserID() (int64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return 0, false
	}
	return m.user.ID, true
}

// Authenticated is true iff a token is present
func (m *Manager) Authenticated() bool {
	return m.Token() != ""
}

// Snapshot returns the whole session at once
func (m *Manager) Snapshot() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Session{
		Token:         m.token,
		User:          cloneUser(m.user),
		Authenticated: m.token != "",
	}
}

// CheckTokenExpiration reports whether the current token is still usable.
// An expired or undecodable token clears the session and publishes
// events.SessionExpired; a valid token leaves everything untouched.
func (m *Manager) CheckTokenExpiration(ctx context.Context) bool {
	token := m.Token()
	if token == "" {
		return false
	}

	if !Expired(token, m.now()) {
		return true
	}

	if exp, _, err := ExpiresAt(token); err != nil {
		m.logger.Warn("Stored token cannot be decoded", "error", err)
	} else {
		m.logger.Info("Session token expired", "expires_at", exp)
	}

	if err := m.clearIfToken(ctx, token); err != nil {
		m.logger.Error("Failed to clear expired session", "error", err)
	}
	m.bus.Publish(ctx, events.SessionExpired{})

	return false
}

func cloneUser(u *User) *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
