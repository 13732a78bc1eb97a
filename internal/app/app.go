// Package app wires the storefront client together and owns the reactions to
// session events: clearing state, telling the user and moving them to login.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"storefront/internal/addresses"
	"storefront/internal/auth"
	"storefront/internal/cart"
	"storefront/internal/client"
	"storefront/internal/config"
	"storefront/internal/coupons"
	"storefront/internal/events"
	"storefront/internal/notify"
	"storefront/internal/orders"
	"storefront/internal/products"
	"storefront/internal/returns"
	"storefront/internal/router"
	"storefront/internal/session"
)

// MessageSessionExpired is shown when a stored token turns out to be expired
const MessageSessionExpired = client.MessageUnauthorized

type options struct {
	notifier  notify.Notifier
	transport http.RoundTripper
	store     session.Store
	registry  *prometheus.Registry
	routes    []router.Route
	now       func() time.Time
}

// Option customizes New
type Option func(*options)

// WithNotifier adds a user-facing notifier next to the built-in recorder
func WithNotifier(n notify.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithTransport replaces the backend round tripper
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithStore bypasses the configured storage driver
func WithStore(store session.Store) Option {
	return func(o *options) { o.store = store }
}

// WithRegistry registers client metrics on reg instead of a private registry
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// WithRoutes replaces the default route table
func WithRoutes(routes []router.Route) Option {
	return func(o *options) { o.routes = routes }
}

// WithClock overrides the clock used for token expiration
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// App holds the storefront object graph
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Events    *events.Bus
	Session   *session.Manager
	Notifier  notify.Notifier
	Recorder  *notify.Recorder
	Registry  *prometheus.Registry
	Client    *client.Client
	Navigator *router.Navigator

	Auth      auth.Service
	Products  products.Service
	Cart      cart.Service
	Orders    orders.Service
	Addresses addresses.Service
	Coupons   coupons.Service
	Returns   returns.Service

	closers []func() error
}

// New builds the object graph described by cfg
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Events:   events.NewBus(),
		Recorder: notify.NewRecorder(),
		Registry: o.registry,
	}
	if a.Registry == nil {
		a.Registry = prometheus.NewRegistry()
	}

	a.Notifier = notify.Multi{a.Recorder, notify.NewLogNotifier(logger)}
	if o.notifier != nil {
		a.Notifier = notify.Multi{a.Recorder, o.notifier}
	}

	store := o.store
	if store == nil {
		var closer func() error
		var err error
		store, closer, err = NewStore(cfg.Storage, cfg.Redis)
		if err != nil {
			return nil, err
		}
		if closer != nil {
			a.closers = append(a.closers, closer)
		}
	}

	sessionOpts := []session.Option{session.WithEvents(a.Events), session.WithLogger(logger)}
	if o.now != nil {
		sessionOpts = append(sessionOpts, session.WithClock(o.now))
	}
	a.Session = session.NewManager(store, sessionOpts...)

	clientOpts := []client.Option{
		client.WithEvents(a.Events),
		client.WithNotifier(a.Notifier),
		client.WithLogger(logger),
		client.WithMetrics(client.NewMetrics(a.Registry)),
	}
	if o.transport != nil {
		clientOpts = append(clientOpts, client.WithTransport(o.transport))
	}
	c, err := client.New(client.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		RateBurst: cfg.API.RateBurst,
	}, a.Session, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}
	a.Client = c

	a.Auth = auth.NewService(c, a.Session, logger)
	a.Products = products.NewService(c)
	a.Cart = cart.NewService(c)
	a.Orders = orders.NewService(c)
	a.Addresses = addresses.NewService(c, a.Session)
	a.Coupons = coupons.NewService(c)
	a.Returns = returns.NewService(c)

	a.Navigator = router.NewNavigator(router.New(o.routes), a.Session, logger)

	a.Events.Subscribe(a.handle)

	return a, nil
}

// NewStore opens the durable session storage selected by cfg. The returned
// closer is nil when the store holds no connection.
func NewStore(cfg config.StorageConfig, redisCfg config.RedisConfig) (session.Store, func() error, error) {
	switch cfg.Driver {
	case config.StorageMemory:
		return session.NewMemoryStore(), nil, nil
	case config.StorageRedis:
		store, closer := session.NewRedisStore(redisCfg.Addr, redisCfg.Password, redisCfg.DB, cfg.Prefix)
		return store, closer, nil
	case config.StorageFile, "":
		return session.NewFileStore(cfg.Path), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Init restores the persisted session and drops it if the token has expired
func (a *App) Init(ctx context.Context) error {
	if err := a.Session.Load(ctx); err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if a.Session.Authenticated() {
		a.Session.CheckTokenExpiration(ctx)
	}

	a.Logger.Debug("Session restored", "authenticated", a.Session.Authenticated())
	return nil
}

// Close releases storage connections
func (a *App) Close() error {
	var errs []error
	for _, closer := range a.closers {
		errs = append(errs, closer())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) handle(ctx context.Context, e events.Event) {
	a.Logger.Debug("Handling event", "event", events.Name(e))

	switch ev := e.(type) {
	case events.Unauthorized:
		a.Logger.Warn("Session rejected by backend", "method", ev.Method, "path", ev.Path)
		if err := a.Session.ClearAuth(ctx); err != nil {
			a.Logger.Error("Failed to clear session", "error", err)
		}
		notify.Error(ctx, a.Notifier, client.MessageUnauthorized)
		a.toLogin()
	case events.SessionExpired:
		notify.Warning(ctx, a.Notifier, MessageSessionExpired)
		a.toLogin()
	}
}

func (a *App) toLogin() {
	target := router.LoginRedirect(a.Navigator.Current().FullPath)
	if _, err := a.Navigator.Push(target); err != nil {
		a.Logger.Error("Failed to navigate to login", "target", target, "error", err)
	}
}
