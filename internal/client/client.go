// Package client is the single HTTP gateway to the storefront backend. It attaches
// the bearer token, unwraps payloads and turns every failure into a typed *Error
// after notifying the user or publishing the matching session event.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"storefront/internal/events"
	"storefront/internal/notify"
)

const (
	DefaultBaseURL = "http://127.0.0.1:8000"
	DefaultTimeout = 10 * time.Second

	RequestIDHeader = "X-Request-ID"
)

// TokenSource yields the current bearer token, or "" when signed out
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a plain function to TokenSource
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Config holds the fixed transport settings
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
}

// Option customizes a Client
type Option func(*Client)

// WithTransport replaces the underlying round tripper
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.http.Transport = rt
	}
}

// WithEvents sets the bus that receives Unauthorized events
func WithEvents(bus *events.Bus) Option {
	return func(c *Client) {
		c.bus = bus
	}
}

// WithNotifier sets the sink for user-facing failure messages
func WithNotifier(n notify.Notifier) Option {
	return func(c *Client) {
		c.notifier = n
	}
}

// WithLogger sets the client logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics enables request metrics
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// Client sends requests to the backend. It is safe for concurrent use.
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   TokenSource
	bus      *events.Bus
	notifier notify.Notifier
	logger   *slog.Logger
	limiter  *rate.Limiter
	metrics  *Metrics
}

// New creates a client for cfg. tokens may be nil for anonymous use.
func New(cfg Config, tokens TokenSource, opts ...Option) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", cfg.BaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		logger:  slog.Default(),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend root without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request describes one backend call
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is JSON encoded unless it is an io.Reader, which is sent as is
	Body   any
	Header http.Header
}

// Get fetches path into out
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post sends body to path and decodes the answer into out
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put sends body to path and decodes the answer into out
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Delete removes the resource at path
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}

// Do performs req and decodes a successful payload into out (which may be nil).
// Failures are reported to the user or published as events, then returned.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := c.build(ctx, method, req)
	if err != nil {
		return c.fail(ctx, &Error{Kind: KindConfig, Method: method, Path: req.Path, Err: err})
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return c.fail(ctx, &Error{Kind: KindNetwork, Method: method, Path: req.Path, Err: err})
		}
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.metrics.observe(method, 0, time.Since(start))
		return c.fail(ctx, &Error{Kind: KindNetwork, Method: method, Path: req.Path, Err: err})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.metrics.observe(method, resp.StatusCode, time.Since(start))
	if err != nil {
		return c.fail(ctx, &Error{Kind: KindNetwork, Method: method, Path: req.Path, Status: resp.StatusCode, Err: err})
	}

	c.logger.Debug("Backend request",
		"method", method,
		"path", req.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", httpReq.Header.Get(RequestIDHeader),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		backendMessage := extractMessage(body)
		return c.fail(ctx, &Error{
			Kind:           kindForStatus(resp.StatusCode),
			Status:         resp.StatusCode,
			Method:         method,
			Path:           req.Path,
			BackendMessage: backendMessage,
			Body:           body,
		})
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], body...)
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Warn("Failed to decode backend response", "method", method, "path", req.Path, "error", err)
		return fmt.Errorf("failed to decode response of %s %s: %w", method, req.Path, err)
	}
	return nil
}

func (c *Client) build(ctx context.Context, method string, req Request) (*http.Request, error) {
	if !strings.HasPrefix(req.Path, "/") {
		return nil, fmt.Errorf("path %q must start with /", req.Path)
	}

	u, err := url.Parse(c.baseURL + req.Path)
	if err != nil {
		return nil, fmt.Errorf("invalid request path: %w", err)
	}
	if len(req.Query) > 0 {
		q := u.Query()
		for key, values := range req.Query {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	contentType := ""
	switch b := req.Body.(type) {
	case nil:
	case io.Reader:
		body = b
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if httpReq.Header.Get(RequestIDHeader) == "" {
		httpReq.Header.Set(RequestIDHeader, uuid.New().String())
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return httpReq, nil
}

// fail performs the side effect for apiErr and returns it
func (c *Client) fail(ctx context.Context, apiErr *Error) error {
	apiErr.Message = userMessage(apiErr.Kind, apiErr.BackendMessage)

	attrs := []any{
		"method", apiErr.Method,
		"path", apiErr.Path,
		"kind", apiErr.Kind.String(),
		"status", apiErr.Status,
	}
	if apiErr.Err != nil {
		attrs = append(attrs, "error", apiErr.Err)
	}

	if apiErr.Kind == KindUnauthorized {
		c.logger.Warn("Backend rejected credentials", attrs...)
		c.bus.Publish(ctx, events.Unauthorized{Status: apiErr.Status, Method: apiErr.Method, Path: apiErr.Path})
		return apiErr
	}

	if errors.Is(apiErr, ErrServer) || errors.Is(apiErr, ErrNetwork) {
		c.logger.Error("Backend request failed", attrs...)
	} else {
		c.logger.Warn("Backend request failed", attrs...)
	}
	notify.Error(ctx, c.notifier, apiErr.Message)
	return apiErr
}
