// Package clienttest provides a fake backend for testing code built on client.Client.
package clienttest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"storefront/internal/client"
	"storefront/internal/logger"
)

// Call is one request seen by the backend
type Call struct {
	Method      string
	Path        string
	Query       url.Values
	Header      http.Header
	ContentType string
	Body        []byte
}

// JSON decodes the request body into a generic map
func (c Call) JSON(t *testing.T) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(c.Body, &out))
	return out
}

// Response is what the backend answers
type Response struct {
	Status int
	Body   string
}

// Backend records calls and answers each path with a canned response
type Backend struct {
	Server *httptest.Server

	mu        sync.Mutex
	calls     []Call
	responses map[string]Response
	fallback  Response
}

// New starts a backend that answers 200 {} unless told otherwise
func New(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		responses: map[string]Response{},
		fallback:  Response{Status: http.StatusOK, Body: `{}`},
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

// Respond sets the answer for method and path
func (b *Backend) Respond(method, path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responses[method+" "+path] = Response{Status: status, Body: body}
}

// Calls returns every request received so far
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// Last returns the most recent request
func (b *Backend) Last(t *testing.T) Call {
	t.Helper()
	calls := b.Calls()
	require.NotEmpty(t, calls, "backend received no request")
	return calls[len(calls)-1]
}

// Client builds a quiet client pointed at the backend
func (b *Backend) Client(t *testing.T, tokens client.TokenSource, opts ...client.Option) *client.Client {
	t.Helper()
	opts = append([]client.Option{client.WithLogger(logger.Discard())}, opts...)
	c, err := client.New(client.Config{BaseURL: b.Server.URL, Timeout: 5 * time.Second}, tokens, opts...)
	require.NoError(t, err)
	return c
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	b.calls = append(b.calls, Call{
		Method:      r.Method,
		Path:        r.URL.Path,
		Query:       r.URL.Query(),
		Header:      r.Header.Clone(),
		ContentType: r.Header.Get("Content-Type"),
		Body:        body,
	})
	resp, ok := b.responses[r.Method+" "+r.URL.Path]
	if !ok {
		resp = b.fallback
	}
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	io.WriteString(w, resp.Body)
}
