package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/events"
	"storefront/internal/logger"
	"storefront/internal/notify"
)

type harness struct {
	client   *Client
	notes    *notify.Recorder
	mu       sync.Mutex
	received []events.Event
}

func (h *harness) published() []events.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]events.Event(nil), h.received...)
}

func newHarness(t *testing.T, handler http.HandlerFunc, token string, opts ...Option) *harness {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	h := &harness{notes: notify.NewRecorder()}
	bus := events.NewBus()
	bus.Subscribe(func(ctx context.Context, e events.Event) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.received = append(h.received, e)
	})

	opts = append([]Option{WithEvents(bus), WithNotifier(h.notes), WithLogger(logger.Discard())}, opts...)
	c, err := New(Config{BaseURL: srv.URL + "/", Timeout: time.Second}, TokenFunc(func() string { return token }), opts...)
	require.NoError(t, err)
	h.client = c
	return h
}

func TestNew_RejectsRelativeBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "api.example.com"}, nil)
	assert.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(Config{}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, DefaultTimeout, c.http.Timeout)
	assert.Nil(t, c.limiter)
}

func TestDo_AttachesBearerToken(t *testing.T) {
	var auth string
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}, "abc")

	require.NoError(t, h.client.Get(context.Background(), "/cart/", nil, nil))
	assert.Equal(t, "Bearer abc", auth)
}

func TestDo_NoTokenNoHeader(t *testing.T) {
	var present bool
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header["Authorization"]
		w.WriteHeader(http.StatusNoContent)
	}, "")

	require.NoError(t, h.client.Get(context.Background(), "/products/", nil, nil))
	assert.False(t, present)
}

func TestDo_DecodesPayload(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/cart/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(3), body["product_id"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":7,"quantity":2}`))
	}, "abc")

	var out struct {
		ID       int `json:"id"`
		Quantity int `json:"quantity"`
	}
	err := h.client.Post(context.Background(), "/cart/", map[string]int{"product_id": 3}, &out)
	require.NoError(t, err)
	assert.Equal(t, 7, out.ID)
	assert.Equal(t, 2, out.Quantity)
	assert.Empty(t, h.notes.All())
}

func TestDo_Query(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/", r.URL.Path)
		assert.Equal(t, "phone", r.URL.Query().Get("search"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		w.Write([]byte(`[]`))
	}, "")

	var page Page[map[string]any]
	err := h.client.Get(context.Background(), "/products/", url.Values{"search": {"phone"}, "page": {"2"}}, &page)
	require.NoError(t, err)
	assert.Empty(t, page.Results)
}

func TestDo_RawMessage(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count":3}`))
	}, "")

	var raw json.RawMessage
	require.NoError(t, h.client.Get(context.Background(), "/cart/count/", nil, &raw))
	assert.JSONEq(t, `{"count":3}`, string(raw))
}

func TestDo_Unauthorized(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Token is invalid or expired"}`))
	}, "stale")

	err := h.client.Get(context.Background(), "/orders/orders/", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)

	got := h.published()
	require.Len(t, got, 1)
	assert.Equal(t, events.Unauthorized{Status: 401, Method: http.MethodGet, Path: "/orders/orders/"}, got[0])
	assert.Empty(t, h.notes.All())
}

func TestDo_StatusKinds(t *testing.T) {
	cases := []struct {
		status   int
		body     string
		sentinel error
		message  string
	}{
		{http.StatusForbidden, `{"detail":"nope"}`, ErrForbidden, MessageForbidden},
		{http.StatusNotFound, ``, ErrNotFound, MessageNotFound},
		{http.StatusInternalServerError, `oops`, ErrServer, MessageServer},
		{http.StatusBadRequest, `{"message":"Insufficient stock"}`, ErrHTTP, "Insufficient stock"},
		{http.StatusBadRequest, `{"error":"bad coupon"}`, ErrHTTP, "bad coupon"},
		{http.StatusConflict, `not json`, ErrHTTP, MessageDefault},
		{http.StatusBadGateway, ``, ErrHTTP, MessageDefault},
	}

	for _, tc := range cases {
		t.Run(http.StatusText(tc.status)+"/"+tc.message, func(t *testing.T) {
			h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			}, "abc")

			err := h.client.Get(context.Background(), "/orders/orders/1/", nil, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.sentinel)
			assert.Equal(t, tc.status, StatusCode(err))

			notes := h.notes.All()
			require.Len(t, notes, 1)
			assert.Equal(t, notify.LevelError, notes[0].Level)
			assert.Equal(t, tc.message, notes[0].Message)
			assert.Empty(t, h.published())
		})
	}
}

func TestDo_BackendMessage(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"username":["A user with that username already exists."]}`))
	}, "")

	err := h.client.Post(context.Background(), "/users/", map[string]string{"username": "bob"}, nil)
	msg, ok := BackendMessage(err)
	require.True(t, ok)
	assert.Equal(t, "username: A user with that username already exists.", msg)

	_, ok = BackendMessage(errors.New("plain"))
	assert.False(t, ok)
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	notes := notify.NewRecorder()
	c, err := New(Config{BaseURL: base}, nil, WithNotifier(notes), WithLogger(logger.Discard()))
	require.NoError(t, err)

	err = c.Get(context.Background(), "/products/", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, 0, StatusCode(err))

	require.Len(t, notes.All(), 1)
	assert.Equal(t, MessageNetwork, notes.All()[0].Message)
}

func TestDo_Timeout(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, "")
	h.client.http.Timeout = 50 * time.Millisecond

	err := h.client.Get(context.Background(), "/products/", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Error(t, apiErr.Unwrap())
}

func TestDo_ConfigError(t *testing.T) {
	called := false
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, "")

	err := h.client.Post(context.Background(), "/cart/", map[string]any{"bad": make(chan int)}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
	assert.False(t, called)

	err = h.client.Get(context.Background(), "cart/", nil, nil)
	assert.ErrorIs(t, err, ErrConfig)

	notes := h.notes.All()
	require.Len(t, notes, 2)
	assert.Equal(t, MessageConfig, notes[0].Message)
}

func TestDo_DecodeFailure(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"not a number"}`))
	}, "")

	var out struct {
		ID int `json:"id"`
	}
	err := h.client.Get(context.Background(), "/products/1/", nil, &out)
	require.Error(t, err)
	assert.Empty(t, h.notes.All())
}

func TestUpload(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary="))
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "damaged", r.FormValue("note"))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "photo.jpg", header.Filename)
		assert.Equal(t, "jpegdata", string(data))

		w.Write([]byte(`{"url":"/media/returns/photo.jpg"}`))
	}, "abc")

	var out struct {
		URL string `json:"url"`
	}
	err := h.client.Upload(context.Background(), "/returns/upload/", Form{
		Fields: map[string]string{"note": "damaged"},
		Files:  []File{{Field: "image", Filename: "photo.jpg", ContentType: "image/jpeg", Content: strings.NewReader("jpegdata")}},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "/media/returns/photo.jpg", out.URL)
}

func TestUpload_MissingContent(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {}, "")

	err := h.client.Upload(context.Background(), "/returns/upload/", Form{Files: []File{{Field: "image"}}}, nil)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}, "", WithMetrics(m))

	ctx := context.Background()
	require.NoError(t, h.client.Get(ctx, "/cart/", nil, nil))
	require.NoError(t, h.client.Get(ctx, "/cart/", nil, nil))
	require.Error(t, h.client.Get(ctx, "/missing/", nil, nil))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Requests.WithLabelValues("GET", "204")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Requests.WithLabelValues("GET", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))
}

func TestRateLimit(t *testing.T) {
	c, err := New(Config{BaseURL: "http://localhost", RateLimit: 5, RateBurst: 0}, nil)
	require.NoError(t, err)
	require.NotNil(t, c.limiter)
	assert.Equal(t, 1, c.limiter.Burst())
}

func TestRateLimit_CanceledContext(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, "")

	c, err := New(Config{BaseURL: h.client.BaseURL(), RateLimit: 0.001, RateBurst: 1}, nil, WithLogger(logger.Discard()))
	require.NoError(t, err)

	require.NoError(t, c.Get(context.Background(), "/cart/", nil, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = c.Get(ctx, "/cart/", nil, nil)
	assert.ErrorIs(t, err, ErrNetwork)
}
