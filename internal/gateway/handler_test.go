package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/app"
	"storefront/internal/client"
	"storefront/internal/client/clienttest"
	"storefront/internal/config"
	"storefront/internal/logger"
	"storefront/internal/session"
)

type shell struct {
	backend *clienttest.Backend
	app     *app.App
	router  *gin.Engine
}

func newShell(t *testing.T) *shell {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := clienttest.New(t)
	cfg := &config.Config{
		API:     config.APIConfig{BaseURL: backend.Server.URL, Timeout: 5 * time.Second},
		Storage: config.StorageConfig{Driver: config.StorageMemory},
	}
	a, err := app.New(cfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	return &shell{backend: backend, app: a, router: SetupRouter(a, nil)}
}

func (s *shell) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	s := newShell(t)

	w := s.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, s.backend.Server.URL, body["backend"])
}

func TestRoutes(t *testing.T) {
	s := newShell(t)

	w := s.do(t, http.MethodGet, "/routes", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Routes []struct {
			Path string `json:"path"`
			Name string `json:"name"`
		} `json:"routes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Routes)
	assert.Equal(t, "/", body.Routes[0].Path)
}

func TestNavigate_GuestToCart(t *testing.T) {
	s := newShell(t)

	w := s.do(t, http.MethodGet, "/navigate?path=/cart", "")
	require.Equal(t, http.StatusOK, w.Code)

	var nav struct {
		Guard struct {
			Decision string `json:"decision"`
			Redirect string `json:"redirect"`
		} `json:"guard"`
		Location struct {
			Name     string `json:"name"`
			FullPath string `json:"full_path"`
			Title    string `json:"title"`
		} `json:"location"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &nav))
	assert.Equal(t, "redirect_login", nav.Guard.Decision)
	assert.Equal(t, "/login?redirect=%2Fcart", nav.Guard.Redirect)
	assert.Equal(t, "Login", nav.Location.Name)
	assert.Equal(t, "Login - Storefront", nav.Location.Title)
}

func TestNavigate_MissingPath(t *testing.T) {
	s := newShell(t)

	w := s.do(t, http.MethodGet, "/navigate", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestForward_AttachesTokenAndQuery(t *testing.T) {
	s := newShell(t)
	s.backend.Respond(http.MethodGet, "/products/", http.StatusOK, `{"count":1,"results":[{"id":1}]}`)
	require.NoError(t, s.app.Session.SetAuth(context.Background(), "tok", &session.User{ID: 1}))

	req := httptest.NewRequest(http.MethodGet, "/api/products/?search=phone", nil)
	req.Header.Set(client.RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":1,"results":[{"id":1}]}`, w.Body.String())

	call := s.backend.Last(t)
	assert.Equal(t, "/products/", call.Path)
	assert.Equal(t, "phone", call.Query.Get("search"))
	assert.Equal(t, "Bearer tok", call.Header.Get("Authorization"))
	assert.Equal(t, "req-1", call.Header.Get(client.RequestIDHeader))
}

func TestForward_Body(t *testing.T) {
	s := newShell(t)

	w := s.do(t, http.MethodPost, "/api/cart/", `{"product_id":3,"quantity":2}`)
	require.Equal(t, http.StatusOK, w.Code)

	call := s.backend.Last(t)
	assert.Equal(t, http.MethodPost, call.Method)
	assert.Equal(t, "application/json", call.ContentType)
	assert.Equal(t, map[string]any{"product_id": float64(3), "quantity": float64(2)}, call.JSON(t))
}

func TestForward_UnauthorizedClearsSession(t *testing.T) {
	s := newShell(t)
	s.backend.Respond(http.MethodGet, "/cart/", http.StatusUnauthorized, `{"detail":"token expired"}`)
	require.NoError(t, s.app.Session.SetAuth(context.Background(), "tok", &session.User{ID: 1}))

	w := s.do(t, http.MethodGet, "/navigate?path=/cart", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/cart/", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"detail":"token expired"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/session", "")
	sess := decode(t, w)
	assert.Equal(t, false, sess["authenticated"])
	assert.Nil(t, sess["user"])
	location := sess["location"].(map[string]any)
	assert.Equal(t, "/login?redirect=%2Fcart", location["full_path"])

	w = s.do(t, http.MethodGet, "/notifications", "")
	notes := decode(t, w)["notifications"].([]any)
	require.Len(t, notes, 1)
	assert.Equal(t, "login expired, please log in again", notes[0].(map[string]any)["message"])

	w = s.do(t, http.MethodGet, "/notifications", "")
	assert.Empty(t, decode(t, w)["notifications"])
}

func TestForward_NetworkError(t *testing.T) {
	s := newShell(t)
	s.backend.Server.Close()

	w := s.do(t, http.MethodGet, "/api/products/", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "network error, please check your connection", decode(t, w)["error"])
}

func TestForward_NoContent(t *testing.T) {
	s := newShell(t)
	s.backend.Respond(http.MethodDelete, "/cart/4/", http.StatusNoContent, ``)

	w := s.do(t, http.MethodDelete, "/api/cart/4/", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestMetrics(t *testing.T) {
	s := newShell(t)
	s.do(t, http.MethodGet, "/api/products/", "")

	w := s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "storefront_client_requests_total")
}

func TestAuthRoutesMounted(t *testing.T) {
	s := newShell(t)
	s.backend.Respond(http.MethodPost, "/users/login/", http.StatusOK, `{"token":"t","user":{"id":2,"username":"bo"}}`)

	w := s.do(t, http.MethodPost, "/auth/login", `{"username":"bo","password":"pw"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, s.app.Session.Authenticated())
	assert.Equal(t, "t", s.app.Session.Token())
}
