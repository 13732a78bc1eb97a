package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/app"
	"storefront/internal/client"
	"storefront/internal/notify"
)

// Handler serves the shell endpoints on top of an App
type Handler struct {
	app *app.App
}

// NewHandler creates a new shell handler
func NewHandler(a *app.App) *Handler {
	return &Handler{app: a}
}

// Health is the gateway health check handler
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "storefront-gateway",
		"backend": h.app.Client.BaseURL(),
	})
}

// Routes handles GET /routes
func (h *Handler) Routes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"routes": h.app.Navigator.Router().Routes()})
}

// Navigate handles GET /navigate?path=
func (h *Handler) Navigate(c *gin.Context) {
	target := c.Query("path")
	if target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}

	nav, err := h.app.Navigator.Push(target)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, nav)
}

// Session handles GET /session
func (h *Handler) Session(c *gin.Context) {
	snap := h.app.Session.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"authenticated": snap.Authenticated,
		"user":          snap.User,
		"location":      h.app.Navigator.Current(),
	})
}

// Notifications handles GET /notifications; each notification is returned once
func (h *Handler) Notifications(c *gin.Context) {
	notes := h.app.Recorder.Drain()
	if notes == nil {
		notes = []notify.Notification{}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notes})
}

// Forward handles ANY /api/*path by replaying the call through the backend client
func (h *Handler) Forward(c *gin.Context) {
	path := c.Param("path")
	c.Set("backend_path", path)

	req := client.Request{
		Method: c.Request.Method,
		Path:   path,
		Query:  c.Request.URL.Query(),
		Header: http.Header{},
	}
	req.Header.Set(client.RequestIDHeader, c.GetString("request_id"))
	if hasBody(c.Request) {
		req.Body = c.Request.Body
		if ct := c.GetHeader("Content-Type"); ct != "" {
			req.Header.Set("Content-Type", ct)
		}
	}

	var raw json.RawMessage
	if err := h.app.Client.Do(c.Request.Context(), req, &raw); err != nil {
		h.fail(c, err)
		return
	}

	if len(raw) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// fail relays a backend error: the backend's own JSON body when there is
// one, otherwise the user-facing message
func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)

	var apiErr *client.Error
	if !errors.As(err, &apiErr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	switch {
	case apiErr.Status != 0 && len(apiErr.Body) > 0 && json.Valid(apiErr.Body):
		c.Data(apiErr.Status, "application/json", apiErr.Body)
	case apiErr.Status != 0:
		c.JSON(apiErr.Status, gin.H{"error": apiErr.Message})
	case errors.Is(err, client.ErrConfig):
		c.JSON(http.StatusBadRequest, gin.H{"error": apiErr.Message})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": apiErr.Message})
	}
}

func hasBody(r *http.Request) bool {
	if r.Body == nil || r.Body == http.NoBody {
		return false
	}
	return r.ContentLength != 0
}
