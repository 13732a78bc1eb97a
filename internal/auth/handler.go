package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"storefront/internal/client"
	"storefront/internal/session"

	"github.com/gin-gonic/gin"
)

// Handler exposes the account operations over HTTP for the local shell
type Handler struct {
	service Service
	session *session.Manager
	logger  *slog.Logger
}

// NewHandler creates a new authentication handler
func NewHandler(service Service, m *session.Manager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, session: m, logger: logger}
}

// RegisterRoutes mounts the handler on rg
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.Login)
	rg.POST("/register", h.Register)
	rg.POST("/logout", h.Logout)
	rg.GET("/profile", h.Profile)
	rg.PUT("/profile", h.UpdateProfile)
	rg.POST("/password", h.ChangePassword)
}

// Login handles POST /auth/login
func (h *Handler) Login(c *gin.Context) {
	var req Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil && resp == nil {
		h.fail(c, "login", err)
		return
	}
	if err != nil {
		h.logger.Warn("Session not persisted after login", "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"user": resp.User, "authenticated": true})
}

// Register handles POST /auth/register
func (h *Handler) Register(c *gin.Context) {
	var req Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "register", err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Logout handles POST /auth/logout
func (h *Handler) Logout(c *gin.Context) {
	if !h.session.Authenticated() {
		c.JSON(http.StatusOK, gin.H{"message": "already logged out"})
		return
	}

	if err := h.service.Logout(c.Request.Context()); err != nil {
		h.logger.Error("Failed to clear session storage", "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged out successfully"})
}

// Profile handles GET /auth/profile
func (h *Handler) Profile(c *gin.Context) {
	user, err := h.service.Profile(c.Request.Context())
	if err != nil {
		h.fail(c, "profile", err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PUT /auth/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "update profile", err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ChangePassword handles POST /auth/password
func (h *Handler) ChangePassword(c *gin.Context) {
	var req PasswordChange
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), req); err != nil {
		h.fail(c, "change password", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}

// fail maps an auth error to a response status
func (h *Handler) fail(c *gin.Context, op string, err error) {
	h.logger.Warn("Auth operation failed", "op", op, "error", err)

	status := http.StatusBadGateway
	switch {
	case errors.Is(err, ErrNotAuthenticated), errors.Is(err, ErrSessionExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, client.ErrNetwork):
		status = http.StatusBadGateway
	case client.StatusCode(err) != 0:
		status = client.StatusCode(err)
	}

	msg := err.Error()
	var authErr *Error
	if errors.As(err, &authErr) {
		msg = authErr.Message
	}
	c.JSON(status, gin.H{"error": msg})
}
