// Package gateway serves the local storefront shell: the route table, guard
// decisions, session state and a forwarding endpoint that sends every call
// through the shared backend client.
package gateway

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/internal/app"
	"storefront/internal/auth"
)

// SetupRouter configures and returns the gateway router
func SetupRouter(a *app.App, allowOrigins []string) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(SessionContextMiddleware(a.Session))
	r.Use(LoggingMiddleware(a.Logger))
	r.Use(CORSMiddleware(allowOrigins))

	h := NewHandler(a)

	r.GET("/health", h.Health)
	r.GET("/routes", h.Routes)
	r.GET("/navigate", h.Navigate)
	r.GET("/session", h.Session)
	r.GET("/notifications", h.Notifications)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})))

	auth.NewHandler(a.Auth, a.Session, a.Logger.With(slog.String("component", "auth"))).
		RegisterRoutes(r.Group("/auth"))

	// Everything under /api goes to the backend with the session's token
	r.Any("/api/*path", h.Forward)

	return r
}
