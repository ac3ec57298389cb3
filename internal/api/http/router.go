package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/okta-import/internal/api/http/handlers"
	"github.com/spec-kit/okta-import/internal/auth"
	"github.com/spec-kit/okta-import/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Imports        *handlers.ImportsHandler
	Metrics        http.Handler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	app.Post("/auth/login", cfg.Auth.Login)

	imports := app.Group("/imports", cfg.AuthMiddleware.Handle)
	// Defaults carry the shared password and recovery answer.
	imports.Get("/defaults", auth.RequireRole(domain.AdminRoleAdmin), cfg.Imports.Defaults)
	imports.Get("/", auth.RequireAnyRole(), cfg.Imports.List)
	imports.Get("/:id", auth.RequireAnyRole(), cfg.Imports.Get)
	imports.Post("/", auth.RequireRole(domain.AdminRoleAdmin), cfg.Imports.Create)
}
