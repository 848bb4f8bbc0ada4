package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/service-orders/internal/api/http/handlers"
	"github.com/spec-kit/service-orders/internal/auth"
	"github.com/spec-kit/service-orders/internal/domain"
	"github.com/spec-kit/service-orders/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Orders         *handlers.OrdersHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Root)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	app.Post("/login", cfg.Auth.Login)

	// attached per route: unknown paths must still reach the 404 handler
	protected := func(handlers ...fiber.Handler) []fiber.Handler {
		return append([]fiber.Handler{cfg.AuthMiddleware.Handle}, handlers...)
	}
	app.Get("/os", protected(cfg.Orders.ListOrders)...)
	app.Post("/os", protected(cfg.Orders.CreateOrder)...)
	app.Get("/os/:id", protected(cfg.Orders.GetOrder)...)
	app.Put("/os/:id", protected(cfg.Orders.UpdateOrder)...)
	app.Get("/os/:id/historico", protected(cfg.Orders.ListHistory)...)
	app.Get("/dashboard", protected(cfg.Reports.Dashboard)...)
	app.Get("/ia/resumo", protected(auth.RequireRole(domain.RoleAdmin), cfg.Reports.Summary)...)
}
