package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/helpdesk-triage/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-triage/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Staff          *handlers.StaffHandler
	StaffTickets   *handlers.StaffTicketsHandler
	AuthMiddleware *auth.AuthMiddleware
	// MetricsHandler defaults to promhttp.Handler().
	MetricsHandler fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = adaptor.HTTPHandler(promhttp.Handler())
	}
	app.Get("/metrics", metricsHandler)

	tickets := app.Group("/tickets")
	tickets.Post("/", cfg.Tickets.SubmitTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)

	admin := app.Group("/admin")
	admin.Post("/login", cfg.Staff.Login)

	// Group-level middleware would also cover /admin/login, so guards are attached per route.
	protected := func(h fiber.Handler) []fiber.Handler {
		return []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAdmin(), h}
	}
	admin.Post("/logout", protected(cfg.Staff.Logout)...)
	admin.Get("/tickets", protected(cfg.StaffTickets.ListTickets)...)
	admin.Patch("/tickets/:id", protected(cfg.StaffTickets.CorrectTicket)...)
	admin.Post("/tickets/:id/complete", protected(cfg.StaffTickets.CompleteTicket)...)
	admin.Get("/fixed-issues", protected(cfg.StaffTickets.ListFixedIssues)...)
	admin.Get("/fixed-issues/export.csv", protected(cfg.StaffTickets.ExportFixedIssues)...)
}
