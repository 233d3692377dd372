package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-hq/helpdesk-service/internal/api/http/handlers"
	"github.com/helpdesk-hq/helpdesk-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	AdminTickets   *handlers.AdminTicketsHandler
	Agents         *handlers.AgentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/agents/login", cfg.Agents.Login)
	authGroup.Post("/agents/logout", cfg.AuthMiddleware.Handle, cfg.Agents.Logout)

	api := app.Group("/api")
	api.Post("/tickets", cfg.Tickets.CreateTicket)
	api.Get("/tickets/:id", cfg.Tickets.GetTicket)
	api.Get("/tickets/:id/messages", cfg.Tickets.ListMessages)
	api.Post("/tickets/:id/messages", cfg.AuthMiddleware.HandleOptional, cfg.Tickets.AddMessage)

	admin := api.Group("/admin", cfg.AuthMiddleware.Handle)
	admin.Get("/tickets", cfg.AdminTickets.ListTickets)
	admin.Patch("/tickets/:id", cfg.AdminTickets.SetStatus)
}
