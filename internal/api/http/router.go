package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-service/internal/api/http/handlers"
	"github.com/spec-kit/maintenance-service/internal/auth"
	"github.com/spec-kit/maintenance-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Accounts       *handlers.AccountsHandler
	Tickets        *handlers.TicketsHandler
	Planner        *handlers.PlannerHandler
	Assets         *handlers.AssetsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Accounts.Register)
	authGroup.Post("/login", cfg.Accounts.Login)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("", cfg.Tickets.Create)
	tickets.Get("", cfg.Tickets.List)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Get("/:id/history", cfg.Tickets.History)
	tickets.Post("/:id/assign", auth.RequireRole(domain.RoleAdmin), cfg.Tickets.Assign)
	tickets.Post("/:id/progress", auth.RequireRole(domain.RoleTechnician, domain.RoleAdmin), cfg.Tickets.Progress)
	tickets.Post("/:id/close", auth.RequireRole(domain.RoleTechnician, domain.RoleAdmin), cfg.Tickets.Close)
	tickets.Post("/:id/cancel", auth.RequireRole(domain.RoleAdmin), cfg.Tickets.Cancel)
	tickets.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Tickets.Delete)

	planner := app.Group("/planner", cfg.AuthMiddleware.Handle)
	planner.Get("/calendar", cfg.Planner.Calendar)
	planner.Get("/departments", cfg.Planner.Departments)

	assets := app.Group("/assets", cfg.AuthMiddleware.Handle)
	assets.Get("", cfg.Assets.List)
	assets.Post("", auth.RequireRole(domain.RoleAdmin), cfg.Assets.Create)
}
