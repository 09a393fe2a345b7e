package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Zachary2562/recordables-ticketquest/internal/api/http/handlers"
	"github.com/Zachary2562/recordables-ticketquest/internal/auth"
	"github.com/Zachary2562/recordables-ticketquest/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Users          *handlers.UsersHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	RateLimiter    *RateLimiter
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Metrics.Handler())

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	authProtected.Post("/password/change", cfg.Users.ChangePassword)
	authProtected.Get("/me", cfg.Users.Me)

	flicket := app.Group("/flicket", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	if cfg.RateLimiter != nil {
		flicket.Use(cfg.RateLimiter.Handler())
	}

	tickets := flicket.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/my", cfg.Tickets.ListMyTickets)
	tickets.Get("/subscribed", cfg.Tickets.ListSubscribedTickets)
	tickets.Get("/export/csv", cfg.Tickets.ExportCSV)
	tickets.Get("/export/pdf", cfg.Tickets.ExportPDF)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Get("/:id/replies", cfg.Tickets.ListReplies)
	tickets.Post("/:id/replies", cfg.Tickets.Reply)
	tickets.Post("/:id/subscription", cfg.Tickets.Subscribe)
	tickets.Delete("/:id/subscription", cfg.Tickets.Unsubscribe)
	tickets.Put("/:id/assignment", auth.RequireAdmin(), cfg.Tickets.Assign)
	tickets.Delete("/:id", auth.RequireAdmin(), cfg.Tickets.DeleteTicket)

	flicket.Get("/uploads/:key", cfg.Tickets.DownloadAttachment)

	flicket.Get("/departments", cfg.Admin.ListDepartments)
	flicket.Get("/categories", cfg.Admin.ListCategories)
	flicket.Get("/priorities", cfg.Admin.ListPriorities)
	flicket.Get("/statuses", cfg.Admin.ListStatuses)

	admin := flicket.Group("", auth.RequireAdmin())
	admin.Post("/departments", cfg.Admin.CreateDepartment)
	admin.Put("/departments/:id", cfg.Admin.RenameDepartment)
	admin.Delete("/departments/:id", cfg.Admin.DeleteDepartment)
	admin.Post("/categories", cfg.Admin.CreateCategory)
	admin.Put("/categories/:id", cfg.Admin.RenameCategory)
	admin.Delete("/categories/:id", cfg.Admin.DeleteCategory)
	admin.Post("/priorities", cfg.Admin.CreatePriority)
	admin.Put("/priorities/:id", cfg.Admin.RenamePriority)
	admin.Delete("/priorities/:id", cfg.Admin.DeletePriority)
	admin.Post("/statuses", cfg.Admin.CreateStatus)
	admin.Put("/statuses/:id", cfg.Admin.RenameStatus)
	admin.Delete("/statuses/:id", cfg.Admin.DeleteStatus)
	admin.Get("/users", cfg.Users.ListUsers)
	admin.Get("/groups", cfg.Admin.ListGroups)
	admin.Post("/groups/members", cfg.Admin.AddGroupMember)
	admin.Delete("/groups/members", cfg.Admin.RemoveGroupMember)

	flicket.Get("/users/:id", cfg.Users.GetUser)
}
