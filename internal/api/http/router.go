package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-portal/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-portal/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Users         *handlers.UsersHandler
	Tickets       *handlers.TicketsHandler
	StaffTickets  *handlers.StaffTicketsHandler
	Templates     *handlers.TemplatesHandler
	Notifications *handlers.NotificationsHandler
	Metrics       *handlers.MetricsHandler
	Searches      *handlers.SearchesHandler
	System        *handlers.SystemHandler
	SessionGuard  *auth.SessionGuard
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/logout", cfg.Users.Logout)
	authGroup.Get("/session", cfg.Users.Session)
	authGroup.Get("/me", cfg.SessionGuard.Handle, cfg.Users.Me)

	protected := api.Group("", cfg.SessionGuard.Handle)

	tickets := protected.Group("/tickets")
	tickets.Get("/", cfg.Tickets.List)
	tickets.Post("/", cfg.Tickets.Submit)
	tickets.Get("/export.csv", cfg.Tickets.ExportCSV)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Put("/:id", cfg.Tickets.Update)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Delete("/:id", cfg.Tickets.Delete)
	tickets.Get("/:id/comments", cfg.Tickets.Comments)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Get("/:id/history", cfg.Tickets.History)
	tickets.Post("/:id/csat", cfg.Tickets.SubmitCSAT)

	staff := protected.Group("/staff/tickets", auth.RequireOperator())
	staff.Post("/:id/take", cfg.StaffTickets.SelfAssign)
	staff.Put("/:id/assign", cfg.StaffTickets.Assign)

	templates := protected.Group("/templates")
	templates.Get("/", cfg.Templates.List)
	templates.Get("/:id", cfg.Templates.Get)
	editor := templates.Group("", auth.RequireOperator())
	editor.Post("/", cfg.Templates.Create)
	editor.Put("/:id", cfg.Templates.Update)
	editor.Delete("/:id", cfg.Templates.Delete)

	notifications := protected.Group("/notifications")
	notifications.Get("/", cfg.Notifications.List)
	notifications.Get("/unread/count", cfg.Notifications.UnreadCount)
	notifications.Post("/poll", cfg.Notifications.Poll)
	notifications.Put("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Put("/:id/read", cfg.Notifications.MarkRead)

	protected.Get("/metrics", cfg.Metrics.Metrics)
	protected.Get("/metrics/report.pdf", cfg.Metrics.ReportPDF)
	protected.Get("/dashboard", cfg.Metrics.Dashboard)

	protected.Get("/searches", cfg.Searches.List)
	protected.Post("/searches", cfg.Searches.Save)
	protected.Get("/searches/suggest", cfg.Searches.Suggest)

	protected.Get("/integrations", cfg.System.Integrations)
	protected.Get("/system/fallbacks", cfg.System.Fallbacks)
	protected.Get("/system/stats", cfg.System.Stats)
}
