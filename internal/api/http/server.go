package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-portal/internal/auth"
	"github.com/spec-kit/helpdesk-portal/internal/config"
	"github.com/spec-kit/helpdesk-portal/internal/fallback"
	"github.com/spec-kit/helpdesk-portal/internal/observability"
	"github.com/spec-kit/helpdesk-portal/internal/service"
	"github.com/spec-kit/helpdesk-portal/internal/session"
)

// ServerConfig is everything the gateway needs to serve the facade.
type ServerConfig struct {
	App      config.AppConfig
	Logger   *zap.Logger
	Metrics  *observability.Metrics
	Services *service.Services
	Sessions *session.Store
	Policy   *fallback.Policy
	// StoragePing and BackendPing feed the readiness probe; nil skips the check.
	StoragePing func(ctx context.Context) error
	BackendPing func(ctx context.Context) error
}

// NewApp builds the fiber application with middlewares and routes.
func NewApp(cfg ServerConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, MiddlewareConfig{
		Logger:      cfg.Logger,
		Metrics:     cfg.Metrics,
		Timeout:     cfg.App.RequestTimeout(),
		CORSOrigins: cfg.App.CORSOrigins,
	})

	svc := cfg.Services
	RegisterRoutes(app, RouteConfig{
		Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pinger(cfg.StoragePing), pinger(cfg.BackendPing)),
		Users:         handlers.NewUsersHandler(svc.Auth),
		Tickets:       handlers.NewTicketsHandler(svc),
		StaffTickets:  handlers.NewStaffTicketsHandler(svc.Assignments),
		Templates:     handlers.NewTemplatesHandler(svc.Templates),
		Notifications: handlers.NewNotificationsHandler(svc.Notifications),
		Metrics:       handlers.NewMetricsHandler(svc),
		Searches:      handlers.NewSearchesHandler(cfg.Sessions),
		System:        handlers.NewSystemHandler(svc.Integrations, cfg.Policy, cfg.Metrics),
		SessionGuard:  auth.NewSessionGuard(cfg.Sessions),
	})
	return app
}

func pinger(fn func(ctx context.Context) error) handlers.Pinger {
	if fn == nil {
		return nil
	}
	return handlers.PingFunc(fn)
}
