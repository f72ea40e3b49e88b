// Package bootstrap assembles the data-access facade from configuration so
// the portal gateway and the CLI share one wiring.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/apiclient"
	"github.com/spec-kit/helpdesk-portal/internal/auth"
	"github.com/spec-kit/helpdesk-portal/internal/config"
	"github.com/spec-kit/helpdesk-portal/internal/events"
	"github.com/spec-kit/helpdesk-portal/internal/fallback"
	"github.com/spec-kit/helpdesk-portal/internal/observability"
	"github.com/spec-kit/helpdesk-portal/internal/persistence"
	"github.com/spec-kit/helpdesk-portal/internal/service"
	"github.com/spec-kit/helpdesk-portal/internal/session"
)

// Runtime is the assembled facade.
type Runtime struct {
	Config   *config.Config
	Logger   *zap.Logger
	Metrics  *observability.Metrics
	Storage  *persistence.Backend
	Sessions *session.Store
	// Client is nil in offline mode.
	Client     *apiclient.Client
	Policy     *fallback.Policy
	Dispatcher events.Dispatcher
	Services   *service.Services
}

// Build opens storage and wires every adapter. Call Close when done.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Runtime, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := observability.NewMetrics()

	storage, err := persistence.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}

	sessions := session.NewStore(storage.KV, session.Options{
		Tokens:     auth.NewTokenManager(cfg.Auth.DemoSecret, cfg.Auth.DemoTokenTTLMinutes),
		BcryptCost: cfg.Auth.BcryptCost,
		LogLimit:   cfg.Notification.LogLimit,
		Logger:     logger,
	})

	policy, err := fallback.NewPolicy(cfg.Fallback.Overrides, logger, metrics)
	if err != nil {
		storage.Close()
		return nil, fmt.Errorf("fallback policy: %w", err)
	}

	rt := &Runtime{
		Config:     cfg,
		Logger:     logger,
		Metrics:    metrics,
		Storage:    storage,
		Sessions:   sessions,
		Policy:     policy,
		Dispatcher: events.NewInMemoryDispatcher(),
	}

	deps := service.Dependencies{
		Sessions:   sessions,
		Policy:     policy,
		Simulator:  fallback.NewSimulator(),
		Dispatcher: rt.Dispatcher,
		Logger:     logger,
		Backend:    cfg.Backend,
		Offline:    cfg.App.Offline,
	}
	if !cfg.App.Offline {
		client, err := apiclient.New(apiclient.Config{
			BaseURL: cfg.Backend.BaseURL,
			Timeout: cfg.Backend.Timeout(),
			Tokens:  sessions,
			Logger:  logger,
			Metrics: metrics,
		})
		if err != nil {
			storage.Close()
			return nil, fmt.Errorf("backend client: %w", err)
		}
		rt.Client = client
		deps.Client = client
	}
	rt.Services = service.New(deps)

	logger.Info("facade ready",
		zap.String("storage", storage.Name),
		zap.String("backend", cfg.Backend.BaseURL),
		zap.String("generation", cfg.Backend.Generation),
		zap.Bool("offline", cfg.App.Offline),
	)
	return rt, nil
}

// CheckBackend pings the backend once; offline runtimes always pass.
func (rt *Runtime) CheckBackend(ctx context.Context) error {
	if rt.Client == nil {
		return nil
	}
	return rt.Client.Ping(ctx)
}

// Close releases storage connections.
func (rt *Runtime) Close() {
	if rt != nil && rt.Storage != nil {
		rt.Storage.Close()
	}
}
