package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-portal/internal/api/http"
	"github.com/spec-kit/helpdesk-portal/internal/bootstrap"
	"github.com/spec-kit/helpdesk-portal/internal/config"
	"github.com/spec-kit/helpdesk-portal/internal/observability"
	"github.com/spec-kit/helpdesk-portal/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to build facade", zap.Error(err))
	}
	defer rt.Close()

	if cfg.Backend.HealthCheckOnStart {
		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rt.CheckBackend(pingCtx); err != nil {
			logger.Warn("helpdesk backend not reachable, read paths will fall back", zap.Error(err))
		}
		pingCancel()
	}

	server := httptransport.ServerConfig{
		App:         cfg.App,
		Logger:      logger,
		Metrics:     rt.Metrics,
		Services:    rt.Services,
		Sessions:    rt.Sessions,
		Policy:      rt.Policy,
		StoragePing: rt.Storage.Ping,
	}
	if rt.Client != nil {
		server.BackendPing = rt.Client.Ping
	}
	app := httptransport.NewApp(server)

	poller := worker.NewNotificationWorker(rt.Services.Notifications, cfg.Notification.PollInterval(), logger)
	if err := poller.Start(ctx); err != nil {
		logger.Fatal("failed to start notification worker", zap.Error(err))
	}

	go func() {
		logger.Info("portal gateway listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	poller.Stop(shutdownCtx)
	_ = app.ShutdownWithContext(shutdownCtx)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
