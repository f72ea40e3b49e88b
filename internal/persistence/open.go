package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/config"
)

// Backend is an opened KV store plus its health probe and release hook.
type Backend struct {
	KV    KV
	Name  string
	Ping  func(ctx context.Context) error
	Close func()
}

// Open builds the KV backend selected by cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	noop := func() {}
	alwaysOK := func(context.Context) error { return nil }

	switch cfg.Storage.Driver {
	case "memory":
		return &Backend{KV: NewMemoryKV(), Name: "memory", Ping: alwaysOK, Close: noop}, nil
	case "file":
		kv, err := NewFileKV(cfg.Storage.Dir)
		if err != nil {
			return nil, err
		}
		logger.Debug("using file storage", zap.String("dir", cfg.Storage.Dir))
		return &Backend{KV: kv, Name: "file", Ping: alwaysOK, Close: noop}, nil
	case "redis":
		r := NewRedis(cfg.Redis, cfg.Storage.Prefix, logger)
		return &Backend{KV: r, Name: "redis", Ping: r.Ping, Close: r.Close}, nil
	case "postgres":
		pg, err := NewPostgres(ctx, cfg.Postgres, cfg.Storage.Prefix, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		return &Backend{KV: pg, Name: "postgres", Ping: pg.Ping, Close: pg.Close}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
