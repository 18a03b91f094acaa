package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"grader-content-api/internal/app"
	"grader-content-api/internal/config"
	"grader-content-api/internal/infra/firestore"
	"grader-content-api/internal/infra/memory"
	"grader-content-api/internal/infra/postgres"
	infraredis "grader-content-api/internal/infra/redis"
	"grader-content-api/internal/infra/sqlite"
)

// openStore builds the configured document store, wrapped in Redis or an
// in-process cache when one is configured. The returned func releases every
// connection that was opened.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (app.DocumentStore, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var store app.DocumentStore
	switch cfg.Store.Driver {
	case config.DriverMemory:
		store = memory.NewDocumentStore()
	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { s.Close() })
		store = s
	case config.DriverPostgres:
		if err := runMigrations(ctx, cfg, logger); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		pool, err := postgres.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, pool.Close)
		store = postgres.NewDocumentStore(pool)
	case config.DriverFirestore:
		emulator := cfg.Firestore.EmulatorHost != ""
		if emulator {
			os.Setenv("FIRESTORE_EMULATOR_HOST", cfg.Firestore.EmulatorHost)
		}
		s, err := firestore.Open(ctx, cfg.Firestore.ProjectID, cfg.Firestore.CredentialsFile, emulator)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { s.Close() })
		store = s
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if cfg.Redis.Addr != "" {
		client, err := infraredis.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() { client.Close() })
		ttl := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
		logger.Info("redis cache enabled", "addr", cfg.Redis.Addr, "ttl", ttl.String())
		store = infraredis.NewDocumentCache(client, store, ttl)
	} else if ttl := config.TTLDuration(cfg.Cache.TTL, 0); ttl > 0 {
		logger.Info("in-process cache enabled", "ttl", ttl.String())
		store = memory.NewCachedStore(store, ttl)
	}

	logger.Info("document store ready", "driver", cfg.Store.Driver)
	return store, closeAll, nil
}
