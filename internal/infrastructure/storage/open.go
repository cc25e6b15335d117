// Package storage opens the account repository selected by configuration and
// collects its health checks and shutdown hooks.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/siriphobmean/next-crud/internal/core/ports"
	"github.com/siriphobmean/next-crud/internal/infrastructure/db/memory"
	"github.com/siriphobmean/next-crud/internal/infrastructure/db/mongo"
	"github.com/siriphobmean/next-crud/internal/infrastructure/db/postgres"
	"github.com/siriphobmean/next-crud/internal/infrastructure/db/redis"
	"github.com/siriphobmean/next-crud/internal/infrastructure/db/sqlite"
	"github.com/siriphobmean/next-crud/internal/pkg/config"
)

// Backend is an opened repository plus what the process needs to probe and
// release it.
type Backend struct {
	Accounts ports.AccountRepository
	Checks   map[string]ports.HealthCheck
	closers  []func() error
}

func (b *Backend) onClose(fn func() error) {
	b.closers = append(b.closers, fn)
}

// Close releases resources in reverse order of acquisition.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}

// Open builds the repository for cfg.Store.Driver, applying migrations or
// indexes as the driver needs, and wraps it in the Redis cache when enabled.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Backend, error) {
	b := &Backend{Checks: make(map[string]ports.HealthCheck)}

	if err := b.openStore(ctx, cfg, log); err != nil {
		_ = b.Close()
		return nil, err
	}

	if cfg.Redis.Enabled {
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		b.onClose(client.Close)

		cached := redis.NewCachedAccountRepository(b.Accounts, client, cfg.Redis.CacheTTL, redis.DefaultPrefix, log)
		b.Accounts = cached
		b.Checks["redis"] = cached.Ping
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.CacheTTL).Msg("account cache enabled")
	}

	return b, nil
}

func (b *Backend) openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		b.Accounts = memory.NewAccountRepository()
		b.Checks["memory"] = func(context.Context) error { return nil }
		log.Warn().Msg("using in-memory store; data is lost on exit")

	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			return fmt.Errorf("open sqlite store: %w", err)
		}
		b.onClose(store.Close)
		b.Accounts = store
		b.Checks["sqlite"] = store.Ping
		log.Info().Str("path", cfg.Store.SQLitePath).Msg("sqlite store ready")

	case config.DriverPostgres:
		if err := postgres.RunMigrations(cfg.Postgres.DSN); err != nil {
			return fmt.Errorf("postgres migrations: %w", err)
		}
		pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
			DSN:         cfg.Postgres.DSN,
			MaxConns:    cfg.Postgres.MaxConns,
			MinConns:    cfg.Postgres.MinConns,
			MaxConnLife: cfg.Postgres.MaxConnLife,
		})
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		b.onClose(func() error { pool.Close(); return nil })
		repo := postgres.NewAccountRepository(pool)
		b.Accounts = repo
		b.Checks["postgres"] = repo.Ping
		log.Info().Msg("postgres store ready")

	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		b.onClose(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.Disconnect(ctx)
		})
		repo := mongo.NewAccountRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("mongo indexes: %w", err)
		}
		b.Accounts = repo
		b.Checks["mongodb"] = repo.Ping
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo store ready")

	default:
		return fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	return nil
}
