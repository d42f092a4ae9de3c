package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"retailops/internal/config"
	"retailops/internal/domain/storefront"
	"retailops/internal/infrastructure/cache"
	"retailops/internal/infrastructure/storage/memory"
	"retailops/internal/infrastructure/storage/postgres"
	"retailops/pkg/logger"
)

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Runtime is the opened storage, cache and services of one process.
type Runtime struct {
	Services *Services

	// Pool is nil with the memory driver.
	Pool *pgxpool.Pool

	// Checks are the dependencies reported by /health/ready.
	Checks map[string]Pinger

	closers []func() error
}

// Open connects the configured storage driver and availability cache and wires
// the services over them.
func Open(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	rt := &Runtime{Checks: make(map[string]Pinger)}

	var repos Repositories
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		rt.Pool = pool
		rt.closers = append(rt.closers, func() error { pool.Close(); return nil })
		rt.Checks["database"] = pool

		repos, err = PostgresRepositories(pool)
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
	default:
		repos = MemoryRepositories(memory.New())
	}

	availability, err := rt.openCache(ctx, cfg)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	rt.Services = NewServices(repos, availability, cfg.AvailabilityCacheTTL)
	logger.Info(ctx, "runtime opened",
		"storage", cfg.StorageDriver,
		"redis", cfg.RedisAddr != "",
	)
	return rt, nil
}

// openCache prefers Redis. Without it, the local cache is kept coherent through
// LISTEN/NOTIFY when a database pool exists.
func (rt *Runtime) openCache(ctx context.Context, cfg *config.Config) (storefront.Cache, error) {
	if cfg.RedisAddr != "" {
		rc := cache.NewRedisAvailabilityCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		rt.closers = append(rt.closers, rc.Close)
		rt.Checks["cache"] = rc
		return rc, nil
	}

	local := cache.NewLocalAvailabilityCache(rt.Pool)
	local.Start(ctx)
	rt.closers = append(rt.closers, func() error { local.Stop(); return nil })
	return local, nil
}

// Close releases everything Open acquired, in reverse order.
func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
