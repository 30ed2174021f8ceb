// Package app wires configuration, adapters and interpreters into a runner.
package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/on-the-ground/effect_ive_engine/effects"
	"github.com/on-the-ground/effect_ive_engine/effects/auth"
	"github.com/on-the-ground/effect_ive_engine/effects/cache"
	"github.com/on-the-ground/effect_ive_engine/effects/config"
	"github.com/on-the-ground/effect_ive_engine/effects/database"
	"github.com/on-the-ground/effect_ive_engine/effects/messaging"
	"github.com/on-the-ground/effect_ive_engine/effects/storage"
	"github.com/on-the-ground/effect_ive_engine/effects/transport"
)

// App owns every adapter it created and releases them on Close.
type App struct {
	Config  config.Config
	Logger  *zap.Logger
	Metrics *effects.Metrics

	Broker    *messaging.MemoryBroker
	Buckets   *storage.MemDBBucketStore
	Hub       *transport.Hub
	Authority *auth.SealedAuthority

	Composite *effects.Composite
	Runner    *effects.Runner
	Pool      *effects.Pool

	closers []func() error
}

// New builds an App from cfg. Metrics are registered with reg; a nil reg
// gets a private registry. The pool stops when ctx ends.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, reg prometheus.Registerer) (_ *App, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	a := &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	repo, err := a.openRepository()
	if err != nil {
		return nil, err
	}

	store, err := cache.NewRistrettoStore(cfg.CacheNumCounters, cfg.CacheMaxCost)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	a.closers = append(a.closers, func() error { store.Close(); return nil })

	a.Broker = messaging.NewMemoryBroker()
	a.closers = append(a.closers, func() error { a.Broker.Close(); return nil })

	if a.Buckets, err = storage.NewMemDBBucketStore(); err != nil {
		return nil, fmt.Errorf("open bucket store: %w", err)
	}

	a.Hub = transport.NewHub()

	secret := []byte(cfg.AuthSecret)
	if len(secret) == 0 {
		logger.Warn("no auth secret configured, tokens will not survive a restart")
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate auth secret: %w", err)
		}
	}
	if a.Authority, err = auth.NewSealedAuthority(secret); err != nil {
		return nil, err
	}

	a.Composite, err = effects.NewRegistry().
		Register(
			database.NewInterpreter(repo),
			cache.NewInterpreter(store),
			messaging.NewInterpreter(a.Broker),
			storage.NewInterpreter(a.Buckets),
			transport.NewInterpreter(a.Hub),
			auth.NewInterpreter(a.Authority),
		).
		RequireAll().
		Build()
	if err != nil {
		return nil, fmt.Errorf("build interpreters: %w", err)
	}

	if a.Metrics, err = effects.NewMetrics(reg); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	exec := effects.Instrument(effects.Audit(a.Composite, logger.Named("effects")), a.Metrics)
	a.Runner = effects.NewRunner(exec,
		effects.WithLogger(logger.Named("runner")),
		effects.WithMetrics(a.Metrics),
	)
	a.Pool = effects.NewPool(ctx, cfg.Pool, a.Runner)
	a.closers = append(a.closers, func() error { a.Pool.Close(); return nil })

	logger.Info("engine ready",
		zap.String("database", cfg.DatabaseBackend),
		zap.Int("routes", len(a.Composite.Tags())),
		zap.Int("workers", cfg.Pool.NumWorkers),
		zap.String("pool_id", a.Pool.ID),
	)
	return a, nil
}

func (a *App) openRepository() (database.Repository, error) {
	switch a.Config.DatabaseBackend {
	case config.BackendMemDB:
		repo, err := database.NewMemDBRepository()
		if err != nil {
			return nil, fmt.Errorf("open memdb: %w", err)
		}
		return repo, nil
	case config.BackendSQLite:
		repo, err := database.NewSQLiteRepository(a.Config.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", a.Config.SQLitePath, err)
		}
		a.closers = append(a.closers, repo.Close)
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown database backend %q", a.Config.DatabaseBackend)
	}
}

// Close releases adapters in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
