// Package app initializes long-lived services from configuration,
// acting as the composition point for embedding processes.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spiderline/webgraph/internal/clock/system"
	"github.com/spiderline/webgraph/internal/config"
	"github.com/spiderline/webgraph/internal/logging"
	"github.com/spiderline/webgraph/internal/manager"
	"github.com/spiderline/webgraph/internal/policy"
	"github.com/spiderline/webgraph/internal/store/file"
	"github.com/spiderline/webgraph/internal/store/memory"
	"github.com/spiderline/webgraph/internal/store/postgres"
	"github.com/spiderline/webgraph/internal/webgraph"
)

// App holds the shared services built from configuration: the logger,
// the graph store, and the manager that owns the crawl state.
type App struct {
	logger  *zap.Logger
	store   webgraph.GraphStore
	manager *manager.Manager
}

// Logger returns the shared zap logger instance.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Manager returns the link-graph manager driving the crawl.
func (a *App) Manager() *manager.Manager {
	return a.manager
}

// New builds an App from configuration, choosing the store provider and
// wiring the policies and manager. seeds are pushed into the frontier
// ahead of the graph-derived entries. It fails fast if any service
// cannot be initialized.
func New(ctx context.Context, cfg config.Config, seeds []string) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	var store webgraph.GraphStore
	switch cfg.Store.Provider {
	case "file":
		store, err = file.New(file.Config{
			Path:       cfg.Store.File.Path,
			BackupPath: cfg.Store.File.BackupPath,
		})
	case "postgres":
		logger.Info("connecting to postgres", zap.String("table", cfg.Store.Postgres.Table))
		store, err = postgres.New(ctx, postgres.Config{
			DSN:             cfg.Store.Postgres.DSN,
			Table:           cfg.Store.Postgres.Table,
			MaxConns:        cfg.Store.Postgres.MaxConns,
			MinConns:        cfg.Store.Postgres.MinConns,
			MaxConnLifetime: time.Hour,
		})
	case "memory":
		logger.Info("using in-memory store, graph will not survive restarts")
		store = memory.New()
	default:
		return nil, fmt.Errorf("unknown store provider: %s", cfg.Store.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}

	clk := system.New()
	mgr := manager.New(ctx, manager.Options{
		Store:   store,
		Clock:   clk,
		Logger:  logger,
		Revisit: policy.NewRevisit(clk, cfg.RevisitWindow(), cfg.Policy.RefetchEmptySites),
		Purge:   policy.NewPurge(webgraph.NewDenylist(cfg.Policy.DenyHosts)),
		Seeds:   seeds,
	})

	return &App{
		logger:  logger,
		store:   store,
		manager: mgr,
	}, nil
}

// Close releases the store and flushes the logger.
func (a *App) Close() {
	a.store.Close()
	if err := a.logger.Sync(); err != nil {
		// Best-effort flush; logging itself may be failing.
		a.logger.Warn("error syncing logger on shutdown", zap.Error(err))
	}
}
