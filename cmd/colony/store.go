package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/colony/internal/config"
	"github.com/cory-johannsen/colony/internal/game/ledger"
	"github.com/cory-johannsen/colony/internal/storage/postgres"
	"github.com/cory-johannsen/colony/internal/storage/sqlite"
)

// openStore returns the report store selected by cfg.Driver and a function
// releasing it. The "none" driver yields a nil store.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (ledger.ReportStore, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.Storage.SQLitePath, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		return pool.Reports(logger), pool.Close, nil
	default:
		return nil, func() {}, nil
	}
}
