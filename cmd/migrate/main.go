// Package main applies the turn report schema to PostgreSQL.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/colony/internal/config"
	"github.com/cory-johannsen/colony/internal/observability"
	"github.com/cory-johannsen/colony/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 0, "number of steps (0 = all)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg.Database, *direction, *steps, logger); err != nil {
		logger.Fatal("migration failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
	}
}

func run(db config.DatabaseConfig, direction string, steps int, logger *zap.Logger) error {
	res, err := postgres.Migrate(db.DSN(), direction, steps)
	if err != nil {
		return err
	}
	logger.Info("migration complete",
		zap.String("direction", direction),
		zap.Uint("version", res.Version),
		zap.Bool("dirty", res.Dirty),
		zap.Bool("changed", res.Changed),
	)
	return nil
}
