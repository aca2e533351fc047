// colony plays the colony action engine headlessly and inspects the turn
// reports it persisted.
//
// Usage:
//
//	colony simulate            - Play a seeded scenario for a number of turns
//	colony reports             - Show stored turn reports, newest first
//
// Global flags:
//
//	--config <path>  - Configuration file (default: none, defaults and COLONY_ env only)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/colony/internal/config"
	"github.com/cory-johannsen/colony/internal/observability"
)

var flagConfig string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "colony",
	Short: "Colony - headless action resolution for a colonial strategy game",
	Long: `Colony runs the action engine of a colonial strategy game without a
user interface. A scripted scenario plays each turn and the closing
financial report of every turn can be persisted to SQLite or PostgreSQL.

Examples:
  colony simulate --turns 5 --seed 42
  colony simulate --config configs/dev.yaml
  colony reports --limit 3`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to configuration file")

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(reportsCmd)
}

// setup loads the configuration and builds the logger shared by every command.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("loading config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("creating logger: %w", err)
	}
	return cfg, logger, nil
}
