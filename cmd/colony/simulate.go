package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/colony/internal/simulation"
)

var (
	flagTurns int
	flagSeed  int64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play a seeded scenario headlessly",
	Long: `Play the starting scenario for a number of turns. Every notification is
answered automatically and the narrative is written to standard output.
Closed turns are persisted when a storage driver is configured.

Examples:
  colony simulate --turns 3
  colony simulate --seed 42
  COLONY_GAME_ALWAYS_SUCCEED=true colony simulate`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&flagTurns, "turns", 3, "Number of turns to play")
	simulateCmd.Flags().Int64Var(&flagSeed, "seed", 0, "Dice seed (0 = use game.seed from the configuration)")
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	start := time.Now()
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if flagSeed != 0 {
		cfg.Game.Seed = flagSeed
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	sim, err := simulation.New(simulation.Options{
		Game:          cfg.Game,
		Turns:         flagTurns,
		Out:           os.Stdout,
		Reports:       store,
		Logger:        logger,
		HandleSignals: true,
	})
	if err != nil {
		return fmt.Errorf("building simulation: %w", err)
	}
	defer sim.Close()

	reports, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("simulation complete",
		zap.Int("turns", len(reports)),
		zap.String("storage", cfg.Storage.Driver),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
