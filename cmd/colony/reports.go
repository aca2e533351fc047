package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/colony/internal/config"
)

var flagLimit int

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Show stored turn reports",
	Long: `Display the financial reports of the most recent closed turns.
Requires the sqlite or postgres storage driver.

Examples:
  COLONY_STORAGE_DRIVER=sqlite colony reports
  colony reports --config configs/dev.yaml --limit 1`,
	Args: cobra.NoArgs,
	RunE: runReports,
}

func init() {
	reportsCmd.Flags().IntVar(&flagLimit, "limit", 10, "Maximum number of reports (0 = all)")
}

func runReports(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Storage.Driver == config.DriverNone {
		return errors.New("no storage driver configured: set storage.driver to sqlite or postgres")
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

	reports, err := store.List(ctx, flagLimit)
	if err != nil {
		return fmt.Errorf("listing reports: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(reports) == 0 {
		fmt.Fprintln(out, "No turns recorded yet.")
		fmt.Fprintln(out, "Run 'colony simulate' to play some.")
		return nil
	}
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, r.String())
	}
	return nil
}
