package main

import (
	"fmt"
	"log/slog"

	"github.com/olist-data/refinery/internal/cli"
	"github.com/olist-data/refinery/internal/engine"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func referenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reference",
		Short: "Build the canonical geographic reference",
		Long: `Collapse the raw geolocation samples into one canonical record per
postal code prefix, with a majority-vote city name, aggregated
coordinates and a sample-volume quality score.`,
		RunE: runReference,
	}

	// Flags
	cmd.Flags().Int("medium-min", 0, "Minimum samples for medium quality")
	cmd.Flags().Int("high-above", 0, "Samples above which quality is high")

	// Bind to viper
	_ = viper.BindPFlag("reference.medium_min", cmd.Flags().Lookup("medium-min"))
	_ = viper.BindPFlag("reference.high_above", cmd.Flags().Lookup("high-above"))

	return cmd
}

func runReference(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	pipeline := engine.New(store, pipelineConfig())
	stats, err := pipeline.BuildReference(ctx)
	if err != nil {
		return err
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf(
		"Reference built: %d prefixes from %d samples (%d duplicates, %d skipped)",
		stats.Prefixes, stats.TotalSamples, stats.Duplicates, stats.Skipped)))
	return nil
}
