package main

import (
	"fmt"
	"log/slog"

	"github.com/olist-data/refinery/internal/cli"
	"github.com/olist-data/refinery/internal/engine"

	"github.com/spf13/cobra"
)

func standardizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "standardize",
		Short: "Standardize customer and seller city names",
		Long: `Rewrite customer and seller city names against the canonical
geographic reference, attach reference coordinates, and flag
malformed city names. The raw values are never overwritten.

Requires the reference stage to have run first.`,
		RunE: runStandardize,
	}
}

func runStandardize(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	pipeline := engine.New(store, pipelineConfig())
	summaries, err := pipeline.Standardize(ctx)
	if err != nil {
		return err
	}

	for _, s := range summaries {
		slog.Info(cli.FormatSuccess(fmt.Sprintf(
			"%s: %d records, %d corrected, %d unmatched, %d city anomalies",
			s.Stats.EntityType, s.Records, s.Stats.Corrected, s.Stats.Unmatched, s.Anomalies)))
	}
	return nil
}
