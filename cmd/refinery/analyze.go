package main

import (
	"fmt"
	"log/slog"

	"github.com/olist-data/refinery/internal/cli"
	"github.com/olist-data/refinery/internal/engine"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze product measurements and review timelines",
		Long: `Check product dimensions and weights for unit errors, testing
documented unit hypotheses before flagging, and validate review
timestamps against their orders.`,
		RunE: runAnalyze,
	}

	// Flags
	cmd.Flags().Float64("density-min", 0, "Lower bound of plausible density (g/cm3)")
	cmd.Flags().Float64("density-max", 0, "Upper bound of plausible density (g/cm3)")

	// Bind to viper
	_ = viper.BindPFlag("product.density_min", cmd.Flags().Lookup("density-min"))
	_ = viper.BindPFlag("product.density_max", cmd.Flags().Lookup("density-max"))

	return cmd
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	pipeline := engine.New(store, pipelineConfig())
	summary, err := pipeline.Analyze(ctx)
	if err != nil {
		return err
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf(
		"Analyzed %d products and %d reviews: %d anomalies (%d resolved)",
		summary.Products, summary.Reviews, summary.Anomalies, summary.Resolved)))
	if summary.OrphanedReviews > 0 {
		slog.Warn(cli.FormatWarning(fmt.Sprintf(
			"%d reviews reference unknown orders", summary.OrphanedReviews)))
	}
	return nil
}
