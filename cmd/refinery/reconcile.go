package main

import (
	"fmt"
	"log/slog"

	"github.com/olist-data/refinery/internal/cli"
	"github.com/olist-data/refinery/internal/engine"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile order item totals against payments",
		Long: `Match every order's item totals against its payment totals and
classify each discrepancy against the documented anomaly rules.
Technical errors are repaired; business discrepancies are documented.`,
		RunE: runReconcile,
	}

	// Flags
	cmd.Flags().Float64("tolerance", 0, "Amount comparison tolerance")
	cmd.Flags().Float64("tax-ratio-max", 0, "Maximum overpayment ratio treated as tax")

	// Bind to viper
	_ = viper.BindPFlag("reconcile.amount_tolerance", cmd.Flags().Lookup("tolerance"))
	_ = viper.BindPFlag("reconcile.tax_ratio_max", cmd.Flags().Lookup("tax-ratio-max"))

	return cmd
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	pipeline := engine.New(store, pipelineConfig())
	summary, err := pipeline.Reconcile(ctx)
	if err != nil {
		return err
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf(
		"Reconciled %d orders: %d flagged, %d resolved, %d duplicate rows dropped",
		summary.Orders, summary.Flagged, summary.Resolved, summary.Duplicates)))
	return nil
}
