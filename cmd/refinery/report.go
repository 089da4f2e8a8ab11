package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/olist-data/refinery/internal/cli"
	"github.com/olist-data/refinery/internal/engine"
	"github.com/olist-data/refinery/internal/model"
	"github.com/olist-data/refinery/internal/storage"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate or display the data quality report",
		Long: `Aggregate everything the previous stages persisted into one quality
report with per-kind anomaly counts, per-table quality scores and the
list of unresolved critical anomalies.

With --latest the most recent stored report is displayed instead of
generating a new one.`,
		RunE: runReport,
	}

	// Flags
	cmd.Flags().Bool("latest", false, "Display the latest stored report without regenerating")
	cmd.Flags().String("format", "table", "Output format (table, json)")

	// Bind to viper
	_ = viper.BindPFlag("report.latest", cmd.Flags().Lookup("latest"))
	_ = viper.BindPFlag("report.format", cmd.Flags().Lookup("format"))

	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	latest := viper.GetBool("report.latest")
	format := viper.GetString("report.format")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	var report *model.QualityReport
	if latest {
		report, err = store.GetLatestReport(ctx)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no stored report - run 'refinery report' first")
		}
	} else {
		pipeline := engine.New(store, pipelineConfig())
		report, err = pipeline.Report(ctx, nil)
	}
	if err != nil {
		return err
	}

	switch format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case "table":
		fmt.Fprintln(os.Stdout, cli.RenderReport(report))
		return nil
	default:
		return fmt.Errorf("invalid report format: %s", format)
	}
}
