package main

import (
	"fmt"
	"os"

	"github.com/olist-data/refinery/internal/cli"
	"github.com/olist-data/refinery/internal/engine"

	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline end to end",
		Long: `Execute every stage in dependency order: build the geographic
reference, standardize entities, reconcile order finances, analyze
the catalog and generate the quality report.`,
		RunE: runAll,
	}
}

func runAll(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	pipeline := engine.New(store, pipelineConfig())
	report, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, cli.RenderReport(report))
	return nil
}
