package main

import (
	"github.com/spf13/cobra"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run one feature pipeline over the configured stores",
	Long: `Loads sales and holidays from PostgreSQL (or synthetic fixtures with
--use-memory), generates features and the target, stores the run record and
optionally the feature values, and writes reports to the output directory.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		stores, cleanup, err := createStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := newOrchestrator(stores).Run(ctx)
		if err != nil {
			return err
		}
		logResult(result)
		return nil
	},
}
