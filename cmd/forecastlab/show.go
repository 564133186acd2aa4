package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"grocery-forecast-lab/internal/domain"
	"grocery-forecast-lab/internal/storage"
)

// showQuery selects stored feature values. An empty RunID means the latest run.
type showQuery struct {
	RunID   string
	Unit    string
	Feature string
}

var showFlags showQuery

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print stored feature values of a run",
	Long: `Prints feature values of a stored run as unit,date,feature,value CSV.
Select a unit with --unit, a feature column with --feature, or both. Without
--run-id the most recent run is used.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		stores, cleanup, err := createStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		return showRun(ctx, cmd.OutOrStdout(), stores, showFlags)
	},
}

func init() {
	showCmd.Flags().StringVar(&showFlags.RunID, "run-id", "", "run to show (latest if empty)")
	showCmd.Flags().StringVar(&showFlags.Unit, "unit", "", "unit to show")
	showCmd.Flags().StringVar(&showFlags.Feature, "feature", "", "feature column to show")
}

func showRun(ctx context.Context, w io.Writer, stores *allStores, q showQuery) error {
	if q.Unit == "" && q.Feature == "" {
		return errors.New("--unit or --feature is required")
	}
	if stores.featureStore == nil {
		return errors.New("feature values are not persisted, enable --persist-features")
	}

	run, err := resolveRun(ctx, stores.runStore, q.RunID)
	if err != nil {
		return err
	}

	var values []*domain.FeatureValue
	if q.Unit != "" {
		values, err = stores.featureStore.GetByUnit(ctx, run.RunID, q.Unit)
	} else {
		values, err = stores.featureStore.GetColumn(ctx, run.RunID, q.Feature)
	}
	if err != nil {
		return fmt.Errorf("load feature values: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"unit", "date", "feature", "value"}); err != nil {
		return err
	}
	for _, v := range values {
		if q.Feature != "" && v.Feature != q.Feature {
			continue
		}
		value := ""
		if v.Value != nil {
			value = strconv.FormatFloat(*v.Value, 'g', -1, 64)
		}
		if err := cw.Write([]string{v.UnitID, v.Date.Format("2006-01-02"), v.Feature, value}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func resolveRun(ctx context.Context, runs storage.RunStore, runID string) (*domain.FeatureRun, error) {
	var (
		run *domain.FeatureRun
		err error
	)
	if runID == "" {
		run, err = runs.GetLatest(ctx)
	} else {
		run, err = runs.GetByID(ctx, runID)
	}
	if errors.Is(err, storage.ErrNotFound) {
		if runID == "" {
			return nil, fmt.Errorf("no runs stored: %w", err)
		}
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return run, err
}
