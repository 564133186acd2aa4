// Package target derives the supervised label for a forecast horizon from a
// generated FeatureTable and splits rows into training and prediction sets.
package target

import (
	"errors"
	"fmt"

	"grocery-forecast-lab/internal/features"
)

var (
	// ErrInvalidHorizon is returned for horizons below 1.
	ErrInvalidHorizon = errors.New("horizon must be at least 1")

	// ErrColumnExists is returned when the target column name is already taken.
	ErrColumnExists = errors.New("target column already exists")

	// ErrColumnNotFound is returned when a required column is missing.
	ErrColumnNotFound = errors.New("column not found")
)

// Name returns the target column name for horizon: target_07, target_14.
func Name(horizon int) string {
	return fmt.Sprintf("target_%02d", horizon)
}

// Create appends the target column for horizon to table and returns its name.
// The target of a row is the unit's quantity horizon positions ahead; the last
// horizon rows of every unit have an undefined target.
func Create(table *features.FeatureTable, horizon int) (string, error) {
	if horizon < 1 {
		return "", fmt.Errorf("%w: got %d", ErrInvalidHorizon, horizon)
	}

	src, ok := table.Column(table.Target)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrColumnNotFound, table.Target)
	}

	name := Name(horizon)
	values := make([]float64, table.Len())
	for i := range values {
		values[i] = features.Undefined()
	}
	for _, r := range table.UnitRanges() {
		for i := r.Start; i+horizon < r.End; i++ {
			values[i] = src.Values[i+horizon]
		}
	}

	added, err := table.AddColumn(&features.Column{Name: name, Values: values})
	if err != nil {
		return "", fmt.Errorf("add target column: %w", err)
	}
	if !added {
		return "", fmt.Errorf("%w: %s", ErrColumnExists, name)
	}
	return name, nil
}

// Split holds row indices partitioned by target availability.
type Split struct {
	Train   []int // target defined
	Predict []int // target undefined, the rows to forecast
}

// SplitRows partitions the rows of table by whether column is defined.
func SplitRows(table *features.FeatureTable, column string) (*Split, error) {
	col, ok := table.Column(column)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, column)
	}

	split := &Split{}
	for i, v := range col.Values {
		if features.IsUndefined(v) {
			split.Predict = append(split.Predict, i)
		} else {
			split.Train = append(split.Train, i)
		}
	}
	return split, nil
}
