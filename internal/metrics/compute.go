// Package metrics computes forecast quality metrics.
package metrics

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"grocery-forecast-lab/internal/features"
)

var (
	// ErrEmptyInput is returned when there is nothing to score.
	ErrEmptyInput = errors.New("no observations to score")

	// ErrLengthMismatch is returned when actual and predicted differ in length.
	ErrLengthMismatch = errors.New("actual and predicted lengths differ")

	// ErrZeroDenominator is returned when WAPE has zero total actual volume.
	ErrZeroDenominator = errors.New("sum of actual values is zero")
)

// WAPE returns the weighted absolute percentage error: sum|a-p| / sum(a).
func WAPE(actual, predicted []float64) (float64, error) {
	if err := checkInput(actual, predicted); err != nil {
		return 0, err
	}

	var absErr, total float64
	for i := range actual {
		absErr += math.Abs(actual[i] - predicted[i])
		total += actual[i]
	}
	if total == 0 {
		return 0, ErrZeroDenominator
	}
	return absErr / total, nil
}

// MedianAPE returns the median of |a-p| / a. The denominator keeps its sign,
// so a negative actual (a return) yields a negative error. Observations with
// a == 0 have no defined percentage error and are skipped; skipped reports
// how many.
func MedianAPE(actual, predicted []float64) (median float64, skipped int, err error) {
	if err := checkInput(actual, predicted); err != nil {
		return 0, 0, err
	}

	ape := make([]float64, 0, len(actual))
	for i := range actual {
		if actual[i] == 0 {
			skipped++
			continue
		}
		ape = append(ape, math.Abs(actual[i]-predicted[i])/actual[i])
	}
	if len(ape) == 0 {
		return 0, skipped, fmt.Errorf("%w: all %d actual values are zero", ErrEmptyInput, skipped)
	}

	sort.Float64s(ape)
	return features.Quantile(ape, 0.50), skipped, nil
}

func checkInput(actual, predicted []float64) error {
	if len(actual) != len(predicted) {
		return fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(actual), len(predicted))
	}
	if len(actual) == 0 {
		return ErrEmptyInput
	}
	return nil
}
