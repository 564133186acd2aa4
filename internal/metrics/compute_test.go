package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocery-forecast-lab/internal/features"
	"grocery-forecast-lab/internal/target"
)

func TestWAPE(t *testing.T) {
	got, err := WAPE([]float64{10, 20, 30}, []float64{12, 18, 30})
	require.NoError(t, err)
	// (2 + 2 + 0) / 60
	assert.InDelta(t, 4.0/60.0, got, 1e-12)

	perfect, err := WAPE([]float64{1, 2}, []float64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 0.0, perfect)
}

func TestWAPE_Errors(t *testing.T) {
	_, err := WAPE(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = WAPE([]float64{1}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = WAPE([]float64{0, 0}, []float64{1, 1})
	assert.ErrorIs(t, err, ErrZeroDenominator)
}

func TestMedianAPE(t *testing.T) {
	// APEs: 0.5, 0.1, 0.0 -> median 0.1; the zero actual is skipped.
	median, skipped, err := MedianAPE([]float64{2, 10, 5, 0}, []float64{3, 9, 5, 4})
	require.NoError(t, err)
	assert.InDelta(t, 0.1, median, 1e-12)
	assert.Equal(t, 1, skipped)

	// Even count interpolates: (0.1 + 0.5) / 2.
	median, _, err = MedianAPE([]float64{2, 10}, []float64{3, 9})
	require.NoError(t, err)
	assert.InDelta(t, 0.3, median, 1e-12)
}

func TestMedianAPE_AllZeroActuals(t *testing.T) {
	_, skipped, err := MedianAPE([]float64{0, 0}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Equal(t, 2, skipped)
}

func TestMedianAPE_NegativeActualKeepsSign(t *testing.T) {
	// APEs: 2/-4 = -0.5, 1/2 = 0.5, 0/5 = 0 -> median 0.
	median, _, err := MedianAPE([]float64{-4, 2, 5}, []float64{-2, 3, 5})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, median, 1e-12)

	// A single return: 2/-4.
	median, _, err = MedianAPE([]float64{-4}, []float64{-2})
	require.NoError(t, err)
	assert.InDelta(t, -0.5, median, 1e-12)
}

func TestEvaluate_NaiveLagBaseline(t *testing.T) {
	raw := &features.RawTable{
		Header: []string{"unit", "date", "qty"},
		Rows: [][]string{
			{"A", "2024-01-01", "2"},
			{"A", "2024-01-02", "4"},
			{"A", "2024-01-03", "4"},
			{"A", "2024-01-04", "8"},
		},
	}
	table, err := features.Generate(context.Background(), raw, nil, features.Config{
		Columns: features.Columns{Unit: "unit", Date: "date", Target: "qty"},
	})
	require.NoError(t, err)

	name, err := target.Create(table, 1)
	require.NoError(t, err)

	report, err := Evaluate(table, name, "qty_lag0", nil)
	require.NoError(t, err)

	// Pairs (actual, predicted): (4,2) (4,4) (8,4); the last row has no target.
	assert.Equal(t, 3, report.Observations)
	assert.InDelta(t, 6.0/16.0, report.WAPE, 1e-12)
	assert.InDelta(t, 0.5, report.MedianAPE, 1e-12)
	assert.Equal(t, 0, report.ZeroActuals)

	_, err = Evaluate(table, name, "missing", nil)
	assert.Error(t, err)
}
