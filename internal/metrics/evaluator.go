package metrics

import (
	"fmt"

	"grocery-forecast-lab/internal/features"
)

// Report is the scored quality of one predictor column against a target.
type Report struct {
	Predictor    string
	Target       string
	Observations int // rows where both values are defined
	WAPE         float64
	MedianAPE    float64
	ZeroActuals  int // rows excluded from MedianAPE
}

// Evaluate scores predictor against target over rows of table. Rows where
// either value is undefined are ignored. A nil rows slice means all rows.
func Evaluate(table *features.FeatureTable, target, predictor string, rows []int) (*Report, error) {
	actualCol, ok := table.Column(target)
	if !ok {
		return nil, fmt.Errorf("target column %s not found", target)
	}
	predCol, ok := table.Column(predictor)
	if !ok {
		return nil, fmt.Errorf("predictor column %s not found", predictor)
	}

	if rows == nil {
		rows = make([]int, table.Len())
		for i := range rows {
			rows[i] = i
		}
	}

	actual := make([]float64, 0, len(rows))
	predicted := make([]float64, 0, len(rows))
	for _, r := range rows {
		a, p := actualCol.Values[r], predCol.Values[r]
		if features.IsUndefined(a) || features.IsUndefined(p) {
			continue
		}
		actual = append(actual, a)
		predicted = append(predicted, p)
	}

	wape, err := WAPE(actual, predicted)
	if err != nil {
		return nil, fmt.Errorf("wape %s vs %s: %w", predictor, target, err)
	}
	median, skipped, err := MedianAPE(actual, predicted)
	if err != nil {
		return nil, fmt.Errorf("median ape %s vs %s: %w", predictor, target, err)
	}

	return &Report{
		Predictor:    predictor,
		Target:       target,
		Observations: len(actual),
		WAPE:         wape,
		MedianAPE:    median,
		ZeroActuals:  skipped,
	}, nil
}
