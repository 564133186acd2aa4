package storage

import (
	"grocery-forecast-lab/internal/domain"
	"grocery-forecast-lab/internal/features"
)

// FeatureValues flattens table into long-form values for runID, row-major in
// column assembly order. Undefined cells become nil values.
func FeatureValues(runID string, table *features.FeatureTable) []*domain.FeatureValue {
	cols := table.Columns()
	values := make([]*domain.FeatureValue, 0, table.Len()*len(cols))

	for row := 0; row < table.Len(); row++ {
		for _, c := range cols {
			values = append(values, &domain.FeatureValue{
				RunID:   runID,
				UnitID:  table.Units[row],
				Date:    table.Dates[row],
				Feature: c.Name,
				Value:   features.Nullable(c.Values[row]),
			})
		}
	}
	return values
}
