package features

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"grocery-forecast-lab/internal/domain"
)

var testColumns = Columns{Unit: "store_item", Date: "date", Target: "sales"}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(domain.DateLayout, s)
	require.NoError(t, err)
	return d
}

// seriesTable builds a raw table with one row per (unit, day) starting at start.
func seriesTable(t *testing.T, start string, series map[string][]float64) *RawTable {
	t.Helper()
	first := day(t, start)
	table := &RawTable{Header: []string{testColumns.Unit, testColumns.Date, testColumns.Target}}
	for unit, values := range series {
		for i, v := range values {
			table.Rows = append(table.Rows, []string{
				unit,
				first.AddDate(0, 0, i).Format(domain.DateLayout),
				strconv.FormatFloat(v, 'g', -1, 64),
			})
		}
	}
	return table
}

func buildPanel(t *testing.T, series map[string][]float64) *Panel {
	t.Helper()
	panel, err := BuildPanel(seriesTable(t, "2024-01-01", series), testColumns)
	require.NoError(t, err)
	return panel
}

// undefinedCount returns the number of undefined cells in values.
func undefinedCount(values []float64) int {
	n := 0
	for _, v := range values {
		if IsUndefined(v) {
			n++
		}
	}
	return n
}
