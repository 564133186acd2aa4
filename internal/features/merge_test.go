package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_PreservesPanelKeys(t *testing.T) {
	panel := buildPanel(t, map[string][]float64{
		"A": {1, 0, 2, 0, 3},
		"B": {0, 0, 4, 1, 1},
	})
	schema := NewSchema("sales")
	units, dates := panel.RowUnits(), panel.RowDates()

	table, err := Merge(panel, testColumns,
		ComputeLags(schema, units, dates, panel.Series()),
		computeRolling(t, panel, 2),
		EncodeCyclical(schema, panel.DateAxis),
		ComputeHolidayDistances(schema, NewHolidayCalendar([]time.Time{day(t, "2024-01-03")}), panel.DateAxis),
	)
	require.NoError(t, err)

	assert.Equal(t, panel.Len(), table.Len())
	assert.Equal(t, units, table.Units)
	assert.Equal(t, dates, table.Dates)
	assert.Equal(t, "sales", table.ColumnNames()[0])

	// Date-keyed values repeat for every unit on that date.
	for row := 0; row < 5; row++ {
		a, _ := table.Value(row, "day_sin")
		b, _ := table.Value(row+5, "day_sin")
		assert.Equal(t, a, b)
	}
	future, ok := table.Value(7, ColumnHolidayFuture)
	require.True(t, ok)
	assert.Equal(t, 0.0, future)
}

func TestMerge_KeepsFirstDuplicate(t *testing.T) {
	panel := buildPanel(t, map[string][]float64{"A": {1, 3, 6}})

	w2 := computeRolling(t, panel, 2)
	w3 := computeRolling(t, panel, 3)
	w3.Column("abs_change").Values[1] = 99

	table, err := Merge(panel, testColumns, w2, w3)
	require.NoError(t, err)

	count := 0
	for _, name := range table.ColumnNames() {
		if name == "abs_change" {
			count++
		}
	}
	assert.Equal(t, 1, count)

	v, _ := table.Value(1, "abs_change")
	assert.Equal(t, 2.0, v)

	// 1 target + 10 columns of w2 + 9 new columns of w3.
	assert.Len(t, table.ColumnNames(), 20)
}

func TestMerge_RejectsMisalignedBlock(t *testing.T) {
	panel := buildPanel(t, map[string][]float64{"A": {1, 2}, "B": {3, 4}})

	units := panel.RowUnits()
	units[0], units[2] = units[2], units[0]
	bad := &Block{
		Name:    "bad",
		Key:     KeyUnitDate,
		Units:   units,
		Dates:   panel.RowDates(),
		Columns: []*Column{newColumn("x", panel.Len())},
	}

	_, err := Merge(panel, testColumns, bad)
	assert.ErrorIs(t, err, ErrKeyMismatch)

	short := &Block{
		Name:    "short",
		Key:     KeyUnitDate,
		Units:   panel.RowUnits()[:3],
		Dates:   panel.RowDates()[:3],
		Columns: []*Column{newColumn("x", 3)},
	}
	_, err = Merge(panel, testColumns, short)
	assert.ErrorIs(t, err, ErrKeyMismatch)
}

func TestMerge_DateBlockLeftJoin(t *testing.T) {
	panel := buildPanel(t, map[string][]float64{"A": {1, 2, 3}})

	partial := &Block{
		Name:  "partial",
		Key:   KeyDate,
		Dates: []time.Time{panel.DateAxis[1]},
		Columns: []*Column{
			{Name: "flag", Values: []float64{7}},
		},
	}

	table, err := Merge(panel, testColumns, partial)
	require.NoError(t, err)

	col, ok := table.Column("flag")
	require.True(t, ok)
	assert.True(t, IsUndefined(col.Values[0]))
	assert.Equal(t, 7.0, col.Values[1])
	assert.True(t, IsUndefined(col.Values[2]))

	dup := &Block{
		Name:    "dup",
		Key:     KeyDate,
		Dates:   []time.Time{panel.DateAxis[0], panel.DateAxis[0]},
		Columns: []*Column{{Name: "y", Values: []float64{1, 2}}},
	}
	_, err = Merge(panel, testColumns, dup)
	assert.ErrorIs(t, err, ErrKeyMismatch)
}

func TestFeatureTable_UnitRanges(t *testing.T) {
	panel := buildPanel(t, map[string][]float64{"A": {1, 2, 3}, "B": {4, 5, 6}})
	table, err := Merge(panel, testColumns)
	require.NoError(t, err)

	assert.Equal(t, []UnitRange{
		{UnitID: "A", Start: 0, End: 3},
		{UnitID: "B", Start: 3, End: 6},
	}, table.UnitRanges())
}
