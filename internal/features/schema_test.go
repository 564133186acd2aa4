package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchema_Names(t *testing.T) {
	s := NewSchema("sales")

	tests := []struct {
		spec ColumnSpec
		want string
	}{
		{ColumnSpec{Family: FamilyAbsChange, Window: 7}, "abs_change"},
		{ColumnSpec{Family: FamilyRollQuantile, Window: 7, Quantile: 0.5}, "sales_roll_q0.5_w7"},
		{ColumnSpec{Family: FamilyRollMean, Window: 14}, "sales_roll_mean_w14"},
		{ColumnSpec{Family: FamilyNonZeroMean, Window: 7}, "non_zero_sales_roll_mean_w7"},
		{ColumnSpec{Family: FamilyRollStd, Window: 7}, "sales_roll_std_w7"},
		{ColumnSpec{Family: FamilySquaredSum, Window: 7}, "sales_roll_squared_sum_w7"},
		{ColumnSpec{Family: FamilyNonZeroProp, Window: 7}, "sales_roll_nonzero_prop_w7"},
		{ColumnSpec{Family: FamilyZeroProp, Window: 7}, "sales_roll_zero_prop_w7"},
		{ColumnSpec{Family: FamilyLag, Lag: 3}, "sales_lag3"},
		{ColumnSpec{Family: FamilyLagRatio, Lag: 3}, "sales_lag3/lag4"},
		{ColumnSpec{Family: FamilyYearAgoLag, Lag: 358}, "sales_y_ago_lag358"},
		{ColumnSpec{Family: FamilyCyclicalSin, Calendar: "month"}, "month_sin"},
		{ColumnSpec{Family: FamilyCyclicalCos, Calendar: "week"}, "week_cos"},
		{ColumnSpec{Family: FamilyHolidayNext}, "d_to_holiday_future"},
		{ColumnSpec{Family: FamilyHolidayPrev}, "d_to_holiday_past"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Name(tt.spec))
		})
	}
}

func TestSchema_ColumnsDeduplicateAbsChange(t *testing.T) {
	s := NewSchema("sales")

	names := s.Columns([]int{7, 14})

	// 29 lags + 15 year-ago + 10 (w7) + 9 (w14) + 10 cyclical + 2 holidays.
	assert.Len(t, names, 75)
	assert.Equal(t, "sales_lag0", names[0])
	assert.Equal(t, "abs_change", names[44])
	assert.Equal(t, ColumnHolidayPast, names[len(names)-1])
}
