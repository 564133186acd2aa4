package features

import "time"

// ComputeLags computes {target}_lag{k} for k in 0..14 and the consecutive
// ratios {target}_lag{k}/lag{k+1} for k in 0..13.
//
// Lag k is the value k positions earlier in the unit's sequence, undefined
// if fewer than k rows precede it. Ratio corrections, applied after division:
//   - lag_k == 0 and lag_k+1 == 0: ratio = 1 (instead of 0/0)
//   - lag_k > 0 and lag_k+1 == 0:  ratio = 2 (instead of +Inf)
//
// An undefined operand never matches either rule, so the ratio stays undefined.
func ComputeLags(schema *Schema, units []string, dates []time.Time, series []UnitSeries) *Block {
	block := &Block{
		Name:  "lags",
		Key:   KeyUnitDate,
		Units: units,
		Dates: dates,
	}

	lagCols := make([]*Column, 0, MaxLag-MinLag+1)
	for k := MinLag; k <= MaxLag; k++ {
		c := newColumn(schema.Name(ColumnSpec{Family: FamilyLag, Lag: k}), len(dates))
		shiftInto(c.Values, series, k)
		lagCols = append(lagCols, c)
	}
	block.Columns = append(block.Columns, lagCols...)

	for k := MinLag; k < MaxLag; k++ {
		num := lagCols[k-MinLag].Values
		den := lagCols[k-MinLag+1].Values

		c := newColumn(schema.Name(ColumnSpec{Family: FamilyLagRatio, Lag: k}), len(dates))
		for i := range c.Values {
			c.Values[i] = lagRatio(num[i], den[i])
		}
		block.Columns = append(block.Columns, c)
	}

	return block
}

// lagRatio divides two lag values and applies the zero-denominator rules.
func lagRatio(num, den float64) float64 {
	if IsUndefined(num) || IsUndefined(den) {
		return Undefined()
	}
	switch {
	case num == 0 && den == 0:
		return 1
	case num > 0 && den == 0:
		return 2
	}
	return num / den
}

// ComputeYearAgo computes {target}_y_ago_lag{k} for k in 358..372, the ±7 day
// band around the same date one year earlier.
func ComputeYearAgo(schema *Schema, units []string, dates []time.Time, series []UnitSeries) *Block {
	block := &Block{
		Name:  "year_ago",
		Key:   KeyUnitDate,
		Units: units,
		Dates: dates,
	}

	for k := MinYearAgoLag; k <= MaxYearAgoLag; k++ {
		c := newColumn(schema.Name(ColumnSpec{Family: FamilyYearAgoLag, Lag: k}), len(dates))
		shiftInto(c.Values, series, k)
		block.Columns = append(block.Columns, c)
	}

	return block
}

// shiftInto writes each unit's sequence shifted forward by k positions into dst.
// Rows without k predecessors keep their undefined value.
func shiftInto(dst []float64, series []UnitSeries, k int) {
	for _, s := range series {
		for i := k; i < len(s.Values); i++ {
			dst[s.Offset+i] = s.Values[i-k]
		}
	}
}
