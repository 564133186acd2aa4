package features

import (
	"context"
	"math"
	"time"
)

// rollingColumns holds a window block's columns by family.
type rollingColumns struct {
	absChange   *Column
	quantiles   []*Column
	mean        *Column
	nonZeroMean *Column
	std         *Column
	squaredSum  *Column
	nonZeroProp *Column
	zeroProp    *Column
}

// ComputeRolling computes the rolling block for one window length.
// Each unit's sequence is processed independently; statistics are undefined
// for the first window-1 rows of every unit.
//
// series must be owned by the caller (see Panel.CloneSeries); units and dates
// are the panel row keys and are only read.
func ComputeRolling(
	ctx context.Context,
	schema *Schema,
	units []string,
	dates []time.Time,
	series []UnitSeries,
	window int,
) (*Block, error) {
	rows := len(dates)
	specs := schema.Rolling(window)

	block := &Block{
		Name:  "rolling",
		Key:   KeyUnitDate,
		Units: units,
		Dates: dates,
	}
	for _, spec := range specs {
		block.Columns = append(block.Columns, newColumn(schema.Name(spec), rows))
	}
	cols := indexRolling(block.Columns, specs)

	acc := newWindowAccumulator(window)

	for _, s := range series {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		acc.Reset()
		for i, x := range s.Values {
			row := s.Offset + i

			if i > 0 {
				cols.absChange.Values[row] = math.Abs(x - s.Values[i-1])
			}

			st, ok := acc.Push(x)
			if !ok {
				continue
			}
			for q, c := range cols.quantiles {
				c.Values[row] = st.quantiles[q]
			}
			cols.mean.Values[row] = st.mean
			cols.nonZeroMean.Values[row] = st.nonZeroMean
			cols.std.Values[row] = st.std
			cols.squaredSum.Values[row] = st.squaredSum
			cols.nonZeroProp.Values[row] = st.nonZeroProp
			cols.zeroProp.Values[row] = st.zeroProp
		}
	}

	return block, nil
}

func indexRolling(columns []*Column, specs []ColumnSpec) rollingColumns {
	var rc rollingColumns
	for i, spec := range specs {
		c := columns[i]
		switch spec.Family {
		case FamilyAbsChange:
			rc.absChange = c
		case FamilyRollQuantile:
			rc.quantiles = append(rc.quantiles, c)
		case FamilyRollMean:
			rc.mean = c
		case FamilyNonZeroMean:
			rc.nonZeroMean = c
		case FamilyRollStd:
			rc.std = c
		case FamilySquaredSum:
			rc.squaredSum = c
		case FamilyNonZeroProp:
			rc.nonZeroProp = c
		case FamilyZeroProp:
			rc.zeroProp = c
		}
	}
	return rc
}
