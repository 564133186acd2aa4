package features

import (
	"fmt"
	"strconv"
)

// Family identifies a feature family. Together with its parameters a family
// maps to exactly one column name, so every stage and the merger agree on names.
type Family string

// Feature families.
const (
	FamilyAbsChange    Family = "abs_change"
	FamilyRollQuantile Family = "roll_quantile"
	FamilyRollMean     Family = "roll_mean"
	FamilyNonZeroMean  Family = "non_zero_roll_mean"
	FamilyRollStd      Family = "roll_std"
	FamilySquaredSum   Family = "roll_squared_sum"
	FamilyNonZeroProp  Family = "roll_nonzero_prop"
	FamilyZeroProp     Family = "roll_zero_prop"
	FamilyLag          Family = "lag"
	FamilyLagRatio     Family = "lag_ratio"
	FamilyYearAgoLag   Family = "y_ago_lag"
	FamilyCyclicalSin  Family = "cyclical_sin"
	FamilyCyclicalCos  Family = "cyclical_cos"
	FamilyHolidayNext  Family = "holiday_future"
	FamilyHolidayPrev  Family = "holiday_past"
)

// Lag ranges (inclusive).
const (
	MinLag        = 0
	MaxLag        = 14
	MinYearAgoLag = 358
	MaxYearAgoLag = 372
)

// Holiday distance column names.
const (
	ColumnHolidayFuture = "d_to_holiday_future"
	ColumnHolidayPast   = "d_to_holiday_past"
)

// RollingQuantiles are the quantile levels emitted per window.
var RollingQuantiles = []float64{0.1, 0.5, 0.9}

// ColumnSpec is one enumerated feature column.
type ColumnSpec struct {
	Family   Family
	Window   int     // rolling families
	Quantile float64 // FamilyRollQuantile
	Lag      int     // lag families; ratio uses Lag / Lag+1
	Calendar string  // cyclical families: dayofweek, day, dayofyear, week, month
}

// Schema enumerates the column names produced for one target.
type Schema struct {
	target string
}

// NewSchema creates a schema for the given target column name.
func NewSchema(target string) *Schema {
	return &Schema{target: target}
}

// Target returns the target column name.
func (s *Schema) Target() string {
	return s.target
}

// Name returns the stable column name of spec.
func (s *Schema) Name(spec ColumnSpec) string {
	t := s.target
	w := strconv.Itoa(spec.Window)

	switch spec.Family {
	case FamilyAbsChange:
		return "abs_change"
	case FamilyRollQuantile:
		return t + "_roll_q" + strconv.FormatFloat(spec.Quantile, 'f', -1, 64) + "_w" + w
	case FamilyRollMean:
		return t + "_roll_mean_w" + w
	case FamilyNonZeroMean:
		return "non_zero_" + t + "_roll_mean_w" + w
	case FamilyRollStd:
		return t + "_roll_std_w" + w
	case FamilySquaredSum:
		return t + "_roll_squared_sum_w" + w
	case FamilyNonZeroProp:
		return t + "_roll_nonzero_prop_w" + w
	case FamilyZeroProp:
		return t + "_roll_zero_prop_w" + w
	case FamilyLag:
		return fmt.Sprintf("%s_lag%d", t, spec.Lag)
	case FamilyLagRatio:
		return fmt.Sprintf("%s_lag%d/lag%d", t, spec.Lag, spec.Lag+1)
	case FamilyYearAgoLag:
		return fmt.Sprintf("%s_y_ago_lag%d", t, spec.Lag)
	case FamilyCyclicalSin:
		return spec.Calendar + "_sin"
	case FamilyCyclicalCos:
		return spec.Calendar + "_cos"
	case FamilyHolidayNext:
		return ColumnHolidayFuture
	case FamilyHolidayPrev:
		return ColumnHolidayPast
	default:
		return string(spec.Family)
	}
}

// Rolling enumerates the columns of one window block, abs_change first.
func (s *Schema) Rolling(window int) []ColumnSpec {
	specs := []ColumnSpec{{Family: FamilyAbsChange}}
	for _, q := range RollingQuantiles {
		specs = append(specs, ColumnSpec{Family: FamilyRollQuantile, Window: window, Quantile: q})
	}
	for _, f := range []Family{
		FamilyRollMean,
		FamilyNonZeroMean,
		FamilyRollStd,
		FamilySquaredSum,
		FamilyNonZeroProp,
		FamilyZeroProp,
	} {
		specs = append(specs, ColumnSpec{Family: f, Window: window})
	}
	return specs
}

// Lags enumerates lag values followed by lag ratios.
func (s *Schema) Lags() []ColumnSpec {
	var specs []ColumnSpec
	for k := MinLag; k <= MaxLag; k++ {
		specs = append(specs, ColumnSpec{Family: FamilyLag, Lag: k})
	}
	for k := MinLag; k < MaxLag; k++ {
		specs = append(specs, ColumnSpec{Family: FamilyLagRatio, Lag: k})
	}
	return specs
}

// YearAgo enumerates the prior-year locality lags.
func (s *Schema) YearAgo() []ColumnSpec {
	var specs []ColumnSpec
	for k := MinYearAgoLag; k <= MaxYearAgoLag; k++ {
		specs = append(specs, ColumnSpec{Family: FamilyYearAgoLag, Lag: k})
	}
	return specs
}

// Cyclical enumerates sin/cos pairs in calendar field order.
func (s *Schema) Cyclical() []ColumnSpec {
	var specs []ColumnSpec
	for _, f := range cyclicalFields {
		specs = append(specs,
			ColumnSpec{Family: FamilyCyclicalSin, Calendar: f.name},
			ColumnSpec{Family: FamilyCyclicalCos, Calendar: f.name},
		)
	}
	return specs
}

// Holidays enumerates the holiday distance columns.
func (s *Schema) Holidays() []ColumnSpec {
	return []ColumnSpec{{Family: FamilyHolidayNext}, {Family: FamilyHolidayPrev}}
}

// Columns returns every feature column name for the given windows in merge
// order, without duplicates. The target column itself is not included.
func (s *Schema) Columns(windows []int) []string {
	var specs []ColumnSpec
	specs = append(specs, s.Lags()...)
	specs = append(specs, s.YearAgo()...)
	for _, w := range windows {
		specs = append(specs, s.Rolling(w)...)
	}
	specs = append(specs, s.Cyclical()...)
	specs = append(specs, s.Holidays()...)

	seen := make(map[string]struct{}, len(specs))
	names := make([]string, 0, len(specs))
	for _, spec := range specs {
		name := s.Name(spec)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// Names maps specs to column names.
func (s *Schema) Names(specs []ColumnSpec) []string {
	names := make([]string, len(specs))
	for i, spec := range specs {
		names[i] = s.Name(spec)
	}
	return names
}
