package reporting

import "time"

// Report represents the feature run report structure.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string
	Target      string   // target column name, e.g. target_07
	Windows     []int    // rolling window lengths
	Warnings    []string // non-fatal run warnings

	// Data Summary
	DataSummary DataSummary

	// Data Quality (sufficiency checks)
	DataQuality DataQualitySection

	// Baseline forecast quality, nil if not evaluated
	Baseline *BaselineRow

	// Per-column definedness, in table column order
	Columns []ColumnSummaryRow
}

// DataQualitySection contains data sufficiency checks and integrity errors.
type DataQualitySection struct {
	SufficiencyChecks []SufficiencyCheckRow
	IntegrityErrors   []string
	AllChecksPassed   bool
}

// SufficiencyCheckRow represents one sufficiency criterion.
type SufficiencyCheckRow struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// DataSummary contains data description.
type DataSummary struct {
	Units          int
	Dates          int
	Rows           int
	Columns        int
	TrainRows      int
	PredictRows    int
	DateRangeStart time.Time
	DateRangeEnd   time.Time

	// Holiday calendar
	Holidays        int
	HolidaysInRange int // holidays between DateRangeStart and DateRangeEnd
	FirstHoliday    time.Time
	LastHoliday     time.Time
}

// BaselineRow is the quality of a naive predictor against the target.
type BaselineRow struct {
	Predictor    string
	Observations int
	WAPE         float64
	MedianAPE    float64
	ZeroActuals  int
}

// ColumnSummaryRow describes one feature column.
type ColumnSummaryRow struct {
	Name         string
	Undefined    int
	UndefinedPct float64 // undefined / rows * 100, 0 for an empty table
}
