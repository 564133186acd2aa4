package domain

import "time"

// FeatureValue is one cell of a generated feature matrix in long form.
// Corresponds to feature_values table in ClickHouse.
type FeatureValue struct {
	RunID   string    // feature run that produced the value
	UnitID  string    // selling unit identifier
	Date    time.Time // calendar date (UTC midnight)
	Feature string    // column name, e.g. "sales_lag3"
	Value   *float64  // NULL when the feature is undefined for this row
}

// FeatureRun describes one execution of the feature pipeline.
// Corresponds to feature_runs table in PostgreSQL.
type FeatureRun struct {
	RunID        string    // deterministic fingerprint of config + input
	CreatedAt    time.Time // wall-clock start of the run
	Units        int       // distinct selling units in the panel
	Dates        int       // distinct dates in the panel
	Rows         int       // feature table rows (Units * Dates)
	Columns      int       // feature table columns excluding keys
	Windows      []int     // rolling window lengths
	Horizon      int       // forecast horizon used for the target column
	TargetColumn string    // name of the generated target column
	TrainRows    int       // rows with a defined target
	PredictRows  int       // rows with an undefined target
}
