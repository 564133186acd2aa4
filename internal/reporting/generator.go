package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"grocery-forecast-lab/internal/features"
	"grocery-forecast-lab/internal/metrics"
)

// Output file names.
const (
	ReportFile   = "REPORT.md"
	FeaturesFile = "features.csv"
	ColumnsFile  = "column_summary.csv"
)

// Input bundles what a report is built from.
type Input struct {
	RunID       string
	Table       *features.FeatureTable
	Holidays    *features.HolidayCalendar // optional
	Target      string
	Windows     []int
	TrainRows   int
	PredictRows int
	DataQuality DataQualitySection
	Baseline    *metrics.Report // optional
	Warnings    []string
}

// Generator produces reports from a generated feature table.
type Generator struct {
	now func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds the report.
func (g *Generator) Generate(in Input) *Report {
	report := &Report{
		GeneratedAt: g.now(),
		RunID:       in.RunID,
		Target:      in.Target,
		Windows:     in.Windows,
		Warnings:    in.Warnings,
		DataQuality: in.DataQuality,
	}

	if in.Table != nil {
		report.DataSummary = generateDataSummary(in.Table)
		report.Columns = generateColumnSummary(in.Table)
	}
	if in.Holidays != nil {
		summarizeHolidays(&report.DataSummary, in.Holidays)
	}
	report.DataSummary.TrainRows = in.TrainRows
	report.DataSummary.PredictRows = in.PredictRows

	if in.Baseline != nil {
		report.Baseline = &BaselineRow{
			Predictor:    in.Baseline.Predictor,
			Observations: in.Baseline.Observations,
			WAPE:         in.Baseline.WAPE,
			MedianAPE:    in.Baseline.MedianAPE,
			ZeroActuals:  in.Baseline.ZeroActuals,
		}
	}

	return report
}

// generateDataSummary computes the table shape and date range.
func generateDataSummary(table *features.FeatureTable) DataSummary {
	summary := DataSummary{
		Units:   len(table.UnitRanges()),
		Rows:    table.Len(),
		Columns: len(table.ColumnNames()),
	}
	if summary.Units > 0 {
		summary.Dates = summary.Rows / summary.Units
	}

	for i, d := range table.Dates {
		if i == 0 || d.Before(summary.DateRangeStart) {
			summary.DateRangeStart = d
		}
		if i == 0 || d.After(summary.DateRangeEnd) {
			summary.DateRangeEnd = d
		}
	}
	return summary
}

// summarizeHolidays counts the calendar and the holidays inside the
// table's date range.
func summarizeHolidays(summary *DataSummary, calendar *features.HolidayCalendar) {
	dates := calendar.Dates()
	summary.Holidays = len(dates)
	if len(dates) == 0 {
		return
	}
	summary.FirstHoliday = dates[0]
	summary.LastHoliday = dates[len(dates)-1]
	if summary.DateRangeStart.IsZero() {
		return
	}
	for _, d := range dates {
		if !d.Before(summary.DateRangeStart) && !d.After(summary.DateRangeEnd) {
			summary.HolidaysInRange++
		}
	}
}

// generateColumnSummary counts undefined cells per column.
func generateColumnSummary(table *features.FeatureTable) []ColumnSummaryRow {
	columns := table.Columns()
	rows := make([]ColumnSummaryRow, len(columns))
	for i, c := range columns {
		undefined := 0
		for _, v := range c.Values {
			if features.IsUndefined(v) {
				undefined++
			}
		}
		rows[i] = ColumnSummaryRow{Name: c.Name, Undefined: undefined}
		if len(c.Values) > 0 {
			rows[i].UndefinedPct = float64(undefined) / float64(len(c.Values)) * 100
		}
	}
	return rows
}

// Write writes the report, the column summary and the feature table (if not
// nil) into outputDir. Returns the paths written.
func (g *Generator) Write(outputDir string, report *Report, table *features.FeatureTable) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var written []string

	reportPath := filepath.Join(outputDir, ReportFile)
	if err := os.WriteFile(reportPath, []byte(RenderMarkdown(report)), 0644); err != nil {
		return written, fmt.Errorf("write %s: %w", ReportFile, err)
	}
	written = append(written, reportPath)

	columnsPath := filepath.Join(outputDir, ColumnsFile)
	if err := os.WriteFile(columnsPath, []byte(RenderColumnsCSV(report.Columns)), 0644); err != nil {
		return written, fmt.Errorf("write %s: %w", ColumnsFile, err)
	}
	written = append(written, columnsPath)

	if table == nil {
		return written, nil
	}

	featuresPath := filepath.Join(outputDir, FeaturesFile)
	f, err := os.Create(featuresPath)
	if err != nil {
		return written, fmt.Errorf("create %s: %w", FeaturesFile, err)
	}
	if err := WriteFeatureCSV(f, table); err != nil {
		f.Close()
		return written, fmt.Errorf("write %s: %w", FeaturesFile, err)
	}
	if err := f.Close(); err != nil {
		return written, fmt.Errorf("close %s: %w", FeaturesFile, err)
	}
	written = append(written, featuresPath)

	return written, nil
}
