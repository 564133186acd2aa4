// Package observability exposes Prometheus metrics of the feature pipeline
// and its stores.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors registered by NewMetrics.
type Metrics struct {
	// Input
	SalesRecordsLoaded prometheus.Counter
	HolidaysLoaded     prometheus.Counter
	SourceReadErrors   *prometheus.CounterVec

	// Feature table
	FeatureRowsGenerated prometheus.Counter
	FeatureColumns       prometheus.Gauge
	FeatureCellsStored   prometheus.Counter
	UndefinedCells       *prometheus.GaugeVec
	SufficiencyWarnings  prometheus.Counter

	// Runs
	PipelineRunsTotal *prometheus.CounterVec
	StageDuration     *prometheus.HistogramVec
	ReportsGenerated  prometheus.Counter

	// Forecast quality of the naive baseline
	BaselineWAPE      prometheus.Gauge
	BaselineMedianAPE prometheus.Gauge

	// Store calls, by backend and operation
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// serve mode
	LastSuccessfulRun prometheus.Gauge
	UptimeSeconds     prometheus.Counter
}

// NewMetrics registers every collector under namespace with the default
// registry. An empty namespace means "grocery_forecast_lab".
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "grocery_forecast_lab"
	}

	return &Metrics{
		// Input
		SalesRecordsLoaded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "sales_records_loaded_total",
			Help:      "Total number of sales records loaded",
		}),
		HolidaysLoaded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "holidays_loaded_total",
			Help:      "Total number of holiday dates loaded",
		}),
		SourceReadErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "source_read_errors_total",
			Help:      "Total number of input file read errors by format",
		}, []string{"format"}),

		// Feature table
		FeatureRowsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "rows_generated_total",
			Help:      "Total number of feature table rows generated",
		}),
		FeatureColumns: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "columns",
			Help:      "Number of columns in the last generated feature table",
		}),
		FeatureCellsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "cells_stored_total",
			Help:      "Total number of feature values written to the feature store",
		}),
		UndefinedCells: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "undefined_cells",
			Help:      "Undefined cells per feature family in the last generated table",
		}, []string{"family"}),
		SufficiencyWarnings: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "sufficiency_warnings_total",
			Help:      "Total number of feature families never defined due to short history",
		}),

		// Runs
		PipelineRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Feature runs by outcome",
		}, []string{"status"}),
		StageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		ReportsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "reports_generated_total",
			Help:      "Report sets written to the output directory",
		}),

		// Forecast quality
		BaselineWAPE: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "quality",
			Name:      "baseline_wape",
			Help:      "WAPE of the naive last-value baseline on training rows",
		}),
		BaselineMedianAPE: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "quality",
			Name:      "baseline_median_ape",
			Help:      "Median APE of the naive last-value baseline on training rows",
		}),

		// Store calls, by backend and operation
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "query_duration_seconds",
			Help:      "Store call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "query_errors_total",
			Help:      "Store calls that returned an error",
		}, []string{"database", "operation"}),

		// serve mode
		LastSuccessfulRun: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "serve",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix time the last successful feature run finished",
		}),
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "serve",
			Name:      "uptime_seconds_total",
			Help:      "Seconds the serve command has been running",
		}),
	}
}

// Handler serves the default registry, mounted at /metrics by serve.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics backs the Record helpers.
var DefaultMetrics = NewMetrics("")

// RecordInputLoaded records the size of the loaded input.
func RecordInputLoaded(salesRecords, holidays int) {
	DefaultMetrics.SalesRecordsLoaded.Add(float64(salesRecords))
	DefaultMetrics.HolidaysLoaded.Add(float64(holidays))
}

// RecordSourceError records an input file read error.
func RecordSourceError(format string) {
	DefaultMetrics.SourceReadErrors.WithLabelValues(format).Inc()
}

// RecordFeatureTable records the shape of a generated feature table.
func RecordFeatureTable(rows, columns int) {
	DefaultMetrics.FeatureRowsGenerated.Add(float64(rows))
	DefaultMetrics.FeatureColumns.Set(float64(columns))
}

// RecordUndefinedCells sets the undefined cell count of a feature family.
func RecordUndefinedCells(family string, count int) {
	DefaultMetrics.UndefinedCells.WithLabelValues(family).Set(float64(count))
}

// RecordCellsStored records feature values written to the feature store.
func RecordCellsStored(cells int) {
	DefaultMetrics.FeatureCellsStored.Add(float64(cells))
}

// RecordSufficiencyWarnings records feature families that can never be defined.
func RecordSufficiencyWarnings(n int) {
	DefaultMetrics.SufficiencyWarnings.Add(float64(n))
}

// RecordBaseline records the naive baseline quality.
func RecordBaseline(wape, medianAPE float64) {
	DefaultMetrics.BaselineWAPE.Set(wape)
	DefaultMetrics.BaselineMedianAPE.Set(medianAPE)
}

// RecordDBQuery observes one store call. A non-nil err is also counted.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordStage records the duration of one pipeline stage.
func RecordStage(stage string, durationSeconds float64) {
	DefaultMetrics.StageDuration.WithLabelValues(stage).Observe(durationSeconds)
}

// RecordPipelineRun records a finished pipeline run.
func RecordPipelineRun(status string, finishedAtUnix int64) {
	DefaultMetrics.PipelineRunsTotal.WithLabelValues(status).Inc()
	if status == StatusSuccess {
		DefaultMetrics.LastSuccessfulRun.Set(float64(finishedAtUnix))
	}
}

// RecordReportGenerated increments the reports generated counter.
func RecordReportGenerated() {
	DefaultMetrics.ReportsGenerated.Inc()
}

// Pipeline run statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// RecordUptime adds elapsed service uptime.
func RecordUptime(seconds float64) {
	DefaultMetrics.UptimeSeconds.Add(seconds)
}
