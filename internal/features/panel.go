package features

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"grocery-forecast-lab/internal/domain"
)

var errNonFinite = errors.New("quantity must be a finite number")

// dateLayouts are the accepted date cell formats, tried in order.
var dateLayouts = []string{
	domain.DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Panel is the dense (unit, date) grid of the target.
// Every unit has exactly one row for every date on the global date axis.
// Rows are ordered by (unit, date) ascending; row = u*len(DateAxis) + d.
type Panel struct {
	Target   string
	Units    []string    // unique units, ascending
	DateAxis []time.Time // unique dates, ascending

	values []float64
}

// UnitSeries is one unit's date-ordered target sequence.
type UnitSeries struct {
	UnitID string
	Offset int // panel row of the first element
	Values []float64
}

// Len returns the number of panel rows.
func (p *Panel) Len() int {
	return len(p.values)
}

// Empty reports whether the panel has no rows.
func (p *Panel) Empty() bool {
	return len(p.values) == 0
}

// Values returns a copy of the target column in row order.
func (p *Panel) Values() []float64 {
	out := make([]float64, len(p.values))
	copy(out, p.values)
	return out
}

// RowUnits returns the unit key of every row.
func (p *Panel) RowUnits() []string {
	out := make([]string, 0, p.Len())
	for _, u := range p.Units {
		for range p.DateAxis {
			out = append(out, u)
		}
	}
	return out
}

// RowDates returns the date key of every row.
func (p *Panel) RowDates() []time.Time {
	out := make([]time.Time, 0, p.Len())
	for range p.Units {
		out = append(out, p.DateAxis...)
	}
	return out
}

// Series returns read-only views of the per-unit sequences.
func (p *Panel) Series() []UnitSeries {
	n := len(p.DateAxis)
	series := make([]UnitSeries, len(p.Units))
	for u, id := range p.Units {
		series[u] = UnitSeries{
			UnitID: id,
			Offset: u * n,
			Values: p.values[u*n : (u+1)*n : (u+1)*n],
		}
	}
	return series
}

// CloneSeries returns per-unit sequences backed by freshly allocated memory,
// so a concurrent task can own them outright.
func (p *Panel) CloneSeries() []UnitSeries {
	series := p.Series()
	for i := range series {
		values := make([]float64, len(series[i].Values))
		copy(values, series[i].Values)
		series[i].Values = values
	}
	return series
}

type panelKey struct {
	unit string
	day  int64
}

// BuildPanel groups the raw log by (unit, date), sums the target and expands
// the result to the full unit x date cross product with zero-filled gaps.
// An empty table yields an empty panel. A missing column yields a SchemaError.
func BuildPanel(table *RawTable, cols Columns) (*Panel, error) {
	unitIdx, dateIdx, targetIdx, err := resolveColumns(table, cols)
	if err != nil {
		return nil, err
	}

	panel := &Panel{Target: cols.Target}
	if len(table.Rows) == 0 {
		return panel, nil
	}

	sums := make(map[panelKey]float64)
	units := make(map[string]struct{})
	days := make(map[int64]time.Time)

	for i, row := range table.Rows {
		unit, err := cell(row, unitIdx, i, cols.Unit)
		if err != nil {
			return nil, err
		}
		if unit == "" {
			return nil, &ValueError{Row: i, Column: cols.Unit, Value: unit, Err: errors.New("empty unit id")}
		}

		rawDate, err := cell(row, dateIdx, i, cols.Date)
		if err != nil {
			return nil, err
		}
		date, err := ParseDate(rawDate)
		if err != nil {
			return nil, &ValueError{Row: i, Column: cols.Date, Value: rawDate, Err: err}
		}

		rawQty, err := cell(row, targetIdx, i, cols.Target)
		if err != nil {
			return nil, err
		}
		qty, err := parseQuantity(rawQty)
		if err != nil {
			return nil, &ValueError{Row: i, Column: cols.Target, Value: rawQty, Err: err}
		}

		key := panelKey{unit: unit, day: date.Unix()}
		sums[key] += qty
		units[unit] = struct{}{}
		days[key.day] = date
	}

	panel.Units = make([]string, 0, len(units))
	for u := range units {
		panel.Units = append(panel.Units, u)
	}
	sort.Strings(panel.Units)

	dayKeys := make([]int64, 0, len(days))
	for d := range days {
		dayKeys = append(dayKeys, d)
	}
	sort.Slice(dayKeys, func(i, j int) bool { return dayKeys[i] < dayKeys[j] })

	panel.DateAxis = make([]time.Time, len(dayKeys))
	for i, d := range dayKeys {
		panel.DateAxis[i] = days[d]
	}

	// Absent (unit, date) combinations stay zero: zero sales are a real label.
	panel.values = make([]float64, len(panel.Units)*len(dayKeys))
	for u, unit := range panel.Units {
		for d, day := range dayKeys {
			panel.values[u*len(dayKeys)+d] = sums[panelKey{unit: unit, day: day}]
		}
	}

	return panel, nil
}

// resolveColumns locates the configured columns in the header.
func resolveColumns(table *RawTable, cols Columns) (unitIdx, dateIdx, targetIdx int, err error) {
	if table == nil {
		return 0, 0, 0, &SchemaError{Column: cols.Unit, Role: "unit"}
	}
	if unitIdx = table.ColumnIndex(cols.Unit); unitIdx < 0 {
		return 0, 0, 0, &SchemaError{Column: cols.Unit, Role: "unit"}
	}
	if dateIdx = table.ColumnIndex(cols.Date); dateIdx < 0 {
		return 0, 0, 0, &SchemaError{Column: cols.Date, Role: "date"}
	}
	if targetIdx = table.ColumnIndex(cols.Target); targetIdx < 0 {
		return 0, 0, 0, &SchemaError{Column: cols.Target, Role: "target"}
	}
	return unitIdx, dateIdx, targetIdx, nil
}

func cell(row []string, idx, rowNum int, column string) (string, error) {
	if idx >= len(row) {
		return "", &ValueError{Row: rowNum, Column: column, Err: errors.New("row is shorter than header")}
	}
	return strings.TrimSpace(row[idx]), nil
}

// ParseDate parses a date cell and truncates it to its UTC calendar day.
func ParseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return domain.Day(t), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseQuantity parses a quantity cell. An empty cell counts as zero sales.
// NaN and infinities are rejected: NaN is the undefined marker.
func parseQuantity(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	q, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 0, errNonFinite
	}
	return q, nil
}
