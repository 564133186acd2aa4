// Package source reads raw sales logs and holiday calendars from files.
// Every reader produces a features.RawTable: a header row plus string cells.
package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"grocery-forecast-lab/internal/domain"
	"grocery-forecast-lab/internal/features"
)

// ErrUnsupportedFormat is returned for file extensions without a reader.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Format is an input file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatXLSX    Format = "xlsx"
	FormatParquet Format = "parquet"
)

// Options control how a file is read.
type Options struct {
	// Sheet selects the XLSX sheet; the first sheet is used when empty.
	Sheet string
	// DateColumn names the column holding dates. XLSX serial dates in this
	// column are converted to calendar dates.
	DateColumn string
}

// DetectFormat returns the format implied by the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".parquet", ".pq":
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ReadFile reads path with the reader matching its extension.
func ReadFile(ctx context.Context, path string, opts Options) (*features.RawTable, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatCSV:
		return ReadCSVFile(path)
	case FormatXLSX:
		return ReadXLSX(path, opts)
	default:
		return ReadParquet(ctx, path)
	}
}

// ReadHolidays reads a holiday calendar from path. dateColumn holds the
// holiday dates; an optional "name" column is carried over.
func ReadHolidays(ctx context.Context, path, dateColumn string) ([]domain.Holiday, error) {
	table, err := ReadFile(ctx, path, Options{DateColumn: dateColumn})
	if err != nil {
		return nil, err
	}
	return HolidaysFromTable(table, dateColumn)
}

// HolidaysFromTable extracts holidays from a raw table.
func HolidaysFromTable(table *features.RawTable, dateColumn string) ([]domain.Holiday, error) {
	dateIdx := table.ColumnIndex(dateColumn)
	if dateIdx < 0 {
		return nil, &features.SchemaError{Column: dateColumn, Role: "holiday date"}
	}
	nameIdx := table.ColumnIndex("name")

	holidays := make([]domain.Holiday, 0, len(table.Rows))
	for i, row := range table.Rows {
		if dateIdx >= len(row) || strings.TrimSpace(row[dateIdx]) == "" {
			continue
		}
		raw := strings.TrimSpace(row[dateIdx])
		date, err := features.ParseDate(raw)
		if err != nil {
			return nil, &features.ValueError{Row: i, Column: dateColumn, Value: raw, Err: err}
		}

		h := domain.Holiday{Date: date}
		if nameIdx >= 0 && nameIdx < len(row) {
			h.Name = strings.TrimSpace(row[nameIdx])
		}
		holidays = append(holidays, h)
	}
	return holidays, nil
}

// SalesFromTable converts a raw table into sales records, summing duplicate
// (unit, date) rows so the result can be stored under a unique key.
func SalesFromTable(table *features.RawTable, cols features.Columns) ([]*domain.SalesRecord, error) {
	panel, err := features.BuildPanel(table, cols)
	if err != nil {
		return nil, err
	}

	// Only observed cells are stored; the panel's zero fill is rebuilt on read.
	observed := make(map[string]map[int64]struct{})
	unitIdx := table.ColumnIndex(cols.Unit)
	dateIdx := table.ColumnIndex(cols.Date)
	for _, row := range table.Rows {
		unit := strings.TrimSpace(row[unitIdx])
		date, _ := features.ParseDate(strings.TrimSpace(row[dateIdx]))
		if observed[unit] == nil {
			observed[unit] = make(map[int64]struct{})
		}
		observed[unit][date.Unix()] = struct{}{}
	}

	values := panel.Values()
	var records []*domain.SalesRecord
	for u, unit := range panel.Units {
		for d, date := range panel.DateAxis {
			if _, ok := observed[unit][date.Unix()]; !ok {
				continue
			}
			records = append(records, &domain.SalesRecord{
				UnitID:   unit,
				Date:     date,
				Quantity: values[u*len(panel.DateAxis)+d],
			})
		}
	}
	return records, nil
}
