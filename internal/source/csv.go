package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"grocery-forecast-lab/internal/features"
)

// ReadCSVFile reads a CSV file with a header row.
func ReadCSVFile(path string) (*features.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV reads CSV data with a header row. Rows may have differing lengths;
// short rows are reported by the panel builder.
func ReadCSV(r io.Reader) (*features.RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return &features.RawTable{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	table := &features.RawTable{Header: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(table.Rows), err)
		}
		table.Rows = append(table.Rows, record)
	}

	return table, nil
}
