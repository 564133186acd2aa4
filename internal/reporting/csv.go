package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"grocery-forecast-lab/internal/domain"
	"grocery-forecast-lab/internal/features"
)

// WriteFeatureCSV writes table as CSV: unit and date keys first, then every
// column in table order. Undefined cells are written as empty fields.
func WriteFeatureCSV(w io.Writer, table *features.FeatureTable) error {
	cw := csv.NewWriter(w)

	columns := table.Columns()
	header := make([]string, 0, len(columns)+2)
	header = append(header, table.UnitColumn, table.DateColumn)
	header = append(header, table.ColumnNames()...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(header))
	for row := 0; row < table.Len(); row++ {
		record[0] = table.Units[row]
		record[1] = table.Dates[row].Format(domain.DateLayout)
		for i, c := range columns {
			record[i+2] = formatValue(c.Values[row])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatValue(v float64) string {
	if features.IsUndefined(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// RenderColumnsCSV renders the column summary as CSV string.
func RenderColumnsCSV(rows []ColumnSummaryRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("column,undefined,undefined_pct\n")

	// Rows
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%d,%.2f\n", csvField(r.Name), r.Undefined, r.UndefinedPct))
	}

	return sb.String()
}

// csvField quotes names that contain CSV metacharacters.
func csvField(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
