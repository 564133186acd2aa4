package source

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"grocery-forecast-lab/internal/domain"
	"grocery-forecast-lab/internal/features"
)

// ReadXLSX reads a worksheet whose first row is the header.
// Cells are read raw so dates in opts.DateColumn arrive as Excel serial numbers
// and are converted to calendar dates.
func ReadXLSX(path string, opts Options) (*features.RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return &features.RawTable{}, nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	table := &features.RawTable{Header: header}
	dateIdx := table.ColumnIndex(opts.DateColumn)

	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		// GetRows drops trailing empty cells
		cells := make([]string, len(header))
		copy(cells, row)

		if dateIdx >= 0 {
			cells[dateIdx] = excelDate(cells[dateIdx])
		}
		table.Rows = append(table.Rows, cells)
	}

	return table, nil
}

// excelDate converts an Excel serial date to DateLayout. Other values are
// returned unchanged for the date parser to handle.
func excelDate(cell string) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return cell
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return cell
	}
	return t.Format(domain.DateLayout)
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
