package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"grocery-forecast-lab/internal/features"
)

// ReadParquet reads a Parquet file through an in-memory DuckDB instance.
// Every column is cast to text so the panel builder applies one set of
// parsing rules regardless of the physical Parquet type.
func ReadParquet(ctx context.Context, path string) (*features.RawTable, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	defer db.Close()

	source := "read_parquet('" + strings.ReplaceAll(path, "'", "''") + "')"

	names, err := parquetColumns(ctx, db, source)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return &features.RawTable{}, nil
	}

	casts := make([]string, len(names))
	for i, n := range names {
		casts[i] = fmt.Sprintf("CAST(%s AS VARCHAR)", quoteIdent(n))
	}

	rows, err := db.QueryContext(ctx, "SELECT "+strings.Join(casts, ", ")+" FROM "+source)
	if err != nil {
		return nil, fmt.Errorf("query parquet %s: %w", path, err)
	}
	defer rows.Close()

	table := &features.RawTable{Header: names}
	dest := make([]sql.NullString, len(names))
	ptrs := make([]any, len(names))
	for i := range dest {
		ptrs[i] = &dest[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan parquet row: %w", err)
		}
		cells := make([]string, len(names))
		for i, v := range dest {
			if v.Valid {
				cells[i] = v.String
			}
		}
		table.Rows = append(table.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parquet rows: %w", err)
	}

	return table, nil
}

// parquetColumns returns the column names of source in file order.
func parquetColumns(ctx context.Context, db *sql.DB, source string) ([]string, error) {
	rows, err := db.QueryContext(ctx, "DESCRIBE SELECT * FROM "+source)
	if err != nil {
		return nil, fmt.Errorf("describe parquet: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("describe columns: %w", err)
	}

	var names []string
	for rows.Next() {
		values := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan describe row: %w", err)
		}
		// First DESCRIBE column is column_name
		names = append(names, values[0].String)
	}
	return names, rows.Err()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
