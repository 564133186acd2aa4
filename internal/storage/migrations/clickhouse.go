package migrations

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ClickhouseDB is the part of a ClickHouse connection used to apply migrations.
type ClickhouseDB interface {
	Exec(ctx context.Context, query string, args ...any) error
}

// ErrSemicolonInString is returned for a migration the statement splitter
// cannot handle.
var ErrSemicolonInString = errors.New("semicolon inside string literal")

// ApplyClickhouse runs every embedded ClickHouse migration and returns the
// applied versions. The driver executes one statement per call, so files are
// split on semicolons. Statements must be idempotent (IF NOT EXISTS); there
// is no version table on this side.
func ApplyClickhouse(ctx context.Context, db ClickhouseDB) ([]string, error) {
	migrations, err := Clickhouse()
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, m := range migrations {
		stmts, err := m.Statements()
		if err != nil {
			return applied, fmt.Errorf("migration %s: %w", m.Version, err)
		}
		for i, stmt := range stmts {
			if err := db.Exec(ctx, stmt); err != nil {
				return applied, fmt.Errorf("apply migration %s statement %d: %w", m.Version, i+1, err)
			}
		}
		applied = append(applied, m.Version)
	}
	return applied, nil
}

// Statements splits the migration on semicolons after dropping "--" comment
// lines. Semicolons inside string literals are rejected.
func (m Migration) Statements() ([]string, error) {
	if err := checkStringLiterals(m.SQL); err != nil {
		return nil, err
	}

	var kept []string
	for _, line := range strings.Split(m.SQL, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		kept = append(kept, line)
	}

	var stmts []string
	for _, part := range strings.Split(strings.Join(kept, "\n"), ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, nil
}

// checkStringLiterals walks single-quoted literals ('' is an escaped quote)
// outside of "--" comments.
func checkStringLiterals(sql string) error {
	for n, line := range strings.Split(sql, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		inString := false
		for i := 0; i < len(line); i++ {
			switch {
			case line[i] == '\'' && inString && i+1 < len(line) && line[i+1] == '\'':
				i++
			case line[i] == '\'':
				inString = !inString
			case line[i] == ';' && inString:
				return fmt.Errorf("%w at line %d", ErrSemicolonInString, n+1)
			}
		}
	}
	return nil
}
