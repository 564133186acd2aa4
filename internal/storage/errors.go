package storage

import "errors"

// Sentinel errors shared by the memory, postgres and clickhouse stores.
var (
	// ErrNotFound is returned when a run or record lookup has no match.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when a sales (unit, date), holiday date,
	// run ID or run's feature set is already stored. Stored rows are never
	// overwritten.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput is returned for records missing a key field.
	ErrInvalidInput = errors.New("invalid input")
)
