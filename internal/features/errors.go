package features

import (
	"errors"
	"fmt"
)

// Feature generation errors.
var (
	// ErrSchema is matched by SchemaError.
	ErrSchema = errors.New("schema error")

	// ErrInvalidValue is matched by ValueError.
	ErrInvalidValue = errors.New("invalid value")

	// ErrInvalidConfig is returned when Config fails validation.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrWorkerFailure is matched by WorkerError.
	ErrWorkerFailure = errors.New("rolling worker failure")

	// ErrKeyMismatch is returned when a block does not line up with the panel.
	ErrKeyMismatch = errors.New("block keys do not match panel")
)

// SchemaError reports a required column missing from the input table.
type SchemaError struct {
	Column string // configured column name
	Role   string // unit, date or target
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error: %s column %q not found in input table", e.Role, e.Column)
}

// Is reports whether target is ErrSchema.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// ValueError reports a cell that could not be parsed.
type ValueError struct {
	Row    int    // 0-based data row (header excluded)
	Column string // column name
	Value  string // raw cell content
	Err    error  // underlying parse error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid value %q in column %q at row %d: %v", e.Value, e.Column, e.Row, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *ValueError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrInvalidValue.
func (e *ValueError) Is(target error) bool {
	return target == ErrInvalidValue
}

// WorkerError reports a failed rolling-window task.
// Any WorkerError aborts the whole Generate call.
type WorkerError struct {
	Window int
	Err    error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("rolling task for window %d failed: %v", e.Window, e.Err)
}

// Unwrap returns the task error.
func (e *WorkerError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrWorkerFailure.
func (e *WorkerError) Is(target error) bool {
	return target == ErrWorkerFailure
}
