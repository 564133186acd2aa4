package features

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"grocery-forecast-lab/internal/domain"
)

// Undefined returns the marker stored in cells whose value is not defined
// (insufficient history, division edge cases, no holiday on one side).
func Undefined() float64 {
	return math.NaN()
}

// IsUndefined reports whether v is the undefined marker.
func IsUndefined(v float64) bool {
	return math.IsNaN(v)
}

// Nullable converts v to a nullable value for storage: nil if undefined.
func Nullable(v float64) *float64 {
	if IsUndefined(v) {
		return nil
	}
	return &v
}

// RawTable is the untyped input contract: a header plus string cells,
// as produced by CSV, XLSX or Parquet readers.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// ColumnIndex returns the position of name in the header, or -1.
func (t *RawTable) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// RecordsTable converts typed sales records into a RawTable using the
// configured column names.
func RecordsTable(records []*domain.SalesRecord, unitCol, dateCol, targetCol string) *RawTable {
	t := &RawTable{
		Header: []string{unitCol, dateCol, targetCol},
		Rows:   make([][]string, 0, len(records)),
	}
	for _, r := range records {
		t.Rows = append(t.Rows, []string{
			r.UnitID,
			r.Date.UTC().Format(domain.DateLayout),
			strconv.FormatFloat(r.Quantity, 'g', -1, 64),
		})
	}
	return t
}

// Column is a named numeric column. Undefined cells hold NaN.
type Column struct {
	Name   string
	Values []float64
}

// newColumn allocates a column of n undefined cells.
func newColumn(name string, n int) *Column {
	values := make([]float64, n)
	for i := range values {
		values[i] = math.NaN()
	}
	return &Column{Name: name, Values: values}
}

// KeyKind tells the merger how a block joins onto the panel.
type KeyKind int

const (
	// KeyUnitDate blocks are row-aligned with the panel.
	KeyUnitDate KeyKind = iota
	// KeyDate blocks hold one row per unique date.
	KeyDate
)

// Block is the output of one feature stage.
type Block struct {
	Name    string
	Key     KeyKind
	Units   []string    // per row, nil for KeyDate blocks
	Dates   []time.Time // per row
	Columns []*Column
}

// Len returns the number of rows.
func (b *Block) Len() int {
	return len(b.Dates)
}

// Column returns the column with the given name, or nil.
func (b *Block) Column(name string) *Column {
	for _, c := range b.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// FeatureTable is the final wide table keyed by (unit, date).
type FeatureTable struct {
	UnitColumn string
	DateColumn string
	Target     string
	Units      []string
	Dates      []time.Time

	columns []*Column
	index   map[string]int
}

// newFeatureTable creates a table with the given keys and no columns.
func newFeatureTable(unitCol, dateCol, target string, units []string, dates []time.Time) *FeatureTable {
	return &FeatureTable{
		UnitColumn: unitCol,
		DateColumn: dateCol,
		Target:     target,
		Units:      units,
		Dates:      dates,
		index:      make(map[string]int),
	}
}

// Len returns the number of rows.
func (t *FeatureTable) Len() int {
	return len(t.Dates)
}

// Columns returns the numeric columns in assembly order.
func (t *FeatureTable) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// ColumnNames returns the numeric column names in assembly order.
func (t *FeatureTable) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the column with the given name.
func (t *FeatureTable) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// Value returns the cell at (row, name). ok is false if the column is absent.
func (t *FeatureTable) Value(row int, name string) (float64, bool) {
	c, ok := t.Column(name)
	if !ok || row < 0 || row >= len(c.Values) {
		return 0, false
	}
	return c.Values[row], true
}

// AddColumn appends c unless a column with the same name already exists.
// Returns false when c was dropped as a duplicate.
func (t *FeatureTable) AddColumn(c *Column) (bool, error) {
	if len(c.Values) != t.Len() {
		return false, fmt.Errorf("%w: column %s has %d rows, table has %d",
			ErrKeyMismatch, c.Name, len(c.Values), t.Len())
	}
	if c.Name == t.UnitColumn || c.Name == t.DateColumn {
		return false, nil
	}
	if _, exists := t.index[c.Name]; exists {
		return false, nil
	}
	t.index[c.Name] = len(t.columns)
	t.columns = append(t.columns, c)
	return true, nil
}

// UnitRange is a contiguous run of rows belonging to one unit.
type UnitRange struct {
	UnitID string
	Start  int // first row, inclusive
	End    int // last row, exclusive
}

// UnitRanges returns the per-unit row ranges. Rows are sorted by (unit, date),
// so each unit occupies one contiguous range.
func (t *FeatureTable) UnitRanges() []UnitRange {
	var ranges []UnitRange
	for i := 0; i < len(t.Units); {
		j := i
		for j < len(t.Units) && t.Units[j] == t.Units[i] {
			j++
		}
		ranges = append(ranges, UnitRange{UnitID: t.Units[i], Start: i, End: j})
		i = j
	}
	return ranges
}
