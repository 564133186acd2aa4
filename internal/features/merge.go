package features

import "fmt"

// Merge assembles the feature blocks onto the panel, keyed by (unit, date)
// for per-unit blocks and by date for calendar blocks.
//
// The target column comes first, then blocks in argument order. A column
// whose name is already present is dropped, keeping the first-assembled copy.
// The result always has exactly one row per panel row.
func Merge(panel *Panel, cols Columns, blocks ...*Block) (*FeatureTable, error) {
	table := newFeatureTable(cols.Unit, cols.Date, cols.Target, panel.RowUnits(), panel.RowDates())

	if _, err := table.AddColumn(&Column{Name: cols.Target, Values: panel.Values()}); err != nil {
		return nil, err
	}

	for _, b := range blocks {
		if b == nil {
			continue
		}

		var err error
		switch b.Key {
		case KeyUnitDate:
			err = mergeUnitDate(table, b)
		case KeyDate:
			err = mergeDate(table, b)
		default:
			err = fmt.Errorf("%w: block %s has unknown key kind %d", ErrKeyMismatch, b.Name, b.Key)
		}
		if err != nil {
			return nil, err
		}
	}

	return table, nil
}

// mergeUnitDate joins a row-aligned block after verifying every key.
func mergeUnitDate(table *FeatureTable, b *Block) error {
	if b.Len() != table.Len() || len(b.Units) != table.Len() {
		return fmt.Errorf("%w: block %s has %d rows, panel has %d",
			ErrKeyMismatch, b.Name, b.Len(), table.Len())
	}
	for i := range table.Dates {
		if b.Units[i] != table.Units[i] || !b.Dates[i].Equal(table.Dates[i]) {
			return fmt.Errorf("%w: block %s row %d is (%s, %s), panel row is (%s, %s)",
				ErrKeyMismatch, b.Name, i,
				b.Units[i], b.Dates[i].Format("2006-01-02"),
				table.Units[i], table.Dates[i].Format("2006-01-02"))
		}
	}

	for _, c := range b.Columns {
		if _, err := table.AddColumn(c); err != nil {
			return err
		}
	}
	return nil
}

// mergeDate left-joins a per-date block onto every row with that date.
// Dates missing from the block leave the row undefined.
func mergeDate(table *FeatureTable, b *Block) error {
	rowOf := make(map[int64]int, b.Len())
	for i, d := range b.Dates {
		key := d.Unix()
		if _, dup := rowOf[key]; dup {
			return fmt.Errorf("%w: block %s has duplicate date %s",
				ErrKeyMismatch, b.Name, d.Format("2006-01-02"))
		}
		rowOf[key] = i
	}

	for _, c := range b.Columns {
		if _, exists := table.Column(c.Name); exists {
			continue
		}
		joined := newColumn(c.Name, table.Len())
		for row, d := range table.Dates {
			if src, ok := rowOf[d.Unix()]; ok {
				joined.Values[row] = c.Values[src]
			}
		}
		if _, err := table.AddColumn(joined); err != nil {
			return err
		}
	}
	return nil
}
