package features

import (
	"math"
	"time"
)

// cyclicalField is a calendar field encoded as a sin/cos pair.
//
// The periods are fixed approximations: day uses 31 for every month and
// dayofyear uses 365 in leap years too. Trained models depend on exactly
// these values, so they must not be "corrected".
type cyclicalField struct {
	name   string
	period float64
	value  func(t time.Time) int
}

var cyclicalFields = []cyclicalField{
	{name: "dayofweek", period: 7, value: dayOfWeek},
	{name: "day", period: 31, value: func(t time.Time) int { return t.Day() }},
	{name: "dayofyear", period: 365, value: func(t time.Time) int { return t.YearDay() }},
	{name: "week", period: 52, value: isoWeek},
	{name: "month", period: 12, value: func(t time.Time) int { return int(t.Month()) }},
}

// dayOfWeek returns Monday=0 .. Sunday=6.
func dayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func isoWeek(t time.Time) int {
	_, w := t.ISOWeek()
	return w
}

// EncodeCyclical returns one row per date with {field}_sin and {field}_cos
// columns for dayofweek, day, dayofyear, week and month.
func EncodeCyclical(schema *Schema, dates []time.Time) *Block {
	block := &Block{
		Name:  "cyclical",
		Key:   KeyDate,
		Dates: dates,
	}

	for _, f := range cyclicalFields {
		sinCol := newColumn(schema.Name(ColumnSpec{Family: FamilyCyclicalSin, Calendar: f.name}), len(dates))
		cosCol := newColumn(schema.Name(ColumnSpec{Family: FamilyCyclicalCos, Calendar: f.name}), len(dates))

		for i, d := range dates {
			angle := float64(f.value(d)) * 2 * math.Pi / f.period
			sinCol.Values[i] = math.Sin(angle)
			cosCol.Values[i] = math.Cos(angle)
		}

		block.Columns = append(block.Columns, sinCol, cosCol)
	}

	return block
}
