package features

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCyclical(t *testing.T) {
	monday := day(t, "2024-01-01")
	sunday := day(t, "2024-01-07")
	block := EncodeCyclical(NewSchema("sales"), []time.Time{monday, sunday})

	require.Equal(t, KeyDate, block.Key)
	require.Len(t, block.Columns, 10)

	assert.InDelta(t, 0.0, block.Column("dayofweek_sin").Values[0], 1e-12)
	assert.InDelta(t, 1.0, block.Column("dayofweek_cos").Values[0], 1e-12)
	assert.InDelta(t, math.Sin(2*math.Pi*6/7), block.Column("dayofweek_sin").Values[1], 1e-12)
	assert.InDelta(t, math.Cos(2*math.Pi*6/7), block.Column("dayofweek_cos").Values[1], 1e-12)

	assert.InDelta(t, math.Sin(2*math.Pi/31), block.Column("day_sin").Values[0], 1e-12)
	assert.InDelta(t, math.Sin(2*math.Pi/365), block.Column("dayofyear_sin").Values[0], 1e-12)
	assert.InDelta(t, math.Sin(2*math.Pi/52), block.Column("week_sin").Values[0], 1e-12)
	assert.InDelta(t, 0.5, block.Column("month_sin").Values[0], 1e-12)
}

func TestCalendarFields(t *testing.T) {
	assert.Equal(t, 0, dayOfWeek(day(t, "2024-01-01")))
	assert.Equal(t, 6, dayOfWeek(day(t, "2023-12-31")))
	assert.Equal(t, 52, isoWeek(day(t, "2023-12-31")))
	assert.Equal(t, 1, isoWeek(day(t, "2024-01-01")))
}

func TestHolidayCalendar_Distances(t *testing.T) {
	cal := NewHolidayCalendar([]time.Time{
		day(t, "2024-05-01"),
		day(t, "2024-01-01"),
		day(t, "2024-01-01").Add(9 * time.Hour),
	})
	require.Equal(t, 2, cal.Len())

	past, ok := cal.DaysSincePrev(day(t, "2024-01-15"))
	require.True(t, ok)
	assert.Equal(t, 14, past)

	future, ok := cal.DaysToNext(day(t, "2024-01-15"))
	require.True(t, ok)
	assert.Equal(t, 107, future, "2024 is a leap year")

	onHoliday, ok := cal.DaysToNext(day(t, "2024-05-01"))
	require.True(t, ok)
	assert.Equal(t, 0, onHoliday)

	_, ok = cal.DaysToNext(day(t, "2024-05-02"))
	assert.False(t, ok)
	_, ok = cal.DaysSincePrev(day(t, "2023-12-31"))
	assert.False(t, ok)
}

func TestComputeHolidayDistances(t *testing.T) {
	schema := NewSchema("sales")
	cal := NewHolidayCalendar([]time.Time{day(t, "2024-01-03")})
	dates := []time.Time{day(t, "2024-01-01"), day(t, "2024-01-03"), day(t, "2024-01-04")}

	block := ComputeHolidayDistances(schema, cal, dates)
	future := block.Column(ColumnHolidayFuture).Values
	past := block.Column(ColumnHolidayPast).Values

	assert.Equal(t, 2.0, future[0])
	assert.True(t, IsUndefined(past[0]))
	assert.Equal(t, 0.0, future[1])
	assert.Equal(t, 0.0, past[1])
	assert.True(t, IsUndefined(future[2]))
	assert.Equal(t, 1.0, past[2])

	empty := ComputeHolidayDistances(schema, nil, dates)
	assert.Equal(t, 3, undefinedCount(empty.Column(ColumnHolidayFuture).Values))
}
