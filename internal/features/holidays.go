package features

import (
	"sort"
	"time"

	"grocery-forecast-lab/internal/domain"
)

// HolidayCalendar is an ordered set of distinct holiday dates.
// It is immutable once created.
type HolidayCalendar struct {
	days []time.Time
}

// NewHolidayCalendar truncates dates to calendar days, removes duplicates
// and sorts them ascending.
func NewHolidayCalendar(dates []time.Time) *HolidayCalendar {
	seen := make(map[int64]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := domain.Day(d)
		if _, dup := seen[day.Unix()]; dup {
			continue
		}
		seen[day.Unix()] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return &HolidayCalendar{days: days}
}

// Len returns the number of holidays.
func (c *HolidayCalendar) Len() int {
	return len(c.days)
}

// Dates returns a copy of the holiday dates, ascending.
func (c *HolidayCalendar) Dates() []time.Time {
	out := make([]time.Time, len(c.days))
	copy(out, c.days)
	return out
}

// DaysToNext returns the days from d to the nearest holiday on or after d.
// ok is false if no such holiday exists.
func (c *HolidayCalendar) DaysToNext(d time.Time) (int, bool) {
	day := domain.Day(d)
	i := sort.Search(len(c.days), func(i int) bool { return !c.days[i].Before(day) })
	if i == len(c.days) {
		return 0, false
	}
	return daysBetween(day, c.days[i]), true
}

// DaysSincePrev returns the days from the nearest holiday on or before d to d.
// ok is false if no such holiday exists.
func (c *HolidayCalendar) DaysSincePrev(d time.Time) (int, bool) {
	day := domain.Day(d)
	i := sort.Search(len(c.days), func(i int) bool { return c.days[i].After(day) }) - 1
	if i < 0 {
		return 0, false
	}
	return daysBetween(c.days[i], day), true
}

// daysBetween returns whole days from a to b. Both must be UTC midnights.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}

// ComputeHolidayDistances returns, per unique date, the distance in days to the
// nearest future and past holiday. A side without any holiday is undefined.
func ComputeHolidayDistances(schema *Schema, cal *HolidayCalendar, dates []time.Time) *Block {
	future := newColumn(schema.Name(ColumnSpec{Family: FamilyHolidayNext}), len(dates))
	past := newColumn(schema.Name(ColumnSpec{Family: FamilyHolidayPrev}), len(dates))

	if cal != nil {
		for i, d := range dates {
			if n, ok := cal.DaysToNext(d); ok {
				future.Values[i] = float64(n)
			}
			if n, ok := cal.DaysSincePrev(d); ok {
				past.Values[i] = float64(n)
			}
		}
	}

	return &Block{
		Name:    "holidays",
		Key:     KeyDate,
		Dates:   dates,
		Columns: []*Column{future, past},
	}
}
