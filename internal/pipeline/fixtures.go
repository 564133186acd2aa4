package pipeline

import (
	"context"
	"fmt"
	"time"

	"grocery-forecast-lab/internal/domain"
	"grocery-forecast-lab/internal/storage"
)

// FixtureOptions controls synthetic sales generation.
type FixtureOptions struct {
	Units int       // number of selling units
	Days  int       // number of consecutive calendar days
	Start time.Time // first day, defaults to 2023-01-01
}

// DefaultFixtureStart is the first day of generated fixtures.
var DefaultFixtureStart = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

// fixtureHolidays are fixed-date holidays repeated every year.
var fixtureHolidays = []struct {
	month time.Month
	day   int
	name  string
}{
	{time.January, 1, "New Year"},
	{time.January, 7, "Christmas"},
	{time.February, 23, "Defender of the Fatherland Day"},
	{time.March, 8, "International Women's Day"},
	{time.May, 1, "Spring and Labour Day"},
	{time.May, 9, "Victory Day"},
	{time.June, 12, "Russia Day"},
	{time.November, 4, "Unity Day"},
}

// FixtureUnitID returns the unit identifier of fixture unit u.
func FixtureUnitID(u int) string {
	return fmt.Sprintf("store_%d_item_%03d", u%3+1, u+1)
}

// GenerateSales creates a deterministic sales log.
//
// Unit 0 sells every day. Every other unit is closed on Sundays and has no
// record for them, so the panel fills those days with zeros. Quantities follow
// a weekly cycle offset per unit.
func GenerateSales(opts FixtureOptions) []*domain.SalesRecord {
	start := opts.Start
	if start.IsZero() {
		start = DefaultFixtureStart
	}
	start = domain.Day(start)

	records := make([]*domain.SalesRecord, 0, opts.Units*opts.Days)
	for u := 0; u < opts.Units; u++ {
		unitID := FixtureUnitID(u)
		for d := 0; d < opts.Days; d++ {
			date := start.AddDate(0, 0, d)
			if u > 0 && date.Weekday() == time.Sunday {
				continue
			}
			records = append(records, &domain.SalesRecord{
				UnitID:   unitID,
				Date:     date,
				Quantity: float64(2 + u + (d+u)%7),
			})
		}
	}
	return records
}

// GenerateHolidays returns the fixture holidays that fall in
// [start, start+days). The calendar extends one year past the range so that
// the last dates still have an upcoming holiday.
func GenerateHolidays(start time.Time, days int) []domain.Holiday {
	if start.IsZero() {
		start = DefaultFixtureStart
	}
	start = domain.Day(start)
	end := start.AddDate(1, 0, days)

	var holidays []domain.Holiday
	for year := start.Year(); year <= end.Year(); year++ {
		for _, h := range fixtureHolidays {
			date := time.Date(year, h.month, h.day, 0, 0, 0, 0, time.UTC)
			if date.Before(start) || !date.Before(end) {
				continue
			}
			holidays = append(holidays, domain.Holiday{Date: date, Name: h.name})
		}
	}
	return holidays
}

// LoadFixtures populates stores with synthetic sales and holidays.
func LoadFixtures(
	ctx context.Context,
	salesStore storage.SalesStore,
	holidayStore storage.HolidayStore,
	opts FixtureOptions,
) error {
	if opts.Units < 1 || opts.Days < 1 {
		return fmt.Errorf("%w: fixtures need at least one unit and one day", storage.ErrInvalidInput)
	}

	if err := salesStore.InsertBulk(ctx, GenerateSales(opts)); err != nil {
		return fmt.Errorf("load sales fixtures: %w", err)
	}

	if err := holidayStore.InsertBulk(ctx, GenerateHolidays(opts.Start, opts.Days)); err != nil {
		return fmt.Errorf("load holiday fixtures: %w", err)
	}

	return nil
}
