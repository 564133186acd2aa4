package domain

import "time"

// DateLayout is the canonical calendar-date format used across stores and files.
const DateLayout = "2006-01-02"

// SalesRecord is a single row of the raw transactional sales log.
// Corresponds to sales table in PostgreSQL.
type SalesRecord struct {
	ID       int64     // auto-generated primary key (0 until stored)
	UnitID   string    // selling unit identifier (e.g. store-item pair)
	Date     time.Time // calendar date of the sale (UTC midnight)
	Quantity float64   // sold quantity, may be fractional for weighted goods
}

// Holiday is one entry of the holiday calendar.
// Corresponds to holidays table in PostgreSQL.
type Holiday struct {
	Date time.Time // calendar date (UTC midnight)
	Name string    // optional human-readable name
}

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
