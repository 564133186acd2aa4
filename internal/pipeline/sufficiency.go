package pipeline

import (
	"fmt"
	"sort"
	"strconv"

	"grocery-forecast-lab/internal/domain"
	"grocery-forecast-lab/internal/features"
	"grocery-forecast-lab/internal/reporting"
)

// SufficiencyCheck represents one data sufficiency criterion.
type SufficiencyCheck struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// SufficiencyResult contains all checks.
type SufficiencyResult struct {
	Checks  []SufficiencyCheck
	AllPass bool
	Errors  []string // data integrity findings
}

// Warnings returns the names of failed checks.
func (r *SufficiencyResult) Warnings() []string {
	var out []string
	for _, c := range r.Checks {
		if !c.Pass {
			out = append(out, c.Name)
		}
	}
	return out
}

// CheckSufficiency reports, per feature family, whether the history is long
// enough for the family to be defined on at least some rows. A failed check
// is not an error: the affected columns are simply undefined everywhere.
func CheckSufficiency(
	records []*domain.SalesRecord,
	holidays []domain.Holiday,
	windows []int,
	horizon int,
) *SufficiencyResult {
	result := &SufficiencyResult{
		Checks:  make([]SufficiencyCheck, 0, 5+len(windows)),
		AllPass: true,
		Errors:  []string{},
	}

	dates, nonZero := scanHistory(records)
	actual := strconv.Itoa(dates) + " dates"

	add := func(name string, need int) {
		check := SufficiencyCheck{
			Name:      name,
			Threshold: fmt.Sprintf(">= %d dates", need),
			Actual:    actual,
			Pass:      dates >= need,
		}
		result.Checks = append(result.Checks, check)
		if !check.Pass {
			result.AllPass = false
		}
	}

	// Check 1: every lag defined somewhere
	add("lags", features.MaxLag+1)

	// Check 2: every year-ago lag defined somewhere
	add("year_ago_lags", features.MaxYearAgoLag+1)

	// Check 3: each rolling window fills at least once
	for _, w := range windows {
		add("rolling_w"+strconv.Itoa(w), w)
	}

	// Check 4: at least one row with a defined target
	add("target_"+strconv.Itoa(horizon), horizon+1)

	// Check 5: holiday calendar present
	holidayCheck := SufficiencyCheck{
		Name:      "holiday_calendar",
		Threshold: ">= 1 holiday",
		Actual:    strconv.Itoa(len(holidays)) + " holidays",
		Pass:      len(holidays) > 0,
	}
	result.Checks = append(result.Checks, holidayCheck)
	if !holidayCheck.Pass {
		result.AllPass = false
	}

	// Integrity: units that never sold anything
	units := make([]string, 0, len(nonZero))
	for u := range nonZero {
		units = append(units, u)
	}
	sort.Strings(units)
	for _, u := range units {
		if !nonZero[u] {
			result.Errors = append(result.Errors, fmt.Sprintf("unit %s has no non-zero sales", u))
		}
	}

	return result
}

// scanHistory counts distinct dates and records, per unit, whether any
// quantity was non-zero.
func scanHistory(records []*domain.SalesRecord) (int, map[string]bool) {
	days := make(map[int64]struct{})
	nonZero := make(map[string]bool)
	for _, r := range records {
		days[domain.Day(r.Date).Unix()] = struct{}{}
		nonZero[r.UnitID] = nonZero[r.UnitID] || r.Quantity != 0
	}
	return len(days), nonZero
}

// ToDataQuality converts sufficiency result to report data quality section.
func ToDataQuality(result *SufficiencyResult) reporting.DataQualitySection {
	if result == nil {
		return reporting.DataQualitySection{}
	}

	checks := make([]reporting.SufficiencyCheckRow, len(result.Checks))
	for i, c := range result.Checks {
		checks[i] = reporting.SufficiencyCheckRow{
			Name:      c.Name,
			Threshold: c.Threshold,
			Actual:    c.Actual,
			Pass:      c.Pass,
		}
	}

	return reporting.DataQualitySection{
		SufficiencyChecks: checks,
		IntegrityErrors:   result.Errors,
		AllChecksPassed:   result.AllPass && len(result.Errors) == 0,
	}
}
