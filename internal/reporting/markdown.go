package reporting

import (
	"fmt"
	"strings"
	"time"

	"grocery-forecast-lab/internal/domain"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Feature Run Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if r.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run: `%s`\n\n", r.RunID))
	}
	sb.WriteString(fmt.Sprintf("Target: %s | Windows: %s\n\n", r.Target, formatWindows(r.Windows)))

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Units | %d |\n", r.DataSummary.Units))
	sb.WriteString(fmt.Sprintf("| Dates | %d |\n", r.DataSummary.Dates))
	sb.WriteString(fmt.Sprintf("| Rows | %d |\n", r.DataSummary.Rows))
	sb.WriteString(fmt.Sprintf("| Columns | %d |\n", r.DataSummary.Columns))
	sb.WriteString(fmt.Sprintf("| Train Rows | %d |\n", r.DataSummary.TrainRows))
	sb.WriteString(fmt.Sprintf("| Predict Rows | %d |\n", r.DataSummary.PredictRows))
	sb.WriteString(fmt.Sprintf("| Date Range Start | %s |\n", formatDate(r.DataSummary.DateRangeStart)))
	sb.WriteString(fmt.Sprintf("| Date Range End | %s |\n", formatDate(r.DataSummary.DateRangeEnd)))
	sb.WriteString(fmt.Sprintf("| Holidays | %d (%d in range) |\n", r.DataSummary.Holidays, r.DataSummary.HolidaysInRange))
	sb.WriteString(fmt.Sprintf("| First Holiday | %s |\n", formatDate(r.DataSummary.FirstHoliday)))
	sb.WriteString(fmt.Sprintf("| Last Holiday | %s |\n", formatDate(r.DataSummary.LastHoliday)))
	sb.WriteString("\n")

	// Data Quality
	sb.WriteString("## Data Quality\n\n")
	if len(r.DataQuality.SufficiencyChecks) > 0 {
		sb.WriteString("### Sufficiency Checks\n\n")
		sb.WriteString("| Check | Threshold | Actual | Status |\n")
		sb.WriteString("|-------|-----------|--------|--------|\n")
		for _, check := range r.DataQuality.SufficiencyChecks {
			status := "FAIL"
			if check.Pass {
				status = "PASS"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				check.Name, check.Threshold, check.Actual, status))
		}
		sb.WriteString("\n")

		if r.DataQuality.AllChecksPassed {
			sb.WriteString("**All checks passed.**\n\n")
		} else {
			sb.WriteString("**Some checks failed.** Affected features are undefined on every row.\n\n")
		}
	} else if len(r.DataQuality.IntegrityErrors) == 0 {
		sb.WriteString("No data quality checks performed.\n\n")
	}

	if len(r.DataQuality.IntegrityErrors) > 0 {
		sb.WriteString("### Integrity Errors\n\n")
		for _, err := range r.DataQuality.IntegrityErrors {
			sb.WriteString(fmt.Sprintf("- %s\n", err))
		}
		sb.WriteString("\n")
	}

	if len(r.Warnings) > 0 {
		sb.WriteString("### Warnings\n\n")
		for _, w := range r.Warnings {
			sb.WriteString(fmt.Sprintf("- %s\n", w))
		}
		sb.WriteString("\n")
	}

	// Baseline
	sb.WriteString("## Naive Baseline\n\n")
	if r.Baseline != nil {
		sb.WriteString("| Predictor | Observations | WAPE | MedianAPE | Zero Actuals |\n")
		sb.WriteString("|-----------|--------------|------|-----------|--------------|\n")
		sb.WriteString(fmt.Sprintf("| %s | %d | %.4f | %.4f | %d |\n",
			r.Baseline.Predictor, r.Baseline.Observations,
			r.Baseline.WAPE, r.Baseline.MedianAPE, r.Baseline.ZeroActuals))
	} else {
		sb.WriteString("No baseline evaluated.\n")
	}
	sb.WriteString("\n")

	// Columns
	sb.WriteString("## Columns\n\n")
	if len(r.Columns) > 0 {
		sb.WriteString("| Column | Undefined | Undefined% |\n")
		sb.WriteString("|--------|-----------|------------|\n")
		for _, c := range r.Columns {
			sb.WriteString(fmt.Sprintf("| %s | %d | %.2f |\n", c.Name, c.Undefined, c.UndefinedPct))
		}
	} else {
		sb.WriteString("No columns generated.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func formatWindows(windows []int) string {
	if len(windows) == 0 {
		return "none"
	}
	parts := make([]string, len(windows))
	for i, w := range windows {
		parts[i] = fmt.Sprintf("%d", w)
	}
	return strings.Join(parts, ", ")
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(domain.DateLayout)
}
