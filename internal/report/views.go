package report

import "aquila/risk-insights-api/internal/domain"

// Concrete view wiring for the aggregate row types: the entity table's
// sortable column set and the export column layouts.

// Entity table sort keys.
const (
	ColTotal    = "total"
	ColHigh     = "high"
	ColMedium   = "medium"
	ColLow      = "low"
	ColReviewed = "reviewed"
	ColHighRate = "high_rate"
)

// EntityTable builds the view model for the per-enterprise table,
// sorted by total descending until told otherwise. Search matches the
// enterprise name and id.
func EntityTable() *Table[domain.EntityRow] {
	return NewTable(ColTotal,
		map[string]func(domain.EntityRow) float64{
			ColTotal:    func(r domain.EntityRow) float64 { return float64(r.Total) },
			ColHigh:     func(r domain.EntityRow) float64 { return float64(r.HighCount) },
			ColMedium:   func(r domain.EntityRow) float64 { return float64(r.MediumCount) },
			ColLow:      func(r domain.EntityRow) float64 { return float64(r.LowCount) },
			ColReviewed: func(r domain.EntityRow) float64 { return float64(r.ReviewedTotal) },
			ColHighRate: func(r domain.EntityRow) float64 { return r.HighRate },
		},
		func(r domain.EntityRow) (string, string) { return r.EntityID, r.EntityName },
	)
}

// DailyColumns is the export layout for the per-day rollup.
func DailyColumns() Columns[domain.DayRow] {
	return Columns[domain.DayRow]{
		Headers: []string{"Date", "Total", "High", "Medium", "Low", "Reviewed", "True Positives", "Suspected", "Policy Violations", "False Positives"},
		Fields: []func(domain.DayRow) string{
			func(r domain.DayRow) string { return r.Date },
			func(r domain.DayRow) string { return FormatCount(r.Total) },
			func(r domain.DayRow) string { return FormatCount(r.HighCount) },
			func(r domain.DayRow) string { return FormatCount(r.MediumCount) },
			func(r domain.DayRow) string { return FormatCount(r.LowCount) },
			func(r domain.DayRow) string { return FormatCount(r.ReviewedTotal) },
			func(r domain.DayRow) string { return FormatCount(r.TruePositives) },
			func(r domain.DayRow) string { return FormatCount(r.Suspected) },
			func(r domain.DayRow) string { return FormatCount(r.PolicyViolations) },
			func(r domain.DayRow) string { return FormatCount(r.FalsePositives) },
		},
	}
}

// EntityColumns is the export layout for the per-enterprise rollup.
func EntityColumns() Columns[domain.EntityRow] {
	return Columns[domain.EntityRow]{
		Headers: []string{"Enterprise ID", "Enterprise", "Total", "High", "Medium", "Low", "Reviewed", "High Rate (%)"},
		Fields: []func(domain.EntityRow) string{
			func(r domain.EntityRow) string { return r.EntityID },
			func(r domain.EntityRow) string { return r.EntityName },
			func(r domain.EntityRow) string { return FormatCount(r.Total) },
			func(r domain.EntityRow) string { return FormatCount(r.HighCount) },
			func(r domain.EntityRow) string { return FormatCount(r.MediumCount) },
			func(r domain.EntityRow) string { return FormatCount(r.LowCount) },
			func(r domain.EntityRow) string { return FormatCount(r.ReviewedTotal) },
			func(r domain.EntityRow) string { return FormatRate(r.HighRate) },
		},
	}
}

// ReviewDayColumns is the export layout for the per-day review rollup.
func ReviewDayColumns() Columns[domain.ReviewDayRow] {
	return Columns[domain.ReviewDayRow]{
		Headers: []string{"Date", "Reviewable", "Reviewed", "True Positives", "Suspected", "Policy Violations", "False Positives", "Completion (%)", "Accuracy (%)"},
		Fields: []func(domain.ReviewDayRow) string{
			func(r domain.ReviewDayRow) string { return r.Date },
			func(r domain.ReviewDayRow) string { return FormatCount(r.MidHighDetections) },
			func(r domain.ReviewDayRow) string { return FormatCount(r.ReviewedTotal) },
			func(r domain.ReviewDayRow) string { return FormatCount(r.TruePositives) },
			func(r domain.ReviewDayRow) string { return FormatCount(r.Suspected) },
			func(r domain.ReviewDayRow) string { return FormatCount(r.PolicyViolations) },
			func(r domain.ReviewDayRow) string { return FormatCount(r.FalsePositives) },
			func(r domain.ReviewDayRow) string { return FormatRate(r.CompletionRate) },
			func(r domain.ReviewDayRow) string { return FormatRate(r.AccuracyRate) },
		},
	}
}
