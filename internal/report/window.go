// Package report implements the pure reporting core: time-window
// selection, weighted aggregation, derived rates, the sortable table view
// model, and delimited export.
//
// Architecture:
//   Every function here is a pure fold over an in-memory record snapshot.
//   The engine owns no mutable state beyond its fixed report timezone;
//   callers pass the record set and parameters on every query and
//   aggregates are rebuilt from scratch each time. No aggregate keeps a
//   reference back to the records that produced it.
package report

import (
	"time"

	"aquila/risk-insights-api/internal/domain"
)

// Engine computes reports over record snapshots. The location pins the
// calendar used for day bucketing and window boundaries, so the same
// snapshot always buckets the same way regardless of server timezone.
type Engine struct {
	loc *time.Location
}

// New creates a reporting engine that buckets days in the given location.
// A nil location means UTC.
func New(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{loc: loc}
}

// Location returns the engine's report timezone.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// dayStart truncates t to local midnight in the report timezone.
func (e *Engine) dayStart(t time.Time) time.Time {
	t = t.In(e.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, e.loc)
}

// dayKey formats the calendar date of t in the report timezone.
// Two records on the same calendar day but different hours share a key.
func (e *Engine) dayKey(t time.Time) string {
	return t.In(e.loc).Format("2006-01-02")
}

// SelectWindow returns the records whose occurrence time falls inside the
// requested window, preserving input order. Day boundaries are computed
// by truncating anchorNow to local midnight in the report timezone.
//
// Modes:
//   - today:      occurred_at >= today0
//   - yesterday:  today0-1d <= occurred_at < today0
//   - last7days:  occurred_at >= today0-7d (inclusive of today)
//   - last30days: occurred_at >= today0-30d
//   - lastYear:   occurred_at >= today0 minus one calendar year
//   - custom:     [rng.Start 00:00:00, rng.End 23:59:59.999999999]
//
// An unknown mode passes every record through. A custom range with
// Start after End selects nothing; ranges are never auto-swapped.
func (e *Engine) SelectWindow(records []*domain.Record, mode string, anchorNow time.Time, rng *domain.DateRange) []*domain.Record {
	today0 := e.dayStart(anchorNow)

	var keep func(t time.Time) bool
	switch mode {
	case domain.WindowToday:
		keep = func(t time.Time) bool { return !t.Before(today0) }
	case domain.WindowYesterday:
		y0 := today0.AddDate(0, 0, -1)
		keep = func(t time.Time) bool { return !t.Before(y0) && t.Before(today0) }
	case domain.WindowLast7:
		cut := today0.AddDate(0, 0, -7)
		keep = func(t time.Time) bool { return !t.Before(cut) }
	case domain.WindowLast30:
		cut := today0.AddDate(0, 0, -30)
		keep = func(t time.Time) bool { return !t.Before(cut) }
	case domain.WindowLastYear:
		// Calendar-year subtraction, not 365 days.
		cut := today0.AddDate(-1, 0, 0)
		keep = func(t time.Time) bool { return !t.Before(cut) }
	case domain.WindowCustom:
		if rng == nil {
			return []*domain.Record{}
		}
		start := e.dayStart(rng.Start)
		end := e.dayStart(rng.End).AddDate(0, 0, 1) // exclusive upper bound
		if start.After(end) {
			// Inverted range: empty result, never auto-swapped.
			return []*domain.Record{}
		}
		keep = func(t time.Time) bool { return !t.Before(start) && t.Before(end) }
	default:
		// Unknown mode: pass-through.
		return records
	}

	filtered := make([]*domain.Record, 0, len(records))
	for _, rec := range records {
		if keep(rec.OccurredAt) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}
