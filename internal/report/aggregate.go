package report

import (
	"sort"

	"aquila/risk-insights-api/internal/domain"
)

// The aggregation fold. Each record contributes its full event count to
// exactly one tier bucket, one day bucket, one entity bucket, and — only
// when reviewed — one outcome bucket plus the reviewed total. Weight is
// never split or double-counted within a dimension; a weighted batch is
// treated as fully reviewed or fully pending.

// Aggregate folds a record snapshot into the global dashboard stats,
// derived rates included.
func (e *Engine) Aggregate(records []*domain.Record) domain.DashboardStats {
	var s domain.DashboardStats

	for _, rec := range records {
		n := rec.EventCount()
		s.TotalDetections += n

		switch rec.RiskTier {
		case domain.TierHigh:
			s.HighCount += n
		case domain.TierMedium:
			s.MediumCount += n
		case domain.TierLow:
			s.LowCount += n
		}
		// Unrecognized tiers land in no tier bucket. Validation rejects
		// them at the API boundary, so this leak only affects records
		// constructed in-process.

		if !rec.Reviewed() {
			continue
		}
		s.ReviewedTotal += n
		switch rec.RiskTier {
		case domain.TierHigh:
			s.HighReviewed += n
		case domain.TierMedium:
			s.MediumReviewed += n
		}
		switch rec.ReviewOutcome {
		case domain.OutcomeTruePositive:
			s.TruePositives += n
		case domain.OutcomeSuspected:
			s.Suspected += n
		case domain.OutcomePolicyViolation:
			s.PolicyViolations += n
		case domain.OutcomeFalsePositive:
			s.FalsePositives += n
		}
	}

	s.HighRate = TierRate(s.HighCount, s.TotalDetections)
	s.MediumRate = TierRate(s.MediumCount, s.TotalDetections)
	s.LowRate = TierRate(s.LowCount, s.TotalDetections)
	s.ReviewCompletionRate = ReviewCompletionRate(s.HighReviewed+s.MediumReviewed, s.HighCount+s.MediumCount)
	s.AccuracyRate = AccuracyRate(s.TruePositives+s.Suspected+s.PolicyViolations, s.ReviewedTotal)
	return s
}

// AggregateByDay folds records into per-day rows keyed by the calendar
// date in the report timezone. Rows are returned most recent day first.
func (e *Engine) AggregateByDay(records []*domain.Record) []domain.DayRow {
	buckets := make(map[string]*domain.DayRow)

	for _, rec := range records {
		key := e.dayKey(rec.OccurredAt)
		row, ok := buckets[key]
		if !ok {
			row = &domain.DayRow{Date: key}
			buckets[key] = row
		}

		n := rec.EventCount()
		row.Total += n
		switch rec.RiskTier {
		case domain.TierHigh:
			row.HighCount += n
		case domain.TierMedium:
			row.MediumCount += n
		case domain.TierLow:
			row.LowCount += n
		}

		if !rec.Reviewed() {
			continue
		}
		row.ReviewedTotal += n
		switch rec.ReviewOutcome {
		case domain.OutcomeTruePositive:
			row.TruePositives += n
		case domain.OutcomeSuspected:
			row.Suspected += n
		case domain.OutcomePolicyViolation:
			row.PolicyViolations += n
		case domain.OutcomeFalsePositive:
			row.FalsePositives += n
		}
	}

	rows := make([]domain.DayRow, 0, len(buckets))
	for _, row := range buckets {
		rows = append(rows, *row)
	}
	// ISO date strings sort lexicographically; descending is newest first.
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date > rows[j].Date })
	return rows
}

// AggregateByEntity folds records into per-enterprise rows. Rows carry no
// inherent order; the table view model sorts them. The entity name is
// last-write-wins if records ever disagree for the same ID.
func (e *Engine) AggregateByEntity(records []*domain.Record) []domain.EntityRow {
	buckets := make(map[string]*domain.EntityRow)
	var order []string // first-seen order keeps output deterministic

	for _, rec := range records {
		row, ok := buckets[rec.EntityID]
		if !ok {
			row = &domain.EntityRow{EntityID: rec.EntityID}
			buckets[rec.EntityID] = row
			order = append(order, rec.EntityID)
		}
		row.EntityName = rec.EntityName

		n := rec.EventCount()
		row.Total += n
		switch rec.RiskTier {
		case domain.TierHigh:
			row.HighCount += n
		case domain.TierMedium:
			row.MediumCount += n
		case domain.TierLow:
			row.LowCount += n
		}
		if rec.Reviewed() {
			row.ReviewedTotal += n
		}
	}

	rows := make([]domain.EntityRow, 0, len(order))
	for _, id := range order {
		row := buckets[id]
		row.HighRate = TierRate(row.HighCount, row.Total)
		rows = append(rows, *row)
	}
	return rows
}

// AggregateReviewByDay folds records into per-day review rows: reviewable
// (high+medium) volume versus review resolution. Days with neither
// reviewable detections nor completed reviews are dropped from the
// series. Rows are returned most recent day first.
func (e *Engine) AggregateReviewByDay(records []*domain.Record) []domain.ReviewDayRow {
	buckets := make(map[string]*domain.ReviewDayRow)
	// Completion is measured only against the high+medium population, so
	// the reviewed share of that population is tracked separately from
	// the all-tier reviewed total: a low-tier spot check must never stand
	// in for an unreviewed high.
	reviewedMidHigh := make(map[string]int)

	for _, rec := range records {
		key := e.dayKey(rec.OccurredAt)
		row, ok := buckets[key]
		if !ok {
			row = &domain.ReviewDayRow{Date: key}
			buckets[key] = row
		}

		n := rec.EventCount()
		midHigh := rec.RiskTier == domain.TierHigh || rec.RiskTier == domain.TierMedium
		if midHigh {
			row.MidHighDetections += n
		}

		if !rec.Reviewed() {
			continue
		}
		row.ReviewedTotal += n
		if midHigh {
			reviewedMidHigh[key] += n
		}
		switch rec.ReviewOutcome {
		case domain.OutcomeTruePositive:
			row.TruePositives += n
		case domain.OutcomeSuspected:
			row.Suspected += n
		case domain.OutcomePolicyViolation:
			row.PolicyViolations += n
		case domain.OutcomeFalsePositive:
			row.FalsePositives += n
		}
	}

	rows := make([]domain.ReviewDayRow, 0, len(buckets))
	for key, row := range buckets {
		if row.ReviewedTotal == 0 && row.MidHighDetections == 0 {
			continue
		}
		row.CompletionRate = ReviewCompletionRate(reviewedMidHigh[key], row.MidHighDetections)
		row.AccuracyRate = AccuracyRate(row.TruePositives+row.Suspected+row.PolicyViolations, row.ReviewedTotal)
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date > rows[j].Date })
	return rows
}
