// Package domain contains all core types used across the application.
// Keeping the record model and aggregate shapes in one place makes the
// reporting semantics easy to reason about.
package domain

import "time"

// ─── Constants ───────────────────────────────────────────────────────────────

// Risk tiers assigned by the upstream detection pipeline.
// TierNormal is reserved for future pipeline versions; the current
// generation never produces it.
const (
	TierHigh   = "high"
	TierMedium = "medium"
	TierLow    = "low"
	TierNormal = "normal"
)

// Review states of a detection record.
const (
	ReviewDone    = "reviewed"
	ReviewPending = "pending"
)

// Review outcomes. OutcomePending is meaningful only while the record's
// review state is pending.
const (
	OutcomeTruePositive    = "true_positive"
	OutcomeSuspected       = "suspected"
	OutcomePolicyViolation = "policy_violation"
	OutcomeFalsePositive   = "false_positive"
	OutcomePending         = "pending"
)

// Time-window filter modes accepted by the dashboard queries.
const (
	WindowToday     = "today"
	WindowYesterday = "yesterday"
	WindowLast7     = "last7days"
	WindowLast30    = "last30days"
	WindowLastYear  = "lastYear"
	WindowCustom    = "custom"
)

// CategoryNormal is the sentinel category carried by low-tier batch records.
const CategoryNormal = "normal"

// ─── Core domain types ────────────────────────────────────────────────────────

// Record is one risk detection event, or a weighted batch of identical
// low-risk events. Records are immutable once ingested: the reporting
// engine only reads and folds them.
//
// Weight is the multiplicity the record represents. A record with
// Weight = N stands for N underlying events that share identical tier,
// category, and review fields; it defaults to 1 when omitted on ingest.
type Record struct {
	ID              string    `json:"id" validate:"required"`
	EntityID        string    `json:"entity_id" validate:"required"`
	EntityName      string    `json:"entity_name" validate:"required"`
	SubjectRef      string    `json:"subject_ref"`
	OccurredAt      time.Time `json:"occurred_at" validate:"required"`
	DurationSeconds int       `json:"duration_seconds" validate:"gte=0"`
	RiskTier        string    `json:"risk_tier" validate:"oneof=high medium low normal"`
	Category        string    `json:"category"`
	Signals         []string  `json:"signals,omitempty"`
	ReviewState     string    `json:"review_state" validate:"oneof=reviewed pending"`
	ReviewOutcome   string    `json:"review_outcome" validate:"oneof=true_positive suspected policy_violation false_positive pending"`
	ReviewerID      string    `json:"reviewer_id,omitempty"`
	Weight          int       `json:"weight,omitempty" validate:"omitempty,gte=1"`
}

// EventCount returns the number of underlying events this record stands
// for. A zero Weight (record built in-process without an explicit weight)
// counts as 1.
func (r *Record) EventCount() int {
	if r.Weight < 1 {
		return 1
	}
	return r.Weight
}

// Reviewed reports whether the record has completed human review.
func (r *Record) Reviewed() bool {
	return r.ReviewState == ReviewDone
}

// ─── Aggregates ───────────────────────────────────────────────────────────────

// DashboardStats is the single derived snapshot for the overview panel.
// It is recomputed from scratch whenever the filtered record set changes
// and is never persisted.
type DashboardStats struct {
	TotalDetections int `json:"total_detections"`

	HighCount   int `json:"high_count"`
	MediumCount int `json:"medium_count"`
	LowCount    int `json:"low_count"`

	HighReviewed   int `json:"high_reviewed"`
	MediumReviewed int `json:"medium_reviewed"`
	ReviewedTotal  int `json:"reviewed_total"`

	TruePositives    int `json:"true_positives"`
	Suspected        int `json:"suspected"`
	PolicyViolations int `json:"policy_violations"`
	FalsePositives   int `json:"false_positives"`

	HighRate             float64 `json:"high_rate"`
	MediumRate           float64 `json:"medium_rate"`
	LowRate              float64 `json:"low_rate"`
	ReviewCompletionRate float64 `json:"review_completion_rate"`
	AccuracyRate         float64 `json:"accuracy_rate"`
}

// DayRow is the per-day rollup. Date is the calendar day in the report
// timezone, formatted 2006-01-02. Rows are ephemeral: rebuilt on every
// query, holding no references back to the source records.
type DayRow struct {
	Date string `json:"date"`

	Total       int `json:"total"`
	HighCount   int `json:"high_count"`
	MediumCount int `json:"medium_count"`
	LowCount    int `json:"low_count"`

	ReviewedTotal    int `json:"reviewed_total"`
	TruePositives    int `json:"true_positives"`
	Suspected        int `json:"suspected"`
	PolicyViolations int `json:"policy_violations"`
	FalsePositives   int `json:"false_positives"`
}

// EntityRow is the per-enterprise rollup. Rows carry no inherent order;
// the table view model sorts them on demand.
type EntityRow struct {
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`

	Total       int `json:"total"`
	HighCount   int `json:"high_count"`
	MediumCount int `json:"medium_count"`
	LowCount    int `json:"low_count"`

	ReviewedTotal int     `json:"reviewed_total"`
	HighRate      float64 `json:"high_rate"`
}

// ReviewDayRow is the per-day review rollup: how much reviewable volume a
// day produced and how its reviews resolved.
type ReviewDayRow struct {
	Date string `json:"date"`

	MidHighDetections int `json:"mid_high_detections"`
	ReviewedTotal     int `json:"reviewed_total"`

	TruePositives    int `json:"true_positives"`
	Suspected        int `json:"suspected"`
	PolicyViolations int `json:"policy_violations"`
	FalsePositives   int `json:"false_positives"`

	CompletionRate float64 `json:"completion_rate"`
	AccuracyRate   float64 `json:"accuracy_rate"`
}

// DateRange is the explicit calendar range for the custom window mode.
// Both ends are calendar dates; the effective interval spans from
// Start 00:00:00 through the last instant of End in the report timezone.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ─── Webhooks ─────────────────────────────────────────────────────────────────

// WebhookConfig is a registered callback fired when a high-tier detection
// is ingested.
type WebhookConfig struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
	Active    bool      `json:"active"`
}

// WebhookPayload is the body sent to registered webhook URLs.
type WebhookPayload struct {
	Event       string    `json:"event"` // always "high_tier_detection"
	TriggeredAt time.Time `json:"triggered_at"`
	Record      Record    `json:"record"`
}
