// Command seed generates a realistic test dataset for the Aquila Risk
// Insights API and writes it to data/seed.json.
//
// Usage:
//
//	go run ./cmd/seed
//
// The generated dataset spans 30 days across a handful of enterprises:
//   - ~75% of the event volume is low-tier, emitted as weighted batch
//     records (one record standing for many identical low-risk events)
//   - ~17% medium-tier detections with signal lists, most reviewed
//   - ~8% high-tier detections, almost all reviewed
//
// Every record honors the ingestion invariants: weight >= 1, a pending
// outcome exactly when review is pending, a reviewer exactly when review
// is done.
package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"

	"aquila/risk-insights-api/internal/domain"
)

func main() {
	rng := rand.New(rand.NewSource(42)) // deterministic seed for reproducibility

	baseTime := time.Now().UTC().Add(-30 * 24 * time.Hour).Truncate(24 * time.Hour)
	var records []domain.Record

	for _, ent := range enterprises {
		records = append(records, generateLowBatches(rng, baseTime, ent)...)
		records = append(records, generateMediumDetections(rng, baseTime, ent)...)
		records = append(records, generateHighDetections(rng, baseTime, ent)...)
	}

	// Shuffle so patterns aren't trivially grouped in the file.
	rng.Shuffle(len(records), func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})

	if err := os.MkdirAll("data", 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir error: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create("data/seed.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "create error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		fmt.Fprintf(os.Stderr, "encode error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %d records → data/seed.json\n", len(records))
}

// ─── Enterprise profiles ──────────────────────────────────────────────────────

// enterprise describes one tenant organization and its daily event volume.
type enterprise struct {
	id        string
	name      string
	dailyLow  int // average low-tier events per day (batched)
	dailyMid  int // average medium-tier detections per day
	dailyHigh int // average high-tier detections per day
}

var enterprises = []enterprise{
	{id: "ent-horizon", name: "Horizon Logistics", dailyLow: 220, dailyMid: 6, dailyHigh: 2},
	{id: "ent-meridian", name: "Meridian Health Group", dailyLow: 140, dailyMid: 4, dailyHigh: 1},
	{id: "ent-cobalt", name: "Cobalt Financial", dailyLow: 310, dailyMid: 9, dailyHigh: 4},
	{id: "ent-lakeview", name: "Lakeview Retail", dailyLow: 90, dailyMid: 2, dailyHigh: 1},
	{id: "ent-atlas", name: "Atlas Telecom", dailyLow: 180, dailyMid: 5, dailyHigh: 2},
}

var reviewers = []string{"rev-ines", "rev-marcus", "rev-talia", "rev-jun"}

// Category and signal pools per tier.
var mediumCategories = []string{
	"aggressive_sales", "script_deviation", "unverified_claim", "excessive_pressure",
}
var highCategories = []string{
	"impersonation", "threat_language", "payment_redirection", "identity_harvesting",
}
var signalPool = []string{
	"urgency_language", "callback_refusal", "account_probe", "payment_keywords",
	"scripted_intro", "number_spoofing", "verification_bypass", "escalation_threat",
}

const days = 30

// ─── Low tier: weighted batches ───────────────────────────────────────────────

// generateLowBatches emits 2-4 batch records per day whose weights sum to
// roughly the enterprise's daily low-tier volume. Batch records carry the
// "normal" category sentinel, zero signals, a placeholder subject, and a
// zero duration.
func generateLowBatches(rng *rand.Rand, base time.Time, ent enterprise) []domain.Record {
	var records []domain.Record

	for day := 0; day < days; day++ {
		remaining := ent.dailyLow + rng.Intn(ent.dailyLow/3+1) - ent.dailyLow/6
		batches := 2 + rng.Intn(3)
		for b := 0; b < batches && remaining > 0; b++ {
			weight := remaining / (batches - b)
			if weight < 1 {
				weight = 1
			}
			remaining -= weight

			rec := domain.Record{
				ID:            uuid.NewString(),
				EntityID:      ent.id,
				EntityName:    ent.name,
				SubjectRef:    "batch",
				OccurredAt:    dayTime(rng, base, day),
				RiskTier:      domain.TierLow,
				Category:      domain.CategoryNormal,
				ReviewState:   domain.ReviewPending,
				ReviewOutcome: domain.OutcomePending,
				Weight:        weight,
			}
			// A small share of low batches gets spot-checked by reviewers.
			if rng.Float64() < 0.05 {
				markReviewed(rng, &rec)
			}
			records = append(records, rec)
		}
	}
	return records
}

// ─── Medium tier ──────────────────────────────────────────────────────────────

func generateMediumDetections(rng *rand.Rand, base time.Time, ent enterprise) []domain.Record {
	var records []domain.Record

	for day := 0; day < days; day++ {
		n := ent.dailyMid + rng.Intn(3) - 1
		for i := 0; i < n; i++ {
			rec := domain.Record{
				ID:              uuid.NewString(),
				EntityID:        ent.id,
				EntityName:      ent.name,
				SubjectRef:      phoneRef(rng),
				OccurredAt:      dayTime(rng, base, day),
				DurationSeconds: 30 + rng.Intn(600),
				RiskTier:        domain.TierMedium,
				Category:        mediumCategories[rng.Intn(len(mediumCategories))],
				Signals:         pickSignals(rng, 1+rng.Intn(2)),
				ReviewState:     domain.ReviewPending,
				ReviewOutcome:   domain.OutcomePending,
				Weight:          1,
			}
			if rng.Float64() < 0.65 {
				markReviewed(rng, &rec)
			}
			records = append(records, rec)
		}
	}
	return records
}

// ─── High tier ────────────────────────────────────────────────────────────────

func generateHighDetections(rng *rand.Rand, base time.Time, ent enterprise) []domain.Record {
	var records []domain.Record

	for day := 0; day < days; day++ {
		n := ent.dailyHigh
		if rng.Float64() < 0.3 {
			n++ // occasional spike day
		}
		for i := 0; i < n; i++ {
			rec := domain.Record{
				ID:              uuid.NewString(),
				EntityID:        ent.id,
				EntityName:      ent.name,
				SubjectRef:      phoneRef(rng),
				OccurredAt:      dayTime(rng, base, day),
				DurationSeconds: 60 + rng.Intn(900),
				RiskTier:        domain.TierHigh,
				Category:        highCategories[rng.Intn(len(highCategories))],
				Signals:         pickSignals(rng, 2+rng.Intn(3)),
				ReviewState:     domain.ReviewPending,
				ReviewOutcome:   domain.OutcomePending,
				Weight:          1,
			}
			// High-tier detections are worked almost immediately.
			if rng.Float64() < 0.85 {
				markReviewed(rng, &rec)
			}
			records = append(records, rec)
		}
	}
	return records
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

// markReviewed flips a record to the reviewed state with an outcome drawn
// from the observed resolution distribution.
func markReviewed(rng *rand.Rand, rec *domain.Record) {
	rec.ReviewState = domain.ReviewDone
	rec.ReviewerID = reviewers[rng.Intn(len(reviewers))]

	switch p := rng.Float64(); {
	case p < 0.45:
		rec.ReviewOutcome = domain.OutcomeTruePositive
	case p < 0.65:
		rec.ReviewOutcome = domain.OutcomeSuspected
	case p < 0.80:
		rec.ReviewOutcome = domain.OutcomePolicyViolation
	default:
		rec.ReviewOutcome = domain.OutcomeFalsePositive
	}
}

// dayTime places an event at a random business-weighted hour of the given
// day offset.
func dayTime(rng *rand.Rand, base time.Time, day int) time.Time {
	hour := 8 + rng.Intn(12) // 08:00-19:59
	return base.AddDate(0, 0, day).
		Add(time.Duration(hour)*time.Hour + time.Duration(rng.Intn(3600))*time.Second)
}

func pickSignals(rng *rand.Rand, n int) []string {
	perm := rng.Perm(len(signalPool))
	signals := make([]string, 0, n)
	for _, idx := range perm[:n] {
		signals = append(signals, signalPool[idx])
	}
	return signals
}

func phoneRef(rng *rand.Rand) string {
	return fmt.Sprintf("+1%03d%03d%04d", 200+rng.Intn(700), rng.Intn(1000), rng.Intn(10000))
}
