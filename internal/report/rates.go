package report

// Derived-rate helpers. All share one zero-denominator policy: when the
// denominator is 0 the rate is 0, never NaN and never an error. Every
// result lies in [0, 100].

// TierRate is the share of the total held by one tier, in percent.
func TierRate(tierCount, total int) float64 {
	return pct(tierCount, total)
}

// ReviewCompletionRate is the share of the reviewable (high+medium)
// population that has completed review, in percent. Completion is never
// measured against low-tier or grand totals.
func ReviewCompletionRate(reviewedMidHigh, midHighTotal int) float64 {
	return pct(reviewedMidHigh, midHighTotal)
}

// AccuracyRate is the share of reviewed detections confirmed as some form
// of true positive (true positive, suspected, or policy violation), in
// percent. False positives are excluded from the numerator: those reviews
// invalidated the detection.
func AccuracyRate(confirmed, reviewedTotal int) float64 {
	return pct(confirmed, reviewedTotal)
}

func pct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
