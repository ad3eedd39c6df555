// Package risk converts rule violations into a composite risk score and a
// classification. Pure arithmetic: no I/O, no state.
package risk

import "crosscheck/internal/rules"

// Classification buckets a score for downstream triage.
type Classification string

const (
	ClassificationSafe     Classification = "safe"
	ClassificationMonitor  Classification = "monitor"
	ClassificationCritical Classification = "critical"
)

// MaxScore caps the composite score. Violations beyond the cap are still
// recorded on the result but stop moving the number.
const MaxScore = 100

// Score sums violation weights, capped at MaxScore. Weights are never
// negative, so the score is non-decreasing in the number of violations.
func Score(violations []rules.Violation) int {
	raw := 0
	for _, v := range violations {
		raw += v.Weight
	}
	if raw > MaxScore {
		return MaxScore
	}
	return raw
}

// Classify maps a score to a classification. Boundaries are inclusive on
// the upper edge: 30 is still safe and 70 is still monitor.
func Classify(score int) Classification {
	switch {
	case score <= 30:
		return ClassificationSafe
	case score <= 70:
		return ClassificationMonitor
	default:
		return ClassificationCritical
	}
}
