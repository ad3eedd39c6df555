package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"crosscheck/internal/rules"
)

func violationsWithWeights(weights ...int) []rules.Violation {
	out := make([]rules.Violation, len(weights))
	for i, w := range weights {
		out[i] = rules.Violation{RuleID: "R", Weight: w}
	}
	return out
}

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		weights []int
		want    int
	}{
		{"no violations", nil, 0},
		{"single critical", []int{30}, 30},
		{"mixed severities", []int{30, 30, 20}, 80},
		{"sum at cap", []int{30, 30, 20, 20}, 100},
		{"sum beyond cap", []int{30, 30, 30, 30}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(violationsWithWeights(tt.weights...)))
		})
	}
}

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		score int
		want  Classification
	}{
		{0, ClassificationSafe},
		{30, ClassificationSafe},
		{31, ClassificationMonitor},
		{70, ClassificationMonitor},
		{71, ClassificationCritical},
		{100, ClassificationCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.score), "score %d", tt.score)
	}
}
