package recon

import (
	"context"
	"math"
	"sort"
	"strconv"

	"crosscheck/internal/risk"
	dErrors "crosscheck/pkg/domain-errors"
)

const topRuleCount = 5

// Statistics aggregates every stored validation result.
func (s *Service) Statistics(ctx context.Context) (Statistics, error) {
	_, total, err := s.sales.ListOrders(ctx, 1, 1)
	if err != nil {
		return Statistics{}, dErrors.Wrap(dErrors.CodeUnavailable, "sales store unreachable", err)
	}

	results, err := s.results.All(ctx)
	if err != nil {
		return Statistics{}, err
	}

	stats := Statistics{
		TotalTransactions: total,
		TotalValidated:    len(results),
		TopViolatedRules:  []RuleCount{},
	}
	if len(results) == 0 {
		return stats, nil
	}

	var scoreSum int
	counts := make(map[string]int)
	for _, r := range results {
		scoreSum += r.RiskScore
		switch r.Classification {
		case risk.ClassificationSafe:
			stats.SafeCount++
		case risk.ClassificationMonitor:
			stats.MonitorCount++
		case risk.ClassificationCritical:
			stats.CriticalCount++
		}
		for _, v := range r.Violations {
			counts[v.RuleID]++
		}
	}

	stats.PassRate = round2(float64(stats.SafeCount) / float64(len(results)))
	stats.AverageRiskScore = round2(float64(scoreSum) / float64(len(results)))
	stats.TopViolatedRules = topRules(counts, topRuleCount)
	return stats, nil
}

// RiskDistribution buckets stored scores into ten 10-wide ranges plus a
// dedicated bucket for the cap.
func (s *Service) RiskDistribution(ctx context.Context) (RiskDistribution, error) {
	results, err := s.results.All(ctx)
	if err != nil {
		return RiskDistribution{}, err
	}

	counts := make(map[string]int)
	for _, r := range results {
		counts[bucketLabel(r.RiskScore)]++
	}

	dist := RiskDistribution{Total: len(results)}
	for i := 0; i < 10; i++ {
		label := strconv.Itoa(i*10) + "-" + strconv.Itoa(i*10+9)
		dist.Buckets = append(dist.Buckets, DistributionBucket{Range: label, Count: counts[label]})
	}
	dist.Buckets = append(dist.Buckets, DistributionBucket{Range: "100", Count: counts["100"]})
	return dist, nil
}

func bucketLabel(score int) string {
	if score >= risk.MaxScore {
		return "100"
	}
	low := (score / 10) * 10
	return strconv.Itoa(low) + "-" + strconv.Itoa(low+9)
}

// topRules ranks violated rules by count, breaking ties by rule ID so the
// ordering is stable across runs.
func topRules(counts map[string]int, limit int) []RuleCount {
	ranked := make([]RuleCount, 0, len(counts))
	for id, count := range counts {
		ranked = append(ranked, RuleCount{RuleID: id, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].RuleID < ranked[j].RuleID
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
