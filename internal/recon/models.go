// Package recon orchestrates sales/billing reconciliation: it assembles
// evaluation contexts from the external stores, drives the rule evaluator
// and risk scorer, and emits the causally-ordered audit trail.
package recon

import (
	"time"

	"crosscheck/internal/risk"
	"crosscheck/internal/rules"
)

// ViolationRecord is the wire shape of one rule violation.
type ViolationRecord struct {
	RuleID        string `json:"ruleId"`
	RuleName      string `json:"ruleName"`
	Severity      string `json:"severity"`
	Message       string `json:"message"`
	ExpectedValue string `json:"expectedValue,omitempty"`
	ActualValue   string `json:"actualValue,omitempty"`
	Weight        int    `json:"weight"`
}

// ValidationResult is the wire-stable outcome of validating one transaction.
type ValidationResult struct {
	CorrelationKey string              `json:"correlationKey"`
	RiskScore      int                 `json:"riskScore"`
	Classification risk.Classification `json:"classification"`
	RulesEvaluated int                 `json:"rulesEvaluated"`
	RulesPassed    int                 `json:"rulesPassed"`
	RulesFailed    int                 `json:"rulesFailed"`
	RulesWarned    int                 `json:"rulesWarned"`
	Violations     []ViolationRecord   `json:"violations"`
	ValidatedAt    time.Time           `json:"validatedAt"`
}

// ScanReport aggregates a full ledger scan. FailedKeys lists correlation
// keys that could not be evaluated; their presence never fails the scan.
type ScanReport struct {
	Results       []ValidationResult `json:"results"`
	TotalScanned  int                `json:"totalScanned"`
	SafeCount     int                `json:"safeCount"`
	MonitorCount  int                `json:"monitorCount"`
	CriticalCount int                `json:"criticalCount"`
	GhostInvoices int                `json:"ghostInvoices"`
	FailedKeys    []string           `json:"failedKeys,omitempty"`
	StartedAt     time.Time          `json:"startedAt"`
	FinishedAt    time.Time          `json:"finishedAt"`
}

// RuleCount reports how often one rule has been violated.
type RuleCount struct {
	RuleID string `json:"ruleId"`
	Count  int    `json:"count"`
}

// Statistics aggregates all stored validation results.
type Statistics struct {
	TotalTransactions int         `json:"totalTransactions"`
	TotalValidated    int         `json:"totalValidated"`
	SafeCount         int         `json:"safeCount"`
	MonitorCount      int         `json:"monitorCount"`
	CriticalCount     int         `json:"criticalCount"`
	PassRate          float64     `json:"passRate"`
	AverageRiskScore  float64     `json:"averageRiskScore"`
	TopViolatedRules  []RuleCount `json:"topViolatedRules"`
}

// DistributionBucket is one histogram bucket over the score range.
type DistributionBucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// RiskDistribution is the histogram of stored scores: ten 10-wide buckets
// plus a dedicated bucket for the cap.
type RiskDistribution struct {
	Buckets []DistributionBucket `json:"buckets"`
	Total   int                  `json:"total"`
}

// toRecords converts engine violations into their wire shape.
func toRecords(violations []rules.Violation) []ViolationRecord {
	out := make([]ViolationRecord, 0, len(violations))
	for _, v := range violations {
		out = append(out, ViolationRecord{
			RuleID:        v.RuleID,
			RuleName:      v.RuleName,
			Severity:      string(v.Severity),
			Message:       v.Message,
			ExpectedValue: v.Expected,
			ActualValue:   v.Actual,
			Weight:        v.Weight,
		})
	}
	return out
}
