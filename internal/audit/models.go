// Package audit captures the causally-ordered event trail emitted by the
// reconciliation engine. Events are transport-agnostic so stores and sinks
// can fan out: in-memory for tests, Postgres for retention, Kafka for
// downstream correlators.
package audit

import "time"

// EventType enumerates the lifecycle events of a validation run plus
// process-level events.
type EventType string

const (
	EventValidationStarted   EventType = "validation_started"
	EventRuleEvaluated       EventType = "rule_evaluated"
	EventRuleViolation       EventType = "rule_violation"
	EventRiskScoreCalculated EventType = "risk_score_calculated"
	EventValidationCompleted EventType = "validation_completed"
	EventSystemStartup       EventType = "system_startup"
	EventSystemShutdown      EventType = "system_shutdown"
	EventSystemError         EventType = "system_error"
)

// Event is one entry in the audit trail.
//
// CorrelationID groups all events of a single validation run; Seq is a
// monotonic sequence within that run. Events from different runs may
// interleave in physical storage, but sorting one run's events by Seq always
// reconstructs causal order: validation_started precedes every rule event,
// which precede risk_score_calculated, which precedes validation_completed.
type Event struct {
	LogID          string    `json:"logId"`
	Timestamp      time.Time `json:"timestamp"`
	Type           EventType `json:"eventType"`
	CorrelationKey string    `json:"correlationKey,omitempty"`
	CorrelationID  string    `json:"correlationId,omitempty"`
	Seq            uint64    `json:"seq"`
	RuleID         string    `json:"ruleId,omitempty"`
	RuleName       string    `json:"ruleName,omitempty"`
	Severity       string    `json:"severity,omitempty"`
	RiskScore      *int      `json:"riskScore,omitempty"`
	Classification string    `json:"riskClassification,omitempty"`
	Decision       string    `json:"decision,omitempty"`
	Message        string    `json:"message,omitempty"`
	Source         string    `json:"source"`
}

// Summary aggregates the stored trail for reporting.
type Summary struct {
	TotalEvents      int               `json:"totalEvents"`
	EventsByType     map[EventType]int `json:"eventsByType"`
	EventsBySeverity map[string]int    `json:"eventsBySeverity"`
	EventsByDecision map[string]int    `json:"eventsByDecision"`
	Earliest         *time.Time        `json:"earliest,omitempty"`
	Latest           *time.Time        `json:"latest,omitempty"`
}

// Filter narrows audit queries. Zero values match everything.
type Filter struct {
	Type           EventType
	CorrelationKey string
	Severity       string
	Decision       string
	Source         string
	From           time.Time
	To             time.Time
}

// Matches reports whether an event satisfies every set filter field.
func (f Filter) Matches(e Event) bool {
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.CorrelationKey != "" && e.CorrelationKey != f.CorrelationKey {
		return false
	}
	if f.Severity != "" && e.Severity != f.Severity {
		return false
	}
	if f.Decision != "" && e.Decision != f.Decision {
		return false
	}
	if f.Source != "" && e.Source != f.Source {
		return false
	}
	if !f.From.IsZero() && e.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.Timestamp.After(f.To) {
		return false
	}
	return true
}
