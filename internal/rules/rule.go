// Package rules holds the validation rule model, the ordered registry, and
// the catalog of concrete reconciliation rules. Rules are pure functions
// over an already-assembled Context: no I/O, no mutation, no hidden clock.
package rules

import (
	"time"

	"crosscheck/internal/billing"
	"crosscheck/internal/sales"
)

// Category groups rules by the kind of discrepancy they detect.
type Category string

const (
	CategoryPricing      Category = "pricing"
	CategoryOrderInvoice Category = "order_invoice"
	CategoryCrossSystem  Category = "cross_system"
)

// Severity ranks how serious a violation is. Weight is derived from it.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Weight returns the fixed scoring weight for a severity.
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 30
	case SeverityHigh:
		return 20
	case SeverityMedium:
		return 10
	case SeverityLow:
		return 5
	}
	return 0
}

// Outcome is the result class of a single rule evaluation.
type Outcome string

const (
	OutcomePass Outcome = "pass"
	OutcomeWarn Outcome = "warn"
	OutcomeFail Outcome = "fail"
)

// Result is what a rule's check function returns. Expected/Actual are
// optional diagnostics rendered to humans, never parsed. Errored marks a
// synthetic result substituted after the check itself failed.
type Result struct {
	Outcome  Outcome
	Message  string
	Expected string
	Actual   string
	Errored  bool
}

// Context is the immutable snapshot a rule evaluates against. It bundles
// one order, its matched invoices (zero or more), and the payments and
// ledger postings tied to the primary invoice. EvaluatedAt is the engine's
// clock so time-sensitive rules stay deterministic under test.
type Context struct {
	Order       sales.Order
	Invoice     *billing.Invoice
	Invoices    []billing.Invoice
	Payments    []billing.Payment
	Postings    []billing.LedgerPosting
	EvaluatedAt time.Time
}

// Rule pairs identity and classification with a pure check function.
type Rule struct {
	ID       string
	Name     string
	Category Category
	Severity Severity
	Check    func(Context) Result
}

// Weight returns the rule's scoring weight, a pure function of severity.
func (r Rule) Weight() int {
	return r.Severity.Weight()
}

// Evaluation pairs a rule with its result for one transaction.
type Evaluation struct {
	Rule   Rule
	Result Result
}

// Violation is a non-pass result enriched with the originating rule's
// identity and weight. Violations feed the risk scoring engine.
type Violation struct {
	RuleID   string
	RuleName string
	Severity Severity
	Message  string
	Expected string
	Actual   string
	Weight   int
}

// Violations extracts the non-pass evaluations in evaluation order.
// Errored results are defects, not business violations, and are skipped.
func Violations(evals []Evaluation) []Violation {
	var out []Violation
	for _, e := range evals {
		if e.Result.Outcome == OutcomePass || e.Result.Errored {
			continue
		}
		out = append(out, Violation{
			RuleID:   e.Rule.ID,
			RuleName: e.Rule.Name,
			Severity: e.Rule.Severity,
			Message:  e.Result.Message,
			Expected: e.Result.Expected,
			Actual:   e.Result.Actual,
			Weight:   e.Rule.Weight(),
		})
	}
	return out
}

func pass(message string) Result {
	return Result{Outcome: OutcomePass, Message: message}
}

func fail(message, expected, actual string) Result {
	return Result{Outcome: OutcomeFail, Message: message, Expected: expected, Actual: actual}
}
