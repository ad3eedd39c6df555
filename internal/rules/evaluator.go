package rules

import (
	"fmt"
	"log/slog"
)

// Evaluator runs every registered rule against a single transaction context.
// One broken rule must never abort the scan of the others: a panic inside a
// check is recovered and substituted with a synthetic warn result.
type Evaluator struct {
	registry *Registry
	logger   *slog.Logger
}

// EvaluatorOption configures the Evaluator.
type EvaluatorOption func(*Evaluator)

// WithLogger sets a logger for rule-defect diagnostics.
func WithLogger(logger *slog.Logger) EvaluatorOption {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

func NewEvaluator(registry *Registry, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{registry: registry}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate returns one Evaluation per registered rule, in registry order.
// The context must already contain everything a rule needs; rules never
// perform I/O.
func (e *Evaluator) Evaluate(ctx Context) []Evaluation {
	ruleSet := e.registry.All()
	evals := make([]Evaluation, 0, len(ruleSet))
	for _, rule := range ruleSet {
		evals = append(evals, Evaluation{Rule: rule, Result: e.safeCheck(rule, ctx)})
	}
	return evals
}

// safeCheck isolates one rule's evaluation. A panic is a defect in the rule,
// not a business violation, so it degrades to a warn with a diagnostic.
func (e *Evaluator) safeCheck(rule Rule, ctx Context) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			if e.logger != nil {
				e.logger.Error("rule evaluation panicked",
					"rule_id", rule.ID,
					"order_id", ctx.Order.OrderID,
					"panic", fmt.Sprint(r),
				)
			}
			result = Result{
				Outcome: OutcomeWarn,
				Message: fmt.Sprintf("rule %s could not be evaluated: %v", rule.ID, r),
				Errored: true,
			}
		}
	}()
	return rule.Check(ctx)
}
