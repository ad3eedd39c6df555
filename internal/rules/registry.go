package rules

import (
	"errors"
	"fmt"
)

// ErrDuplicateRule signals a registration with an already-used rule ID.
var ErrDuplicateRule = errors.New("duplicate rule id")

// Registry holds the ordered rule set. It is populated once at startup and
// read-only afterwards: downstream consumers (audit trail, tests) depend on
// evaluation order matching registration order exactly.
type Registry struct {
	rules []Rule
	seen  map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]struct{})}
}

// Register appends a rule, rejecting duplicate IDs.
func (r *Registry) Register(rule Rule) error {
	if _, ok := r.seen[rule.ID]; ok {
		return fmt.Errorf("rule %s: %w", rule.ID, ErrDuplicateRule)
	}
	r.seen[rule.ID] = struct{}{}
	r.rules = append(r.rules, rule)
	return nil
}

// All returns the rules in registration order. The returned slice is a copy;
// callers cannot perturb the registry's ordering.
func (r *Registry) All() []Rule {
	return append([]Rule{}, r.rules...)
}

// ByCategory returns the rules of one category, preserving registration order.
func (r *Registry) ByCategory(category Category) []Rule {
	var out []Rule
	for _, rule := range r.rules {
		if rule.Category == category {
			out = append(out, rule)
		}
	}
	return out
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.rules)
}
