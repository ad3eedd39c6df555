package recon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"crosscheck/internal/audit"
	"crosscheck/internal/billing"
	"crosscheck/internal/recon/metrics"
	"crosscheck/internal/risk"
	"crosscheck/internal/rules"
	"crosscheck/internal/sales"
	dErrors "crosscheck/pkg/domain-errors"
	"crosscheck/pkg/platform/sentinel"
	"crosscheck/pkg/requestcontext"
)

// Service drives reconciliation. Stores and the audit recorder are injected
// at construction; the service itself holds no business state beyond the
// result store, so validations are safe to run concurrently.
type Service struct {
	sales    sales.Store
	billing  billing.Store
	recorder *audit.Recorder

	registry  *rules.Registry
	evaluator *rules.Evaluator
	results   ResultStore

	logger  *slog.Logger
	metrics *metrics.Metrics

	scanConcurrency int
	fetchRetries    int
	retryBackoff    time.Duration
	now             func(context.Context) time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithResultStore swaps the default in-memory result store.
func WithResultStore(store ResultStore) Option {
	return func(s *Service) { s.results = store }
}

// WithRegistry swaps the default rule catalog.
func WithRegistry(registry *rules.Registry) Option {
	return func(s *Service) {
		s.registry = registry
		s.evaluator = rules.NewEvaluator(registry)
	}
}

// WithScanConcurrency bounds the full-scan worker pool.
func WithScanConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.scanConcurrency = n
		}
	}
}

// WithFetchRetry tunes the bounded-retry policy for store fetches.
func WithFetchRetry(retries int, backoff time.Duration) Option {
	return func(s *Service) {
		if retries >= 0 {
			s.fetchRetries = retries
		}
		if backoff > 0 {
			s.retryBackoff = backoff
		}
	}
}

// WithClock overrides the evaluation clock for tests.
func WithClock(clock func(context.Context) time.Time) Option {
	return func(s *Service) { s.now = clock }
}

func NewService(salesStore sales.Store, billingStore billing.Store, recorder *audit.Recorder, opts ...Option) *Service {
	registry := rules.DefaultRegistry()
	s := &Service{
		sales:           salesStore,
		billing:         billingStore,
		recorder:        recorder,
		registry:        registry,
		evaluator:       rules.NewEvaluator(registry),
		results:         NewInMemoryResultStore(),
		scanConcurrency: 8,
		fetchRetries:    2,
		retryBackoff:    100 * time.Millisecond,
		now:             requestcontext.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateTransaction reconciles one sales record against its billing
// counterparts and returns the scored result.
//
// The audit trail for the run is grouped by a fresh correlation ID and is
// causally ordered by sequence number: validation_started, one
// rule_evaluated per rule in registry order (plus rule_violation for
// non-pass outcomes), risk_score_calculated, validation_completed.
func (s *Service) ValidateTransaction(ctx context.Context, correlationKey string) (ValidationResult, error) {
	start := time.Now()

	order, err := s.fetchOrder(ctx, correlationKey)
	if err != nil {
		return ValidationResult{}, err
	}

	ruleCtx, err := s.assembleContext(ctx, order)
	if err != nil {
		return ValidationResult{}, err
	}

	correlationID := uuid.NewString()
	defer s.recorder.EndRun(correlationID)

	s.recorder.Record(ctx, audit.Event{
		Type:           audit.EventValidationStarted,
		CorrelationKey: correlationKey,
		CorrelationID:  correlationID,
	})

	evals := s.evaluator.Evaluate(ruleCtx)
	for _, eval := range evals {
		s.recordRuleResult(ctx, correlationKey, correlationID, eval)
	}

	violations := rules.Violations(evals)
	score := risk.Score(violations)
	classification := risk.Classify(score)

	s.recorder.Record(ctx, audit.Event{
		Type:           audit.EventRiskScoreCalculated,
		CorrelationKey: correlationKey,
		CorrelationID:  correlationID,
		RiskScore:      &score,
		Classification: string(classification),
	})

	result := ValidationResult{
		CorrelationKey: correlationKey,
		RiskScore:      score,
		Classification: classification,
		RulesEvaluated: len(evals),
		Violations:     toRecords(violations),
		ValidatedAt:    ruleCtx.EvaluatedAt,
	}
	for _, eval := range evals {
		switch eval.Result.Outcome {
		case rules.OutcomePass:
			result.RulesPassed++
		case rules.OutcomeWarn:
			result.RulesWarned++
		case rules.OutcomeFail:
			result.RulesFailed++
		}
	}

	if err := s.results.Save(ctx, result); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "result store save failed",
			"correlation_key", correlationKey,
			"error", err,
		)
	}

	s.recorder.Record(ctx, audit.Event{
		Type:           audit.EventValidationCompleted,
		CorrelationKey: correlationKey,
		CorrelationID:  correlationID,
		RiskScore:      &score,
		Classification: string(classification),
		Decision:       decisionFor(classification),
	})

	s.metrics.IncValidation(string(classification))
	for _, v := range violations {
		s.metrics.IncRuleViolation(v.RuleID)
	}
	s.metrics.ObserveValidation(time.Since(start))

	if s.logger != nil {
		s.logger.InfoContext(ctx, "transaction validated",
			"correlation_key", correlationKey,
			"correlation_id", correlationID,
			"risk_score", score,
			"classification", classification,
			"violations", len(violations),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return result, nil
}

// Result returns the stored result for a correlation key, if any.
func (s *Service) Result(ctx context.Context, correlationKey string) (ValidationResult, error) {
	result, err := s.results.Get(ctx, correlationKey)
	if errors.Is(err, sentinel.ErrNotFound) {
		return ValidationResult{}, dErrors.Wrap(dErrors.CodeNotFound,
			fmt.Sprintf("no validation result for %s", correlationKey), err)
	}
	return result, err
}

// fetchOrder resolves the sales record, translating store facts into domain
// errors: absence is NotFound, anything else is retried then surfaced as
// DependencyUnavailable rather than hanging.
func (s *Service) fetchOrder(ctx context.Context, correlationKey string) (sales.Order, error) {
	var lastErr error
	for attempt := 0; attempt <= s.fetchRetries; attempt++ {
		order, err := s.sales.GetOrder(ctx, correlationKey)
		if err == nil {
			return order, nil
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return sales.Order{}, dErrors.Wrap(dErrors.CodeNotFound,
				fmt.Sprintf("sales record %s does not exist", correlationKey), err)
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return sales.Order{}, dErrors.Wrap(dErrors.CodeUnavailable, "sales store fetch cancelled", ctx.Err())
		case <-time.After(s.retryBackoff):
		}
	}
	return sales.Order{}, dErrors.Wrap(dErrors.CodeUnavailable, "sales store unreachable", lastErr)
}

// assembleContext gathers the billing-side records for an order and freezes
// them into the immutable evaluation context. Zero or many invoices are
// legitimate inputs here; the rule set classifies them.
func (s *Service) assembleContext(ctx context.Context, order sales.Order) (rules.Context, error) {
	invoices, err := s.billing.InvoicesForOrder(ctx, order.OrderID)
	if err != nil {
		return rules.Context{}, dErrors.Wrap(dErrors.CodeUnavailable, "billing store unreachable", err)
	}

	ruleCtx := rules.Context{
		Order:       order,
		Invoices:    invoices,
		EvaluatedAt: s.now(ctx),
	}
	if len(invoices) > 0 {
		primary := invoices[0]
		ruleCtx.Invoice = &primary

		payments, err := s.billing.PaymentsForInvoice(ctx, primary.InvoiceID)
		if err != nil {
			return rules.Context{}, dErrors.Wrap(dErrors.CodeUnavailable, "billing store unreachable", err)
		}
		postings, err := s.billing.PostingsForInvoice(ctx, primary.InvoiceID)
		if err != nil {
			return rules.Context{}, dErrors.Wrap(dErrors.CodeUnavailable, "billing store unreachable", err)
		}
		ruleCtx.Payments = payments
		ruleCtx.Postings = postings
	}
	return ruleCtx, nil
}

func (s *Service) recordRuleResult(ctx context.Context, correlationKey, correlationID string, eval rules.Evaluation) {
	eventType := audit.EventRuleEvaluated
	if eval.Result.Outcome != rules.OutcomePass {
		eventType = audit.EventRuleViolation
	}
	s.recorder.Record(ctx, audit.Event{
		Type:           eventType,
		CorrelationKey: correlationKey,
		CorrelationID:  correlationID,
		RuleID:         eval.Rule.ID,
		RuleName:       eval.Rule.Name,
		Severity:       string(eval.Rule.Severity),
		Decision:       string(eval.Result.Outcome),
		Message:        eval.Result.Message,
	})
	if eval.Result.Errored {
		s.recorder.Record(ctx, audit.Event{
			Type:           audit.EventSystemError,
			CorrelationKey: correlationKey,
			CorrelationID:  correlationID,
			RuleID:         eval.Rule.ID,
			RuleName:       eval.Rule.Name,
			Severity:       string(rules.SeverityMedium),
			Message:        eval.Result.Message,
		})
	}
}

func decisionFor(classification risk.Classification) string {
	if classification == risk.ClassificationSafe {
		return "pass"
	}
	return "review"
}
