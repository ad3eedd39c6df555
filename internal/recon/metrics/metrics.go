package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the reconciliation module.
type Metrics struct {
	// Validations by resulting classification
	Validations *prometheus.CounterVec

	// Rule violations by rule ID
	RuleViolations *prometheus.CounterVec

	// Single-transaction validation latency
	ValidationDuration prometheus.Histogram

	// Full scan latency
	ScanDuration prometheus.Histogram

	// Correlation keys a scan could not evaluate
	ScanFailures prometheus.Counter
}

// New creates a Metrics instance with all reconciliation metrics registered.
func New() *Metrics {
	return &Metrics{
		Validations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "crosscheck_validations_total",
			Help: "Total validations by resulting risk classification",
		}, []string{"classification"}),

		RuleViolations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "crosscheck_rule_violations_total",
			Help: "Total rule violations by rule ID",
		}, []string{"rule_id"}),

		ValidationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "crosscheck_validation_duration_seconds",
			Help:    "Duration of single-transaction validation including store fetches",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		ScanDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "crosscheck_scan_duration_seconds",
			Help:    "Duration of full ledger scans",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		ScanFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crosscheck_scan_failures_total",
			Help: "Total correlation keys a full scan could not evaluate",
		}),
	}
}

// IncValidation records a completed validation.
func (m *Metrics) IncValidation(classification string) {
	if m != nil {
		m.Validations.WithLabelValues(classification).Inc()
	}
}

// IncRuleViolation records one rule violation.
func (m *Metrics) IncRuleViolation(ruleID string) {
	if m != nil {
		m.RuleViolations.WithLabelValues(ruleID).Inc()
	}
}

// ObserveValidation records single-transaction validation latency.
func (m *Metrics) ObserveValidation(d time.Duration) {
	if m != nil {
		m.ValidationDuration.Observe(d.Seconds())
	}
}

// ObserveScan records full scan latency.
func (m *Metrics) ObserveScan(d time.Duration) {
	if m != nil {
		m.ScanDuration.Observe(d.Seconds())
	}
}

// IncScanFailure records a correlation key a scan could not evaluate.
func (m *Metrics) IncScanFailure() {
	if m != nil {
		m.ScanFailures.Inc()
	}
}
