package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the audit pipeline.
type Metrics struct {
	// Events accepted by the recorder, by event type
	EventsEmitted *prometheus.CounterVec

	// Synchronous append failures handed to the retry worker
	AppendFailures prometheus.Counter

	// Events recovered by the retry worker
	RetrySuccesses prometheus.Counter

	// Events abandoned after exhausting retries or overflowing the inbox
	EventsDropped prometheus.Counter

	// Current depth of the retry inbox
	InboxDepth prometheus.Gauge
}

// New creates a Metrics instance with all audit pipeline metrics registered.
func New() *Metrics {
	return &Metrics{
		EventsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "crosscheck_audit_events_total",
			Help: "Total audit events accepted by the recorder, by event type",
		}, []string{"event_type"}),

		AppendFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crosscheck_audit_append_failures_total",
			Help: "Total synchronous audit store append failures",
		}),

		RetrySuccesses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crosscheck_audit_retry_successes_total",
			Help: "Total audit events persisted by the retry worker",
		}),

		EventsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crosscheck_audit_events_dropped_total",
			Help: "Total audit events abandoned after retries or inbox overflow",
		}),

		InboxDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "crosscheck_audit_inbox_depth",
			Help: "Current depth of the audit retry inbox",
		}),
	}
}

// IncEmitted records an accepted event.
func (m *Metrics) IncEmitted(eventType string) {
	if m != nil {
		m.EventsEmitted.WithLabelValues(eventType).Inc()
	}
}

// IncAppendFailure records a synchronous append failure.
func (m *Metrics) IncAppendFailure() {
	if m != nil {
		m.AppendFailures.Inc()
	}
}

// IncRetrySuccess records an event recovered by the retry worker.
func (m *Metrics) IncRetrySuccess() {
	if m != nil {
		m.RetrySuccesses.Inc()
	}
}

// IncDropped records an abandoned event.
func (m *Metrics) IncDropped() {
	if m != nil {
		m.EventsDropped.Inc()
	}
}

// SetInboxDepth tracks the retry inbox depth.
func (m *Metrics) SetInboxDepth(depth int) {
	if m != nil {
		m.InboxDepth.Set(float64(depth))
	}
}
