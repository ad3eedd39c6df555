package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"crosscheck/internal/audit/metrics"
)

// DefaultSource tags events emitted by the reconciliation engine.
const DefaultSource = "reconciliation_engine"

// Recorder is the engine's entry point into the audit trail. It assigns log
// IDs, timestamps, and per-correlation sequence numbers, then appends
// through the store and any extra forwarders.
//
// Recording never fails the caller: a failed append is logged, counted, and
// handed to the retry worker. The validation path stays deliverable even
// when the audit sink is down.
type Recorder struct {
	store      Store
	forwarders []Appender
	logger     *slog.Logger
	metrics    *metrics.Metrics
	clock      func() time.Time

	seqMu sync.Mutex
	seqs  map[string]uint64

	inbox chan retryItem
}

// retryItem pairs a failed event with the sink that rejected it, so retries
// go back to that sink. Re-appending a forwarder failure to the store would
// duplicate the canonical trail and lose the forwarded copy.
type retryItem struct {
	event Event
	sink  Appender
}

// RecorderOption configures the Recorder.
type RecorderOption func(*Recorder)

// WithForwarders adds best-effort secondary sinks (e.g. a Kafka topic).
func WithForwarders(forwarders ...Appender) RecorderOption {
	return func(r *Recorder) {
		r.forwarders = append(r.forwarders, forwarders...)
	}
}

// WithLogger sets a logger for append failures.
func WithLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) RecorderOption {
	return func(r *Recorder) {
		r.metrics = m
	}
}

// WithClock overrides the timestamp source for tests.
func WithClock(clock func() time.Time) RecorderOption {
	return func(r *Recorder) {
		r.clock = clock
	}
}

// WithRetryBuffer sizes the retry inbox consumed by the Worker.
func WithRetryBuffer(size int) RecorderOption {
	return func(r *Recorder) {
		if size > 0 {
			r.inbox = make(chan retryItem, size)
		}
	}
}

func NewRecorder(store Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store: store,
		clock: time.Now,
		seqs:  make(map[string]uint64),
		inbox: make(chan retryItem, 1024),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record fills in event identity and ordering fields, persists the event,
// and returns the assigned log ID. Failures are queued for retry, never
// surfaced to the validation path.
func (r *Recorder) Record(ctx context.Context, event Event) string {
	if event.LogID == "" {
		event.LogID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = r.clock()
	}
	if event.Source == "" {
		event.Source = DefaultSource
	}
	if event.CorrelationID != "" {
		event.Seq = r.nextSeq(event.CorrelationID)
	}

	r.metrics.IncEmitted(string(event.Type))

	if err := r.store.Append(ctx, event); err != nil {
		r.metrics.IncAppendFailure()
		if r.logger != nil {
			r.logger.ErrorContext(ctx, "audit append failed, queuing for retry",
				"log_id", event.LogID,
				"event_type", event.Type,
				"error", err,
			)
		}
		r.enqueueRetry(ctx, event, r.store)
		return event.LogID
	}

	for _, fwd := range r.forwarders {
		if err := fwd.Append(ctx, event); err != nil {
			r.metrics.IncAppendFailure()
			if r.logger != nil {
				r.logger.ErrorContext(ctx, "audit forward failed, queuing for retry",
					"log_id", event.LogID,
					"event_type", event.Type,
					"error", err,
				)
			}
			r.enqueueRetry(ctx, event, fwd)
		}
	}
	return event.LogID
}

// EndRun releases the sequence counter for a finished validation run so the
// per-correlation map does not grow without bound across long scans.
func (r *Recorder) EndRun(correlationID string) {
	r.seqMu.Lock()
	delete(r.seqs, correlationID)
	r.seqMu.Unlock()
}

// Trail returns one run's events in causal (Seq) order.
func (r *Recorder) Trail(ctx context.Context, correlationID string) ([]Event, error) {
	return r.store.ListByCorrelation(ctx, correlationID)
}

// ForTransaction returns every event recorded for a correlation key.
func (r *Recorder) ForTransaction(ctx context.Context, correlationKey string) ([]Event, error) {
	return r.store.ListByTransaction(ctx, correlationKey)
}

// Query returns a filtered, paginated slice of the trail.
func (r *Recorder) Query(ctx context.Context, filter Filter, page, pageSize int) ([]Event, int, error) {
	return r.store.Query(ctx, filter, page, pageSize)
}

// Summarize aggregates the whole stored trail.
func (r *Recorder) Summarize(ctx context.Context) (Summary, error) {
	events, err := r.store.All(ctx)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		TotalEvents:      len(events),
		EventsByType:     make(map[EventType]int),
		EventsBySeverity: make(map[string]int),
		EventsByDecision: make(map[string]int),
	}
	for _, e := range events {
		summary.EventsByType[e.Type]++
		if e.Severity != "" {
			summary.EventsBySeverity[e.Severity]++
		}
		if e.Decision != "" {
			summary.EventsByDecision[e.Decision]++
		}
		ts := e.Timestamp
		if summary.Earliest == nil || ts.Before(*summary.Earliest) {
			summary.Earliest = &ts
		}
		if summary.Latest == nil || ts.After(*summary.Latest) {
			summary.Latest = &ts
		}
	}
	return summary, nil
}

// Inbox exposes the retry channel for the Worker.
func (r *Recorder) Inbox() <-chan retryItem {
	return r.inbox
}

// RetryAppend re-attempts a previously failed append against the sink that
// rejected it.
func (r *Recorder) RetryAppend(ctx context.Context, item retryItem) error {
	return item.sink.Append(ctx, item.event)
}

func (r *Recorder) nextSeq(correlationID string) uint64 {
	r.seqMu.Lock()
	defer r.seqMu.Unlock()
	r.seqs[correlationID]++
	return r.seqs[correlationID]
}

// enqueueRetry hands an event to the retry worker without blocking the
// validation path. Overflow is counted and logged, never silent.
func (r *Recorder) enqueueRetry(ctx context.Context, event Event, sink Appender) {
	select {
	case r.inbox <- retryItem{event: event, sink: sink}:
		r.metrics.SetInboxDepth(len(r.inbox))
	default:
		r.metrics.IncDropped()
		if r.logger != nil {
			r.logger.ErrorContext(ctx, "audit retry inbox full, event dropped",
				"log_id", event.LogID,
				"event_type", event.Type,
			)
		}
	}
}
