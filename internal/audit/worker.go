package audit

import (
	"context"
	"log/slog"
	"time"

	"crosscheck/internal/audit/metrics"
)

// Worker consumes failed audit events from the recorder's inbox and retries
// persistence with backoff. It keeps background processing testable without
// wiring queue implementations.
type Worker struct {
	recorder    *Recorder
	logger      *slog.Logger
	metrics     *metrics.Metrics
	maxAttempts int
	backoff     time.Duration
}

// WorkerOption configures the Worker.
type WorkerOption func(*Worker)

// WithWorkerLogger sets a logger for retry outcomes.
func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithWorkerMetrics sets the metrics collector.
func WithWorkerMetrics(m *metrics.Metrics) WorkerOption {
	return func(w *Worker) {
		w.metrics = m
	}
}

// WithBackoff sets the delay between retry attempts.
func WithBackoff(backoff time.Duration) WorkerOption {
	return func(w *Worker) {
		if backoff > 0 {
			w.backoff = backoff
		}
	}
}

// WithMaxAttempts bounds retries per event before it is abandoned.
func WithMaxAttempts(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.maxAttempts = n
		}
	}
}

func NewWorker(recorder *Recorder, opts ...WorkerOption) *Worker {
	w := &Worker{
		recorder:    recorder,
		maxAttempts: 5,
		backoff:     250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run drains the retry inbox until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case item := <-w.recorder.Inbox():
			w.metrics.SetInboxDepth(len(w.recorder.Inbox()))
			w.retry(ctx, item)
		}
	}
}

func (w *Worker) retry(ctx context.Context, item retryItem) {
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		if err := w.recorder.RetryAppend(ctx, item); err == nil {
			w.metrics.IncRetrySuccess()
			return
		} else if w.logger != nil {
			w.logger.WarnContext(ctx, "audit retry failed",
				"log_id", item.event.LogID,
				"attempt", attempt,
				"error", err,
			)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.backoff * time.Duration(attempt)):
		}
	}

	w.metrics.IncDropped()
	if w.logger != nil {
		w.logger.ErrorContext(ctx, "audit event abandoned after retries",
			"log_id", item.event.LogID,
			"event_type", item.event.Type,
			"attempts", w.maxAttempts,
		)
	}
}
