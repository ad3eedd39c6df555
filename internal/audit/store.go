package audit

import "context"

// Appender is the minimal write capability of an audit sink. Forwarders
// (Kafka) implement only this; full stores also serve reads.
type Appender interface {
	Append(ctx context.Context, event Event) error
}

// Store persists audit events and serves trail reconstruction queries.
type Store interface {
	Appender

	// ListByCorrelation returns one run's events sorted by Seq, which is
	// causal order regardless of physical write interleaving.
	ListByCorrelation(ctx context.Context, correlationID string) ([]Event, error)

	// ListByTransaction returns every event for a correlation key across
	// all of its validation runs, in append order.
	ListByTransaction(ctx context.Context, correlationKey string) ([]Event, error)

	// Query returns a filtered page sorted by timestamp descending, plus
	// the total match count. Pages are 1-based.
	Query(ctx context.Context, filter Filter, page, pageSize int) ([]Event, int, error)

	// All returns every stored event in append order.
	All(ctx context.Context) ([]Event, error)
}
