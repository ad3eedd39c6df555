package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEvents(t *testing.T, store *InMemoryStore) {
	t.Helper()
	base := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	events := []Event{
		{LogID: "e1", Timestamp: base, Type: EventValidationStarted, CorrelationKey: "SO-1", CorrelationID: "run-1", Seq: 1},
		{LogID: "e2", Timestamp: base.Add(time.Second), Type: EventRuleViolation, CorrelationKey: "SO-1", CorrelationID: "run-1", Seq: 2, Severity: "critical"},
		{LogID: "e3", Timestamp: base.Add(2 * time.Second), Type: EventValidationCompleted, CorrelationKey: "SO-1", CorrelationID: "run-1", Seq: 3, Decision: "review"},
		{LogID: "e4", Timestamp: base.Add(3 * time.Second), Type: EventValidationStarted, CorrelationKey: "SO-2", CorrelationID: "run-2", Seq: 1},
	}
	for _, e := range events {
		require.NoError(t, store.Append(context.Background(), e))
	}
}

func TestListByCorrelationSortsBySeq(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	// Append out of causal order; reads must still come back Seq-sorted.
	require.NoError(t, store.Append(ctx, Event{LogID: "e2", CorrelationID: "run-1", Seq: 2}))
	require.NoError(t, store.Append(ctx, Event{LogID: "e3", CorrelationID: "run-1", Seq: 3}))
	require.NoError(t, store.Append(ctx, Event{LogID: "e1", CorrelationID: "run-1", Seq: 1}))

	events, err := store.ListByCorrelation(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	for i, e := range events {
		assert.Equal(t, uint64(i+1), e.Seq)
	}
}

func TestListByTransaction(t *testing.T) {
	store := NewInMemoryStore()
	seedEvents(t, store)

	events, err := store.ListByTransaction(context.Background(), "SO-1")
	require.NoError(t, err)
	assert.Len(t, events, 3)

	events, err = store.ListByTransaction(context.Background(), "SO-404")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestQueryFiltersAndPaginates(t *testing.T) {
	store := NewInMemoryStore()
	seedEvents(t, store)
	ctx := context.Background()

	t.Run("by type", func(t *testing.T) {
		events, total, err := store.Query(ctx, Filter{Type: EventValidationStarted}, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, events, 2)
	})

	t.Run("by severity", func(t *testing.T) {
		events, total, err := store.Query(ctx, Filter{Severity: "critical"}, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, events, 1)
		assert.Equal(t, "e2", events[0].LogID)
	})

	t.Run("timestamp descending", func(t *testing.T) {
		events, total, err := store.Query(ctx, Filter{}, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 4, total)
		require.Len(t, events, 4)
		assert.Equal(t, "e4", events[0].LogID)
		assert.Equal(t, "e1", events[3].LogID)
	})

	t.Run("pagination", func(t *testing.T) {
		events, total, err := store.Query(ctx, Filter{}, 2, 3)
		require.NoError(t, err)
		assert.Equal(t, 4, total)
		require.Len(t, events, 1)

		events, _, err = store.Query(ctx, Filter{}, 5, 3)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}
