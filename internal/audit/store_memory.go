package audit

import (
	"context"
	"sort"
	"sync"
)

// InMemoryStore keeps events in memory with per-key indexes. The default
// store for tests and single-process deployments.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
	byCorr map[string][]Event
	byKey  map[string][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byCorr: make(map[string][]Event),
		byKey:  make(map[string][]Event),
	}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if event.CorrelationID != "" {
		s.byCorr[event.CorrelationID] = append(s.byCorr[event.CorrelationID], event)
	}
	if event.CorrelationKey != "" {
		s.byKey[event.CorrelationKey] = append(s.byKey[event.CorrelationKey], event)
	}
	return nil
}

func (s *InMemoryStore) ListByCorrelation(_ context.Context, correlationID string) ([]Event, error) {
	s.mu.RLock()
	out := append([]Event{}, s.byCorr[correlationID]...)
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (s *InMemoryStore) ListByTransaction(_ context.Context, correlationKey string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.byKey[correlationKey]...), nil
}

func (s *InMemoryStore) Query(_ context.Context, filter Filter, page, pageSize int) ([]Event, int, error) {
	s.mu.RLock()
	var matched []Event
	for _, e := range s.events {
		if filter.Matches(e) {
			matched = append(matched, e)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	total := len(matched)
	if page < 1 || pageSize < 1 {
		return []Event{}, total, nil
	}
	start := (page - 1) * pageSize
	if start >= total {
		return []Event{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *InMemoryStore) All(_ context.Context) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events...), nil
}
