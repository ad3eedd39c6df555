package recon

import (
	"context"
	"fmt"
	"sync"

	"crosscheck/pkg/platform/sentinel"
)

// ResultStore keeps the latest ValidationResult per correlation key so
// statistics and distribution queries do not re-run the engine.
type ResultStore interface {
	Save(ctx context.Context, result ValidationResult) error
	Get(ctx context.Context, correlationKey string) (ValidationResult, error)
	All(ctx context.Context) ([]ValidationResult, error)
}

// InMemoryResultStore is the default, process-local result store.
type InMemoryResultStore struct {
	mu      sync.RWMutex
	results map[string]ValidationResult
	keys    []string
}

func NewInMemoryResultStore() *InMemoryResultStore {
	return &InMemoryResultStore{results: make(map[string]ValidationResult)}
}

func (s *InMemoryResultStore) Save(_ context.Context, result ValidationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[result.CorrelationKey]; !ok {
		s.keys = append(s.keys, result.CorrelationKey)
	}
	s.results[result.CorrelationKey] = result
	return nil
}

func (s *InMemoryResultStore) Get(_ context.Context, correlationKey string) (ValidationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[correlationKey]
	if !ok {
		return ValidationResult{}, fmt.Errorf("result %s: %w", correlationKey, sentinel.ErrNotFound)
	}
	return result, nil
}

func (s *InMemoryResultStore) All(_ context.Context) ([]ValidationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ValidationResult, 0, len(s.keys))
	for _, key := range s.keys {
		out = append(out, s.results[key])
	}
	return out, nil
}
