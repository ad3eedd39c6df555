package sales

import (
	"context"
	"fmt"
	"sync"

	"crosscheck/pkg/platform/sentinel"
)

// InMemoryStore keeps orders in memory with stable insertion order so
// paginated listings and full scans are reproducible.
type InMemoryStore struct {
	mu     sync.RWMutex
	orders map[string]Order
	ids    []string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{orders: make(map[string]Order)}
}

// Put inserts or replaces an order. New IDs keep their insertion position.
func (s *InMemoryStore) Put(order Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[order.OrderID]; !ok {
		s.ids = append(s.ids, order.OrderID)
	}
	s.orders[order.OrderID] = order
}

func (s *InMemoryStore) GetOrder(_ context.Context, orderID string) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[orderID]
	if !ok {
		return Order{}, fmt.Errorf("order %s: %w", orderID, sentinel.ErrNotFound)
	}
	return order, nil
}

func (s *InMemoryStore) ListOrders(_ context.Context, page, pageSize int) ([]Order, int, error) {
	if page < 1 || pageSize < 1 {
		return nil, 0, fmt.Errorf("page %d size %d: %w", page, pageSize, sentinel.ErrInvalidState)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.ids)
	start := (page - 1) * pageSize
	if start >= total {
		return []Order{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	out := make([]Order, 0, end-start)
	for _, id := range s.ids[start:end] {
		out = append(out, s.orders[id])
	}
	return out, total, nil
}

// Count returns the number of stored orders.
func (s *InMemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}
