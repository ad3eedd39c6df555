package sales

import "context"

// Store is the read interface the reconciliation engine consumes. Swap with
// a concrete upstream connector without touching the engine.
type Store interface {
	// GetOrder returns the order with the given ID, or a wrapped
	// sentinel.ErrNotFound when it does not exist.
	GetOrder(ctx context.Context, orderID string) (Order, error)

	// ListOrders returns one page of orders in insertion order together
	// with the total order count. Pages are 1-based.
	ListOrders(ctx context.Context, page, pageSize int) ([]Order, int, error)
}
