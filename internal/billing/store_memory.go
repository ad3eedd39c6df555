package billing

import (
	"context"
	"sync"
)

// InMemoryStore keeps billing records in memory with stable per-key order.
type InMemoryStore struct {
	mu              sync.RWMutex
	invoices        []Invoice
	invoicesByOrder map[string][]Invoice
	paymentsByInv   map[string][]Payment
	postingsByInv   map[string][]LedgerPosting
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		invoicesByOrder: make(map[string][]Invoice),
		paymentsByInv:   make(map[string][]Payment),
		postingsByInv:   make(map[string][]LedgerPosting),
	}
}

// AddInvoice appends an invoice; repeated order IDs accumulate.
func (s *InMemoryStore) AddInvoice(inv Invoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices = append(s.invoices, inv)
	s.invoicesByOrder[inv.OrderID] = append(s.invoicesByOrder[inv.OrderID], inv)
}

// AddPayment appends a payment against its invoice.
func (s *InMemoryStore) AddPayment(p Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paymentsByInv[p.InvoiceID] = append(s.paymentsByInv[p.InvoiceID], p)
}

// AddPosting appends a ledger posting against its invoice.
func (s *InMemoryStore) AddPosting(e LedgerPosting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postingsByInv[e.InvoiceID] = append(s.postingsByInv[e.InvoiceID], e)
}

func (s *InMemoryStore) InvoicesForOrder(_ context.Context, orderID string) ([]Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Invoice{}, s.invoicesByOrder[orderID]...), nil
}

func (s *InMemoryStore) PaymentsForInvoice(_ context.Context, invoiceID string) ([]Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Payment{}, s.paymentsByInv[invoiceID]...), nil
}

func (s *InMemoryStore) PostingsForInvoice(_ context.Context, invoiceID string) ([]LedgerPosting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]LedgerPosting{}, s.postingsByInv[invoiceID]...), nil
}

func (s *InMemoryStore) ListInvoices(_ context.Context) ([]Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Invoice{}, s.invoices...), nil
}
