package billing

import "context"

// Store is the read interface the reconciliation engine consumes.
type Store interface {
	// InvoicesForOrder returns all invoices matched to the correlation key,
	// in stable insertion order. Zero matches is not an error.
	InvoicesForOrder(ctx context.Context, orderID string) ([]Invoice, error)

	// PaymentsForInvoice returns all payments recorded against an invoice.
	PaymentsForInvoice(ctx context.Context, invoiceID string) ([]Payment, error)

	// PostingsForInvoice returns all ledger postings tied to an invoice.
	PostingsForInvoice(ctx context.Context, invoiceID string) ([]LedgerPosting, error)

	// ListInvoices returns every invoice, in insertion order. The full scan
	// uses this for ghost-invoice detection.
	ListInvoices(ctx context.Context) ([]Invoice, error)
}
