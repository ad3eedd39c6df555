package billing

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoicesForOrderAccumulates(t *testing.T) {
	store := NewInMemoryStore()
	store.AddInvoice(Invoice{InvoiceID: "INV-1", OrderID: "SO-1"})
	store.AddInvoice(Invoice{InvoiceID: "INV-2", OrderID: "SO-2"})
	store.AddInvoice(Invoice{InvoiceID: "INV-3", OrderID: "SO-1"})

	invoices, err := store.InvoicesForOrder(context.Background(), "SO-1")
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	assert.Equal(t, "INV-1", invoices[0].InvoiceID, "per-order append order is stable")
	assert.Equal(t, "INV-3", invoices[1].InvoiceID)

	none, err := store.InvoicesForOrder(context.Background(), "SO-404")
	require.NoError(t, err)
	assert.Empty(t, none, "unknown order is an empty slice, not an error")
}

func TestPaymentsAndPostingsForInvoice(t *testing.T) {
	store := NewInMemoryStore()
	store.AddPayment(Payment{PaymentID: "PAY-1", InvoiceID: "INV-1", Amount: decimal.RequireFromString("500.00")})
	store.AddPayment(Payment{PaymentID: "PAY-2", InvoiceID: "INV-1", Amount: decimal.RequireFromString("500.00")})
	store.AddPosting(LedgerPosting{EntryID: "LE-1", InvoiceID: "INV-1", Account: AccountReceivable, Debit: decimal.RequireFromString("1000.00")})

	payments, err := store.PaymentsForInvoice(context.Background(), "INV-1")
	require.NoError(t, err)
	assert.Len(t, payments, 2)

	postings, err := store.PostingsForInvoice(context.Background(), "INV-1")
	require.NoError(t, err)
	require.Len(t, postings, 1)
	assert.Equal(t, AccountReceivable, postings[0].Account)
}

func TestListInvoicesReturnsCopy(t *testing.T) {
	store := NewInMemoryStore()
	store.AddInvoice(Invoice{InvoiceID: "INV-1", OrderID: "SO-1"})

	all, err := store.ListInvoices(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)

	all[0].InvoiceID = "mutated"
	again, err := store.ListInvoices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "INV-1", again[0].InvoiceID)
}
