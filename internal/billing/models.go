// Package billing models the downstream billing ledger: invoices, payments,
// and double-entry ledger postings that should mirror the sales side.
package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the billing-side lifecycle of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePartial InvoiceStatus = "partial"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
	InvoiceVoid    InvoiceStatus = "void"
)

// Invoice is a billing record. OrderID is the correlation key back to the
// sales ledger; more than one invoice per order is a legitimate (if
// suspicious) input, not a storage error.
type Invoice struct {
	InvoiceID   string
	OrderID     string
	CustomerID  string
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	TotalAmount decimal.Decimal
	AmountPaid  decimal.Decimal
	AmountDue   decimal.Decimal
	Status      InvoiceStatus
	IssueDate   time.Time
	DueDate     time.Time
}

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "completed"
	PaymentPending   PaymentStatus = "pending"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Payment is money received against an invoice.
type Payment struct {
	PaymentID       string
	InvoiceID       string
	Amount          decimal.Decimal
	Method          string
	PaymentDate     time.Time
	Status          PaymentStatus
	ReferenceNumber string
}

// Account names the ledger accounts postings may touch.
type Account string

const (
	AccountReceivable Account = "accounts_receivable"
	AccountRevenue    Account = "revenue"
	AccountCash       Account = "cash"
	AccountRefunds    Account = "refunds"
)

// LedgerPosting is one side of a double-entry booking. For any transaction
// the summed debits must equal the summed credits.
type LedgerPosting struct {
	EntryID     string
	InvoiceID   string
	PaymentID   string
	Account     Account
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
	PostedDate  time.Time
}
