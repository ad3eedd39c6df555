// Package sales models the upstream sales ledger: the "expected" side of
// every reconciled transaction. The order ID doubles as the correlation key
// that links a sales record to its billing counterparts.
package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApprovalStatus tracks whether a discount on the order has been signed off.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// OrderStatus tracks order fulfillment progress.
type OrderStatus string

const (
	OrderDraft     OrderStatus = "draft"
	OrderConfirmed OrderStatus = "confirmed"
	OrderFulfilled OrderStatus = "fulfilled"
	OrderCancelled OrderStatus = "cancelled"
)

// LineItem is a single product position on an order.
type LineItem struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

// Order is a sales-side transaction record. DiscountPct is a fraction
// (0.15 means 15%), not a percentage.
type Order struct {
	OrderID        string
	OpportunityID  string
	ContactID      string
	LineItems      []LineItem
	Subtotal       decimal.Decimal
	DiscountPct    decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	ApprovalStatus ApprovalStatus
	OrderStatus    OrderStatus
	OrderDate      time.Time
	ApprovedBy     string
	ApprovedAt     *time.Time
}
