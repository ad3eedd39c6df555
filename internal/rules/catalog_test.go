package rules

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosscheck/internal/billing"
	"crosscheck/internal/sales"
)

var evaluatedAt = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// cleanOrder builds an order that violates nothing on its own.
func cleanOrder() sales.Order {
	return sales.Order{
		OrderID: "SO-1001",
		LineItems: []sales.LineItem{
			{ProductID: "PRD-1", ProductName: "Widget", Quantity: 10, UnitPrice: d("100.00"), TotalPrice: d("1000.00")},
		},
		Subtotal:       d("1000.00"),
		DiscountPct:    decimal.Zero,
		TotalAmount:    d("1000.00"),
		ApprovalStatus: sales.ApprovalApproved,
		OrderStatus:    sales.OrderConfirmed,
		OrderDate:      evaluatedAt.AddDate(0, -1, 0),
	}
}

// matchingInvoice mirrors cleanOrder on the billing side.
func matchingInvoice(orderID string) billing.Invoice {
	return billing.Invoice{
		InvoiceID:   "INV-2001",
		OrderID:     orderID,
		TotalAmount: d("1000.00"),
		Status:      billing.InvoiceSent,
		IssueDate:   evaluatedAt.AddDate(0, -1, 0),
		DueDate:     evaluatedAt.AddDate(0, 0, 14),
	}
}

func contextFor(order sales.Order, invoices ...billing.Invoice) Context {
	ctx := Context{Order: order, Invoices: invoices, EvaluatedAt: evaluatedAt}
	if len(invoices) > 0 {
		ctx.Invoice = &invoices[0]
	}
	return ctx
}

func findRule(t *testing.T, id string) Rule {
	t.Helper()
	for _, rule := range DefaultRegistry().All() {
		if rule.ID == id {
			return rule
		}
	}
	t.Fatalf("rule %s not in catalog", id)
	return Rule{}
}

func TestCleanTransactionPassesEverything(t *testing.T) {
	ctx := contextFor(cleanOrder(), matchingInvoice("SO-1001"))
	for _, rule := range DefaultRegistry().All() {
		result := rule.Check(ctx)
		assert.Equal(t, OutcomePass, result.Outcome, "rule %s: %s", rule.ID, result.Message)
	}
}

func TestDiscountThreshold(t *testing.T) {
	rule := findRule(t, "PRC-001")

	t.Run("unapproved discount above threshold fails", func(t *testing.T) {
		order := cleanOrder()
		order.DiscountPct = d("0.30")
		order.ApprovalStatus = sales.ApprovalPending

		result := rule.Check(contextFor(order, matchingInvoice(order.OrderID)))
		require.Equal(t, OutcomeFail, result.Outcome)
		assert.Equal(t, "approved", result.Expected)
		assert.Equal(t, "pending", result.Actual)
		assert.Contains(t, result.Message, "30.00%")
	})

	t.Run("approved discount above threshold passes", func(t *testing.T) {
		order := cleanOrder()
		order.DiscountPct = d("0.30")
		order.ApprovalStatus = sales.ApprovalApproved

		result := rule.Check(contextFor(order, matchingInvoice(order.OrderID)))
		assert.Equal(t, OutcomePass, result.Outcome)
	})

	t.Run("discount at threshold passes", func(t *testing.T) {
		order := cleanOrder()
		order.DiscountPct = d("0.15")
		order.ApprovalStatus = sales.ApprovalPending

		result := rule.Check(contextFor(order, matchingInvoice(order.OrderID)))
		assert.Equal(t, OutcomePass, result.Outcome)
	})
}

func TestAmountMatching(t *testing.T) {
	rule := findRule(t, "OIC-002")

	t.Run("mismatch beyond one cent fails with diagnostics", func(t *testing.T) {
		inv := matchingInvoice("SO-1001")
		inv.TotalAmount = d("850.00")

		result := rule.Check(contextFor(cleanOrder(), inv))
		require.Equal(t, OutcomeFail, result.Outcome)
		assert.Equal(t, "1000.00", result.Expected)
		assert.Equal(t, "850.00", result.Actual)
	})

	t.Run("difference within one cent passes", func(t *testing.T) {
		inv := matchingInvoice("SO-1001")
		inv.TotalAmount = d("1000.01")

		result := rule.Check(contextFor(cleanOrder(), inv))
		assert.Equal(t, OutcomePass, result.Outcome)
	})
}

func TestPriceConsistencyDrift(t *testing.T) {
	rule := findRule(t, "PRC-003")

	t.Run("drift above one percent fails", func(t *testing.T) {
		inv := matchingInvoice("SO-1001")
		inv.TotalAmount = d("850.00")

		result := rule.Check(contextFor(cleanOrder(), inv))
		require.Equal(t, OutcomeFail, result.Outcome)
		assert.Contains(t, result.Message, "15.00%")
	})

	t.Run("drift within one percent passes", func(t *testing.T) {
		inv := matchingInvoice("SO-1001")
		inv.TotalAmount = d("995.00")

		result := rule.Check(contextFor(cleanOrder(), inv))
		assert.Equal(t, OutcomePass, result.Outcome)
	})

	t.Run("zero order total is not evaluable", func(t *testing.T) {
		order := cleanOrder()
		order.TotalAmount = decimal.Zero

		result := rule.Check(contextFor(order, matchingInvoice(order.OrderID)))
		assert.Equal(t, OutcomePass, result.Outcome)
	})
}

func TestMissingInvoiceInteraction(t *testing.T) {
	// Only the mapping rule may fail when no invoice matched; every rule
	// that needs billing data must report a neutral outcome, not panic.
	ctx := contextFor(cleanOrder())

	for _, rule := range DefaultRegistry().All() {
		result := rule.Check(ctx)
		if rule.ID == "OIC-001" {
			require.Equal(t, OutcomeFail, result.Outcome)
			assert.Equal(t, ">=1 invoice", result.Expected)
			continue
		}
		assert.Equal(t, OutcomePass, result.Outcome, "rule %s must be neutral without an invoice", rule.ID)
	}
}

func TestDuplicateInvoice(t *testing.T) {
	rule := findRule(t, "OIC-003")

	t.Run("fires once regardless of extra invoice count", func(t *testing.T) {
		second := matchingInvoice("SO-1001")
		second.InvoiceID = "INV-2002"
		third := matchingInvoice("SO-1001")
		third.InvoiceID = "INV-2003"

		for _, invoices := range [][]billing.Invoice{
			{matchingInvoice("SO-1001"), second},
			{matchingInvoice("SO-1001"), second, third},
		} {
			result := rule.Check(contextFor(cleanOrder(), invoices...))
			require.Equal(t, OutcomeFail, result.Outcome)
		}
	})

	t.Run("single invoice passes", func(t *testing.T) {
		result := rule.Check(contextFor(cleanOrder(), matchingInvoice("SO-1001")))
		assert.Equal(t, OutcomePass, result.Outcome)
	})
}

func TestBulkPriceValidation(t *testing.T) {
	rule := findRule(t, "PRC-004")

	t.Run("bulk quantity without discount fails", func(t *testing.T) {
		order := cleanOrder()
		order.LineItems[0].Quantity = 150

		result := rule.Check(contextFor(order, matchingInvoice(order.OrderID)))
		assert.Equal(t, OutcomeFail, result.Outcome)
	})

	t.Run("bulk quantity with discount passes", func(t *testing.T) {
		order := cleanOrder()
		order.LineItems[0].Quantity = 150
		order.DiscountPct = d("0.05")

		result := rule.Check(contextFor(order, matchingInvoice(order.OrderID)))
		assert.Equal(t, OutcomePass, result.Outcome)
	})
}

func TestPaymentCompleteness(t *testing.T) {
	rule := findRule(t, "OIC-004")

	paidInvoice := func() billing.Invoice {
		inv := matchingInvoice("SO-1001")
		inv.Status = billing.InvoicePaid
		return inv
	}

	t.Run("paid invoice with short completed payments fails", func(t *testing.T) {
		ctx := contextFor(cleanOrder(), paidInvoice())
		ctx.Payments = []billing.Payment{
			{PaymentID: "PAY-1", Amount: d("400.00"), Status: billing.PaymentCompleted},
			{PaymentID: "PAY-2", Amount: d("600.00"), Status: billing.PaymentPending},
		}

		result := rule.Check(ctx)
		require.Equal(t, OutcomeFail, result.Outcome)
		assert.Equal(t, "1000.00", result.Expected)
		assert.Equal(t, "400.00", result.Actual)
	})

	t.Run("fully covered invoice passes", func(t *testing.T) {
		ctx := contextFor(cleanOrder(), paidInvoice())
		ctx.Payments = []billing.Payment{
			{PaymentID: "PAY-1", Amount: d("1000.00"), Status: billing.PaymentCompleted},
		}

		result := rule.Check(ctx)
		assert.Equal(t, OutcomePass, result.Outcome)
	})

	t.Run("unpaid invoice not checked", func(t *testing.T) {
		result := rule.Check(contextFor(cleanOrder(), matchingInvoice("SO-1001")))
		assert.Equal(t, OutcomePass, result.Outcome)
	})
}

func TestStaleInvoice(t *testing.T) {
	rule := findRule(t, "OIC-005")

	t.Run("open invoice past the window fails", func(t *testing.T) {
		inv := matchingInvoice("SO-1001")
		inv.Status = billing.InvoiceOverdue
		inv.DueDate = evaluatedAt.AddDate(0, 0, -61)

		result := rule.Check(contextFor(cleanOrder(), inv))
		require.Equal(t, OutcomeFail, result.Outcome)
		assert.Equal(t, "61 days", result.Actual)
	})

	t.Run("open invoice inside the window passes", func(t *testing.T) {
		inv := matchingInvoice("SO-1001")
		inv.Status = billing.InvoiceOverdue
		inv.DueDate = evaluatedAt.AddDate(0, 0, -60)

		result := rule.Check(contextFor(cleanOrder(), inv))
		assert.Equal(t, OutcomePass, result.Outcome)
	})

	t.Run("settled invoice never stale", func(t *testing.T) {
		inv := matchingInvoice("SO-1001")
		inv.Status = billing.InvoicePaid
		inv.DueDate = evaluatedAt.AddDate(0, 0, -200)

		result := rule.Check(contextFor(cleanOrder(), inv))
		assert.Equal(t, OutcomePass, result.Outcome)
	})
}

func TestStatusSynchronization(t *testing.T) {
	rule := findRule(t, "CSI-002")

	order := cleanOrder()
	order.OrderStatus = sales.OrderFulfilled
	inv := matchingInvoice(order.OrderID)
	inv.Status = billing.InvoiceOverdue

	result := rule.Check(contextFor(order, inv))
	require.Equal(t, OutcomeFail, result.Outcome)
	assert.Equal(t, "overdue", result.Actual)

	inv.Status = billing.InvoicePaid
	result = rule.Check(contextFor(order, inv))
	assert.Equal(t, OutcomePass, result.Outcome)
}

func TestLedgerBalance(t *testing.T) {
	rule := findRule(t, "CSI-003")

	t.Run("fails if and only if debits differ from credits", func(t *testing.T) {
		ctx := contextFor(cleanOrder(), matchingInvoice("SO-1001"))
		ctx.Postings = []billing.LedgerPosting{
			{EntryID: "LE-1", Account: billing.AccountReceivable, Debit: d("1000.00")},
			{EntryID: "LE-2", Account: billing.AccountRevenue, Credit: d("900.00")},
		}
		require.Equal(t, OutcomeFail, rule.Check(ctx).Outcome)

		ctx.Postings[1].Credit = d("1000.00")
		assert.Equal(t, OutcomePass, rule.Check(ctx).Outcome)
	})

	t.Run("imbalance within one cent passes", func(t *testing.T) {
		ctx := contextFor(cleanOrder(), matchingInvoice("SO-1001"))
		ctx.Postings = []billing.LedgerPosting{
			{EntryID: "LE-1", Account: billing.AccountReceivable, Debit: d("1000.00")},
			{EntryID: "LE-2", Account: billing.AccountRevenue, Credit: d("999.99")},
		}
		assert.Equal(t, OutcomePass, rule.Check(ctx).Outcome)
	})

	t.Run("no postings is not evaluable", func(t *testing.T) {
		ctx := contextFor(cleanOrder(), matchingInvoice("SO-1001"))
		assert.Equal(t, OutcomePass, rule.Check(ctx).Outcome)
	})
}
