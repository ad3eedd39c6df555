package rules

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Tolerances and thresholds shared by the catalog. Money comparisons use a
// one-cent tolerance; relative drift uses 1%.
var (
	centTolerance     = decimal.New(1, -2)  // $0.01
	driftTolerance    = decimal.New(1, -2)  // 1% relative
	discountThreshold = decimal.New(15, -2) // 15% discount needs approval
	marginFloor       = decimal.New(10, -2) // 10% minimum margin
	assumedCostRatio  = decimal.New(90, -2) // cost fallback when no cost data
	hundred           = decimal.New(100, 0)
)

const stalenessDays = 60

// DefaultRegistry returns the full reconciliation rule catalog in its fixed
// registration order: pricing integrity, order/invoice consistency, then
// cross-system integrity.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, rule := range []Rule{
		discountThresholdRule(),
		marginProtectionRule(),
		priceConsistencyRule(),
		bulkPriceRule(),
		orderInvoiceMappingRule(),
		amountMatchingRule(),
		duplicateInvoiceRule(),
		paymentCompletenessRule(),
		staleInvoiceRule(),
		ghostInvoiceRule(),
		statusSynchronizationRule(),
		ledgerBalanceRule(),
	} {
		if err := r.Register(rule); err != nil {
			// The static catalog registering twice is a programmer error.
			panic(err)
		}
	}
	return r
}

// ---------------------------------------------------------------------------
// Pricing integrity
// ---------------------------------------------------------------------------

func discountThresholdRule() Rule {
	return Rule{
		ID:       "PRC-001",
		Name:     "Discount Threshold",
		Category: CategoryPricing,
		Severity: SeverityCritical,
		Check: func(ctx Context) Result {
			order := ctx.Order
			if order.DiscountPct.GreaterThan(discountThreshold) && order.ApprovalStatus != "approved" {
				return fail(
					fmt.Sprintf("discount %s exceeds 15%% threshold without approval (status: %s)",
						percent(order.DiscountPct), order.ApprovalStatus),
					"approved",
					string(order.ApprovalStatus),
				)
			}
			return pass("discount within threshold or approved")
		},
	}
}

func marginProtectionRule() Rule {
	return Rule{
		ID:       "PRC-002",
		Name:     "Margin Protection",
		Category: CategoryPricing,
		Severity: SeverityHigh,
		Check: func(ctx Context) Result {
			for _, item := range ctx.Order.LineItems {
				// Assumed cost = 90% of unit price when cost data is absent.
				margin := decimal.Zero
				if !item.UnitPrice.IsZero() {
					assumedCost := item.UnitPrice.Mul(assumedCostRatio)
					margin = item.UnitPrice.Sub(assumedCost).Div(item.UnitPrice)
				}
				if margin.LessThan(marginFloor) {
					return fail(
						fmt.Sprintf("low margin detected on product %s: margin %s", item.ProductID, percent(margin)),
						">=10%",
						percent(margin),
					)
				}
			}
			return pass("margins above floor")
		},
	}
}

func priceConsistencyRule() Rule {
	return Rule{
		ID:       "PRC-003",
		Name:     "Price Consistency",
		Category: CategoryPricing,
		Severity: SeverityCritical,
		Check: func(ctx Context) Result {
			if ctx.Invoice == nil {
				// OIC-001 owns the missing-invoice condition.
				return pass("no invoice matched; drift not evaluable")
			}
			orderTotal := ctx.Order.TotalAmount
			if orderTotal.IsZero() {
				return pass("zero order total; drift not evaluable")
			}
			invoiceTotal := ctx.Invoice.TotalAmount
			drift := orderTotal.Sub(invoiceTotal).Abs().Div(orderTotal)
			if drift.GreaterThan(driftTolerance) {
				return fail(
					fmt.Sprintf("price drift of %s between order (%s) and invoice (%s)",
						percent(drift), money(orderTotal), money(invoiceTotal)),
					money(orderTotal),
					money(invoiceTotal),
				)
			}
			return pass("order and invoice totals within drift tolerance")
		},
	}
}

func bulkPriceRule() Rule {
	return Rule{
		ID:       "PRC-004",
		Name:     "Bulk Price Validation",
		Category: CategoryPricing,
		Severity: SeverityMedium,
		Check: func(ctx Context) Result {
			for _, item := range ctx.Order.LineItems {
				if item.Quantity > 100 && ctx.Order.DiscountPct.IsZero() {
					return fail(
						fmt.Sprintf("bulk order (%d units of %s) has no bulk discount applied",
							item.Quantity, item.ProductID),
						"discount > 0%",
						"0%",
					)
				}
			}
			return pass("bulk quantities carry a discount")
		},
	}
}

// ---------------------------------------------------------------------------
// Order/invoice consistency
// ---------------------------------------------------------------------------

func orderInvoiceMappingRule() Rule {
	return Rule{
		ID:       "OIC-001",
		Name:     "Order-Invoice Mapping",
		Category: CategoryOrderInvoice,
		Severity: SeverityCritical,
		Check: func(ctx Context) Result {
			if len(ctx.Invoices) == 0 {
				return fail(
					fmt.Sprintf("order %s has no matching invoice in the billing system", ctx.Order.OrderID),
					">=1 invoice",
					"0",
				)
			}
			return pass("at least one invoice matched")
		},
	}
}

func amountMatchingRule() Rule {
	return Rule{
		ID:       "OIC-002",
		Name:     "Amount Matching",
		Category: CategoryOrderInvoice,
		Severity: SeverityCritical,
		Check: func(ctx Context) Result {
			if ctx.Invoice == nil {
				return pass("no invoice matched; amounts not comparable")
			}
			diff := ctx.Order.TotalAmount.Sub(ctx.Invoice.TotalAmount).Abs()
			if diff.GreaterThan(centTolerance) {
				return fail(
					fmt.Sprintf("amount mismatch: order=%s, invoice=%s (diff=%s)",
						money(ctx.Order.TotalAmount), money(ctx.Invoice.TotalAmount), money(diff)),
					money(ctx.Order.TotalAmount),
					money(ctx.Invoice.TotalAmount),
				)
			}
			return pass("order and invoice totals match")
		},
	}
}

func duplicateInvoiceRule() Rule {
	return Rule{
		ID:       "OIC-003",
		Name:     "Duplicate Invoice",
		Category: CategoryOrderInvoice,
		Severity: SeverityHigh,
		Check: func(ctx Context) Result {
			if len(ctx.Invoices) > 1 {
				ids := make([]string, len(ctx.Invoices))
				for i, inv := range ctx.Invoices {
					ids[i] = inv.InvoiceID
				}
				return fail(
					fmt.Sprintf("order %s has %d invoices: [%s]",
						ctx.Order.OrderID, len(ctx.Invoices), strings.Join(ids, ", ")),
					"1",
					fmt.Sprintf("%d", len(ctx.Invoices)),
				)
			}
			return pass("at most one invoice matched")
		},
	}
}

func paymentCompletenessRule() Rule {
	return Rule{
		ID:       "OIC-004",
		Name:     "Payment Completeness",
		Category: CategoryOrderInvoice,
		Severity: SeverityHigh,
		Check: func(ctx Context) Result {
			if ctx.Invoice == nil {
				return pass("no invoice matched; payments not comparable")
			}
			if ctx.Invoice.Status != "paid" {
				return pass("invoice not marked paid")
			}
			totalPaid := decimal.Zero
			for _, p := range ctx.Payments {
				if p.Status == "completed" {
					totalPaid = totalPaid.Add(p.Amount)
				}
			}
			if totalPaid.LessThan(ctx.Invoice.TotalAmount) {
				return fail(
					fmt.Sprintf("invoice %s marked paid but completed payments sum (%s) < total (%s)",
						ctx.Invoice.InvoiceID, money(totalPaid), money(ctx.Invoice.TotalAmount)),
					money(ctx.Invoice.TotalAmount),
					money(totalPaid),
				)
			}
			return pass("payments cover the invoice total")
		},
	}
}

func staleInvoiceRule() Rule {
	return Rule{
		ID:       "OIC-005",
		Name:     "Stale Invoice",
		Category: CategoryOrderInvoice,
		Severity: SeverityMedium,
		Check: func(ctx Context) Result {
			if ctx.Invoice == nil {
				return pass("no invoice matched; staleness not evaluable")
			}
			if ctx.Invoice.Status == "paid" || ctx.Invoice.Status == "void" {
				return pass("invoice settled or voided")
			}
			daysPast := int(ctx.EvaluatedAt.Sub(ctx.Invoice.DueDate).Hours() / 24)
			if daysPast > stalenessDays {
				return fail(
					fmt.Sprintf("invoice %s is %d days past due date", ctx.Invoice.InvoiceID, daysPast),
					"<= 60 days",
					fmt.Sprintf("%d days", daysPast),
				)
			}
			return pass("invoice within payment window")
		},
	}
}

// ---------------------------------------------------------------------------
// Cross-system integrity
// ---------------------------------------------------------------------------

// ghostInvoiceRule is a placeholder in per-order evaluation: starting from an
// order, a billing record with no matching order is unreachable. The full
// scan detects ghost invoices externally by walking every invoice and
// attaching a CSI-001 violation to a synthetic result.
func ghostInvoiceRule() Rule {
	return Rule{
		ID:       "CSI-001",
		Name:     "Ghost Invoice",
		Category: CategoryCrossSystem,
		Severity: SeverityCritical,
		Check: func(Context) Result {
			return pass("evaluated externally during full scan")
		},
	}
}

func statusSynchronizationRule() Rule {
	return Rule{
		ID:       "CSI-002",
		Name:     "Status Synchronization",
		Category: CategoryCrossSystem,
		Severity: SeverityHigh,
		Check: func(ctx Context) Result {
			if ctx.Invoice == nil {
				return pass("no invoice matched; statuses not comparable")
			}
			if ctx.Order.OrderStatus == "fulfilled" && ctx.Invoice.Status == "overdue" {
				return fail(
					fmt.Sprintf("order is fulfilled but invoice %s is overdue", ctx.Invoice.InvoiceID),
					"paid or sent",
					"overdue",
				)
			}
			return pass("order and invoice statuses consistent")
		},
	}
}

func ledgerBalanceRule() Rule {
	return Rule{
		ID:       "CSI-003",
		Name:     "Ledger Balance",
		Category: CategoryCrossSystem,
		Severity: SeverityCritical,
		Check: func(ctx Context) Result {
			if len(ctx.Postings) == 0 {
				return pass("no ledger postings; balance not evaluable")
			}
			totalDebit := decimal.Zero
			totalCredit := decimal.Zero
			for _, e := range ctx.Postings {
				totalDebit = totalDebit.Add(e.Debit)
				totalCredit = totalCredit.Add(e.Credit)
			}
			if totalDebit.Sub(totalCredit).Abs().GreaterThan(centTolerance) {
				return fail(
					fmt.Sprintf("ledger imbalance: debits=%s, credits=%s", money(totalDebit), money(totalCredit)),
					money(totalDebit),
					money(totalCredit),
				)
			}
			return pass("debits and credits balance")
		},
	}
}

// money renders a decimal as a two-place amount for diagnostics.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// percent renders a fractional value (0.15 → "15.00%").
func percent(d decimal.Decimal) string {
	return d.Mul(hundred).StringFixed(2) + "%"
}
