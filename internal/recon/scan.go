package recon

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"crosscheck/internal/audit"
	"crosscheck/internal/risk"
	"crosscheck/internal/rules"
	dErrors "crosscheck/pkg/domain-errors"
)

const scanPageSize = 200

// RunFullScan validates every sales record in the ledger plus a ghost pass
// over billing-side invoices that reference no known order. Individual
// transaction failures are collected, not fatal; only store paging errors
// and context cancellation abort the scan.
func (s *Service) RunFullScan(ctx context.Context) (ScanReport, error) {
	start := time.Now()

	keys, err := s.listAllKeys(ctx)
	if err != nil {
		return ScanReport{}, err
	}

	report, err := s.validateKeys(ctx, keys)
	if err != nil {
		s.metrics.IncScanFailure()
		return ScanReport{}, err
	}

	ghosts, err := s.detectGhostInvoices(ctx)
	if err != nil {
		s.metrics.IncScanFailure()
		return ScanReport{}, err
	}
	for _, ghost := range ghosts {
		report.Results = append(report.Results, ghost)
		report.MonitorCount++
	}
	report.GhostInvoices = len(ghosts)
	report.TotalScanned = len(report.Results)
	report.StartedAt = start
	report.FinishedAt = time.Now()

	s.metrics.ObserveScan(time.Since(start))
	if s.logger != nil {
		s.logger.InfoContext(ctx, "full scan completed",
			"scanned", report.TotalScanned,
			"safe", report.SafeCount,
			"monitor", report.MonitorCount,
			"critical", report.CriticalCount,
			"ghost_invoices", report.GhostInvoices,
			"failed_keys", len(report.FailedKeys),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return report, nil
}

// ValidateBatch validates an explicit set of correlation keys with the same
// isolation guarantees as a full scan.
func (s *Service) ValidateBatch(ctx context.Context, keys []string) (ScanReport, error) {
	start := time.Now()
	report, err := s.validateKeys(ctx, keys)
	if err != nil {
		return ScanReport{}, err
	}
	report.TotalScanned = len(report.Results)
	report.StartedAt = start
	report.FinishedAt = time.Now()
	return report, nil
}

func (s *Service) listAllKeys(ctx context.Context) ([]string, error) {
	var keys []string
	for page := 1; ; page++ {
		orders, total, err := s.sales.ListOrders(ctx, page, scanPageSize)
		if err != nil {
			return nil, dErrors.Wrap(dErrors.CodeUnavailable, "sales store unreachable", err)
		}
		for _, order := range orders {
			keys = append(keys, order.OrderID)
		}
		if len(keys) >= total || len(orders) == 0 {
			return keys, nil
		}
	}
}

// validateKeys fans the keys out over a bounded worker pool. Results keep
// the input key order regardless of completion order.
func (s *Service) validateKeys(ctx context.Context, keys []string) (ScanReport, error) {
	var (
		mu      sync.Mutex
		results = make(map[string]ValidationResult, len(keys))
		failed  []string
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.scanConcurrency)
	for _, key := range keys {
		key := key
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			result, err := s.ValidateTransaction(groupCtx, key)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if s.logger != nil {
					s.logger.ErrorContext(groupCtx, "scan transaction failed",
						"correlation_key", key,
						"error", err,
					)
				}
				failed = append(failed, key)
				return nil
			}
			results[key] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return ScanReport{}, err
	}
	if err := ctx.Err(); err != nil {
		return ScanReport{}, dErrors.Wrap(dErrors.CodeUnavailable, "scan cancelled", err)
	}

	sort.Strings(failed)
	report := ScanReport{FailedKeys: failed}
	for _, key := range keys {
		result, ok := results[key]
		if !ok {
			continue
		}
		report.Results = append(report.Results, result)
		switch result.Classification {
		case risk.ClassificationSafe:
			report.SafeCount++
		case risk.ClassificationMonitor:
			report.MonitorCount++
		case risk.ClassificationCritical:
			report.CriticalCount++
		}
	}
	return report, nil
}

// detectGhostInvoices sweeps the billing ledger for invoices whose order
// reference resolves to nothing on the sales side. Each ghost yields a
// synthetic result carrying the one CSI-001 violation.
func (s *Service) detectGhostInvoices(ctx context.Context) ([]ValidationResult, error) {
	invoices, err := s.billing.ListInvoices(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "billing store unreachable", err)
	}

	known := make(map[string]struct{})
	for page := 1; ; page++ {
		orders, total, err := s.sales.ListOrders(ctx, page, scanPageSize)
		if err != nil {
			return nil, dErrors.Wrap(dErrors.CodeUnavailable, "sales store unreachable", err)
		}
		for _, order := range orders {
			known[order.OrderID] = struct{}{}
		}
		if len(known) >= total || len(orders) == 0 {
			break
		}
	}

	var ghosts []ValidationResult
	for _, inv := range invoices {
		if _, ok := known[inv.OrderID]; ok {
			continue
		}
		result := s.ghostResult(ctx, inv.InvoiceID, inv.OrderID)
		ghosts = append(ghosts, result)
	}
	return ghosts, nil
}

// ghostResult builds the synthetic result for one ghost invoice. Ghosts are
// pinned to monitor so they surface in scans without tripping the critical
// escalation path on their own.
func (s *Service) ghostResult(ctx context.Context, invoiceID, orderID string) ValidationResult {
	violation := ViolationRecord{
		RuleID:        "CSI-001",
		RuleName:      "Ghost Invoice",
		Severity:      string(rules.SeverityCritical),
		Message:       "invoice " + invoiceID + " references sales record " + orderID + " that does not exist",
		ExpectedValue: "order exists",
		ActualValue:   "not found",
		Weight:        rules.SeverityCritical.Weight(),
	}
	result := ValidationResult{
		CorrelationKey: orderID,
		RiskScore:      violation.Weight,
		Classification: risk.ClassificationMonitor,
		RulesEvaluated: 1,
		RulesFailed:    1,
		Violations:     []ViolationRecord{violation},
		ValidatedAt:    s.now(ctx),
	}

	if err := s.results.Save(ctx, result); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "result store save failed",
			"correlation_key", orderID,
			"error", err,
		)
	}

	correlationID := uuid.NewString()
	defer s.recorder.EndRun(correlationID)

	score := result.RiskScore
	s.recorder.Record(ctx, audit.Event{
		Type:           audit.EventRuleViolation,
		CorrelationKey: orderID,
		CorrelationID:  correlationID,
		RuleID:         violation.RuleID,
		RuleName:       violation.RuleName,
		Severity:       violation.Severity,
		RiskScore:      &score,
		Classification: string(result.Classification),
		Message:        violation.Message,
	})
	s.metrics.IncRuleViolation(violation.RuleID)
	return result
}
