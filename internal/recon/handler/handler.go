package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"crosscheck/internal/audit"
	"crosscheck/internal/recon"
	dErrors "crosscheck/pkg/domain-errors"
	"crosscheck/pkg/platform/httputil"
	"crosscheck/pkg/requestcontext"
)

// Service defines the reconciliation operations the HTTP layer depends on.
type Service interface {
	ValidateTransaction(ctx context.Context, correlationKey string) (recon.ValidationResult, error)
	ValidateBatch(ctx context.Context, keys []string) (recon.ScanReport, error)
	RunFullScan(ctx context.Context) (recon.ScanReport, error)
	Result(ctx context.Context, correlationKey string) (recon.ValidationResult, error)
	Statistics(ctx context.Context) (recon.Statistics, error)
	RiskDistribution(ctx context.Context) (recon.RiskDistribution, error)
}

// Trail defines the audit queries the HTTP layer depends on.
type Trail interface {
	ForTransaction(ctx context.Context, correlationKey string) ([]audit.Event, error)
	Query(ctx context.Context, filter audit.Filter, page, pageSize int) ([]audit.Event, int, error)
	Summarize(ctx context.Context) (audit.Summary, error)
}

// Handler wires reconciliation endpoints to the service.
type Handler struct {
	service Service
	trail   Trail
	logger  *slog.Logger
}

// New constructs a reconciliation handler with its dependencies.
func New(service Service, trail Trail, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		trail:   trail,
		logger:  logger,
	}
}

// Register mounts reconciliation endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/validation", func(r chi.Router) {
		r.Post("/validate/batch", h.HandleValidateBatch)
		r.Post("/validate/{correlationKey}", h.HandleValidate)
		r.Post("/scan", h.HandleScan)
		r.Get("/results/{correlationKey}", h.HandleResult)
		r.Get("/statistics", h.HandleStatistics)
		r.Get("/risk-distribution", h.HandleRiskDistribution)
	})
	r.Route("/audit", func(r chi.Router) {
		r.Get("/transactions/{correlationKey}", h.HandleTrail)
		r.Get("/events", h.HandleAuditQuery)
		r.Get("/summary", h.HandleAuditSummary)
	})
}

// HandleValidate handles POST /validation/validate/{correlationKey}.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	correlationKey := chi.URLParam(r, "correlationKey")
	if correlationKey == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "correlation key is required"))
		return
	}

	result, err := h.service.ValidateTransaction(ctx, correlationKey)
	if err != nil {
		h.logger.ErrorContext(ctx, "validation failed",
			"request_id", requestID,
			"correlation_key", correlationKey,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "validation served",
		"request_id", requestID,
		"correlation_key", correlationKey,
		"risk_score", result.RiskScore,
		"classification", result.Classification,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// BatchRequest is the wire shape of a batch validation request.
type BatchRequest struct {
	CorrelationKeys []string `json:"correlationKeys"`
}

// HandleValidateBatch handles POST /validation/validate/batch.
func (h *Handler) HandleValidateBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.Decode[BatchRequest](w, r, h.logger)
	if !ok {
		return
	}
	if len(req.CorrelationKeys) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "correlationKeys must not be empty"))
		return
	}

	report, err := h.service.ValidateBatch(ctx, req.CorrelationKeys)
	if err != nil {
		h.logger.ErrorContext(ctx, "batch validation failed",
			"request_id", requestID,
			"keys", len(req.CorrelationKeys),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

// HandleScan handles POST /validation/scan.
func (h *Handler) HandleScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	report, err := h.service.RunFullScan(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "full scan failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "full scan served",
		"request_id", requestID,
		"scanned", report.TotalScanned,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, report)
}

// HandleResult handles GET /validation/results/{correlationKey}.
func (h *Handler) HandleResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationKey := chi.URLParam(r, "correlationKey")

	result, err := h.service.Result(ctx, correlationKey)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleStatistics handles GET /validation/statistics.
func (h *Handler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.service.Statistics(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "statistics query failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

// HandleRiskDistribution handles GET /validation/risk-distribution.
func (h *Handler) HandleRiskDistribution(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dist, err := h.service.RiskDistribution(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dist)
}

// HandleTrail handles GET /audit/transactions/{correlationKey}.
func (h *Handler) HandleTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationKey := chi.URLParam(r, "correlationKey")

	events, err := h.trail.ForTransaction(ctx, correlationKey)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"correlationKey": correlationKey,
		"events":         events,
		"total":          len(events),
	})
}

// HandleAuditQuery handles GET /audit/events with optional filters.
func (h *Handler) HandleAuditQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := audit.Filter{
		Type:           audit.EventType(q.Get("eventType")),
		CorrelationKey: q.Get("correlationKey"),
		Severity:       q.Get("severity"),
		Decision:       q.Get("decision"),
		Source:         q.Get("source"),
	}
	page := queryInt(q.Get("page"), 1)
	pageSize := queryInt(q.Get("pageSize"), 50)

	events, total, err := h.trail.Query(ctx, filter, page, pageSize)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"events":   events,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// HandleAuditSummary handles GET /audit/summary.
func (h *Handler) HandleAuditSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := h.trail.Summarize(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
