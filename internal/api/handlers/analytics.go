package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/dvloznov/banking-pipeline/internal/api/middleware"
	infrabq "github.com/dvloznov/banking-pipeline/internal/infra/bigquery"
)

// AnalyticsCatalog is the slice of the warehouse the analytics
// endpoints read.
type AnalyticsCatalog interface {
	MonthlySpendingTrend(ctx context.Context) ([]*infrabq.MonthlyTrendRow, error)
	TopSpenders(ctx context.Context, perMonth int) ([]*infrabq.TopSpenderRow, error)
	SpendingVolatility(ctx context.Context, minMonths int) ([]*infrabq.VolatilityRow, error)
}

// AnalyticsHandler serves the monthly spending analytics.
type AnalyticsHandler struct {
	catalog AnalyticsCatalog
	log     zerolog.Logger
}

// NewAnalyticsHandler creates an analytics handler.
func NewAnalyticsHandler(catalog AnalyticsCatalog, log zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		catalog: catalog,
		log:     log,
	}
}

// MonthlyTrend handles GET /api/analytics/monthly.
func (h *AnalyticsHandler) MonthlyTrend(w http.ResponseWriter, r *http.Request) {
	rows, err := h.catalog.MonthlySpendingTrend(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query monthly trend")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query monthly trend")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"months": rows,
		"count":  len(rows),
	})
}

// TopSpenders handles GET /api/analytics/top-spenders.
func (h *AnalyticsHandler) TopSpenders(w http.ResponseWriter, r *http.Request) {
	perMonth := 0
	if v := r.URL.Query().Get("per_month"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			perMonth = n
		}
	}

	rows, err := h.catalog.TopSpenders(r.Context(), perMonth)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query top spenders")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query top spenders")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"spenders": rows,
		"count":    len(rows),
	})
}

// Volatility handles GET /api/analytics/volatility.
func (h *AnalyticsHandler) Volatility(w http.ResponseWriter, r *http.Request) {
	minMonths := 0
	if v := r.URL.Query().Get("min_months"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			minMonths = n
		}
	}

	rows, err := h.catalog.SpendingVolatility(r.Context(), minMonths)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query spending volatility")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query spending volatility")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"customers": rows,
		"count":     len(rows),
	})
}
