package handlers

import (
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dvloznov/banking-pipeline/internal/api/middleware"
	"github.com/dvloznov/banking-pipeline/internal/etl"
	"github.com/dvloznov/banking-pipeline/internal/insights"
)

// ReportCache holds the quality report of the most recent completed
// run. The worker updates it after every run.
type ReportCache struct {
	mu     sync.RWMutex
	latest *etl.Report
}

// NewReportCache creates an empty cache.
func NewReportCache() *ReportCache {
	return &ReportCache{}
}

// Set replaces the cached report.
func (c *ReportCache) Set(report *etl.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latest = report
}

// Latest returns the cached report, or nil when no run has completed.
func (c *ReportCache) Latest() *etl.Report {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest
}

// ReportHandler serves the latest quality report, optionally with an
// AI-written narrative.
type ReportHandler struct {
	cache      *ReportCache
	summarizer insights.Summarizer
	log        zerolog.Logger
}

// NewReportHandler creates a report handler. summarizer may be nil
// when narratives are disabled.
func NewReportHandler(cache *ReportCache, summarizer insights.Summarizer, log zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		cache:      cache,
		summarizer: summarizer,
		log:        log,
	}
}

// GetReport handles GET /api/report. With ?narrative=true and a
// configured summarizer the response includes model commentary.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report := h.cache.Latest()
	if report == nil {
		middleware.WriteError(w, http.StatusNotFound, "No completed run yet")
		return
	}

	resp := map[string]interface{}{
		"report": report,
	}

	if r.URL.Query().Get("narrative") == "true" && h.summarizer != nil {
		narrative, err := h.summarizer.Summarize(r.Context(), report)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to summarize report")
		} else {
			resp["narrative"] = narrative
		}
	}

	middleware.WriteJSON(w, http.StatusOK, resp)
}
