// Package handlers implements the HTTP endpoints for triggering
// pipeline runs and reading their results.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/dvloznov/banking-pipeline/internal/api/middleware"
	infrabq "github.com/dvloznov/banking-pipeline/internal/infra/bigquery"
	"github.com/dvloznov/banking-pipeline/internal/jobs"
)

// RunLedger is the slice of the warehouse the runs endpoints read.
type RunLedger interface {
	ListRuns(ctx context.Context, limit int) ([]*infrabq.PipelineRunRow, error)
	GetRun(ctx context.Context, runID string) (*infrabq.PipelineRunRow, error)
}

// RunsHandler enqueues pipeline runs and reads the run ledger.
type RunsHandler struct {
	publisher jobs.Publisher
	ledger    RunLedger
	log       zerolog.Logger
}

// NewRunsHandler creates a runs handler. ledger may be nil when the
// service runs without a warehouse.
func NewRunsHandler(publisher jobs.Publisher, ledger RunLedger, log zerolog.Logger) *RunsHandler {
	return &RunsHandler{
		publisher: publisher,
		ledger:    ledger,
		log:       log,
	}
}

// EnqueueRun handles POST /api/runs.
func (h *RunsHandler) EnqueueRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomersURI    string `json:"customers_uri"`
		TransactionsURI string `json:"transactions_uri"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CustomersURI == "" || req.TransactionsURI == "" {
		middleware.WriteError(w, http.StatusBadRequest, "customers_uri and transactions_uri are required")
		return
	}

	ctx := r.Context()

	job := &jobs.PipelineRunJob{
		CustomersURI:    req.CustomersURI,
		TransactionsURI: req.TransactionsURI,
	}
	if err := h.publisher.PublishPipelineRun(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue pipeline run")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue pipeline run")
		return
	}

	h.log.Info().
		Str("job_id", job.JobID).
		Str("customers_uri", req.CustomersURI).
		Str("transactions_uri", req.TransactionsURI).
		Msg("Pipeline run enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// ListRuns handles GET /api/runs.
func (h *RunsHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Run ledger is not configured")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil {
			limit = v
		}
	}

	runs, err := h.ledger.ListRuns(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list runs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// GetRun handles GET /api/runs/{id}.
func (h *RunsHandler) GetRun(w http.ResponseWriter, r *http.Request, runID string) {
	if h.ledger == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Run ledger is not configured")
		return
	}

	run, err := h.ledger.GetRun(r.Context(), runID)
	if err != nil {
		if errors.Is(err, infrabq.ErrRunNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Run not found")
			return
		}
		h.log.Error().Err(err).Str("run_id", runID).Msg("Failed to get run")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get run")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, run)
}

// JobsHandler serves job status queries.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}.
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs.
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		Status: jobs.JobStatus(query.Get("status")),
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
