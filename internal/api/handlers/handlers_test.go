package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infrabq "github.com/dvloznov/banking-pipeline/internal/infra/bigquery"
	"github.com/dvloznov/banking-pipeline/internal/jobs"
	"github.com/dvloznov/banking-pipeline/internal/jobs/inmemory"
)

type mockPublisher struct {
	published []*jobs.PipelineRunJob
	err       error
}

func (p *mockPublisher) PublishPipelineRun(ctx context.Context, job *jobs.PipelineRunJob) error {
	if p.err != nil {
		return p.err
	}
	job.JobID = "job-1"
	job.Status = jobs.JobStatusPending
	p.published = append(p.published, job)
	return nil
}

func (p *mockPublisher) Close() error { return nil }

type mockLedger struct {
	runs []*infrabq.PipelineRunRow
	err  error
}

func (l *mockLedger) ListRuns(ctx context.Context, limit int) ([]*infrabq.PipelineRunRow, error) {
	if l.err != nil {
		return nil, l.err
	}
	if limit > 0 && limit < len(l.runs) {
		return l.runs[:limit], nil
	}
	return l.runs, nil
}

func (l *mockLedger) GetRun(ctx context.Context, runID string) (*infrabq.PipelineRunRow, error) {
	if l.err != nil {
		return nil, l.err
	}
	for _, run := range l.runs {
		if run.RunID == runID {
			return run, nil
		}
	}
	return nil, fmt.Errorf("GetRun: %w", infrabq.ErrRunNotFound)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestEnqueueRun(t *testing.T) {
	pub := &mockPublisher{}
	h := NewRunsHandler(pub, nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/runs",
		strings.NewReader(`{"customers_uri":"data/customers.csv","transactions_uri":"data/transactions.csv"}`))
	rec := httptest.NewRecorder()
	h.EnqueueRun(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "job-1", body["job_id"])
	assert.Equal(t, "pending", body["status"])

	require.Len(t, pub.published, 1)
	assert.Equal(t, "data/customers.csv", pub.published[0].CustomersURI)
	assert.Equal(t, "data/transactions.csv", pub.published[0].TransactionsURI)
}

func TestEnqueueRunBadRequests(t *testing.T) {
	h := NewRunsHandler(&mockPublisher{}, nil, zerolog.Nop())

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing uris", `{"customers_uri":"data/customers.csv"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/runs", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.EnqueueRun(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestEnqueueRunPublisherFailure(t *testing.T) {
	h := NewRunsHandler(&mockPublisher{err: errors.New("queue down")}, nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/runs",
		strings.NewReader(`{"customers_uri":"a.csv","transactions_uri":"b.csv"}`))
	rec := httptest.NewRecorder()
	h.EnqueueRun(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListRuns(t *testing.T) {
	ledger := &mockLedger{runs: []*infrabq.PipelineRunRow{
		{RunID: "run-1", Status: infrabq.RunStatusSuccess, StartedTS: time.Now()},
		{RunID: "run-2", Status: infrabq.RunStatusFailed, StartedTS: time.Now()},
	}}
	h := NewRunsHandler(&mockPublisher{}, ledger, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/runs?limit=1", nil)
	rec := httptest.NewRecorder()
	h.ListRuns(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["count"])
}

func TestListRunsWithoutLedger(t *testing.T) {
	h := NewRunsHandler(&mockPublisher{}, nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.ListRuns(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetRun(t *testing.T) {
	ledger := &mockLedger{runs: []*infrabq.PipelineRunRow{
		{RunID: "run-1", Status: infrabq.RunStatusSuccess, StartedTS: time.Now()},
	}}
	h := NewRunsHandler(&mockPublisher{}, ledger, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.GetRun(rec, httptest.NewRequest(http.MethodGet, "/api/runs/run-1", nil), "run-1")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.GetRun(rec, httptest.NewRequest(http.MethodGet, "/api/runs/run-9", nil), "run-9")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRunLedgerFailure(t *testing.T) {
	h := NewRunsHandler(&mockPublisher{}, &mockLedger{err: errors.New("warehouse down")}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.GetRun(rec, httptest.NewRequest(http.MethodGet, "/api/runs/run-1", nil), "run-1")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestJobsHandler(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStore()
	require.NoError(t, store.SaveJob(ctx, &jobs.PipelineRunJob{
		JobID:     "job-1",
		Status:    jobs.JobStatusCompleted,
		CreatedAt: time.Now(),
	}))
	require.NoError(t, store.SaveJob(ctx, &jobs.PipelineRunJob{
		JobID:     "job-2",
		Status:    jobs.JobStatusFailed,
		CreatedAt: time.Now().Add(time.Minute),
	}))

	h := NewJobsHandler(store, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.GetJob(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/job-1", nil), "job-1")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.GetJob(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/missing", nil), "missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ListJobs(rec, httptest.NewRequest(http.MethodGet, "/api/jobs?status=failed", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["count"])
}
