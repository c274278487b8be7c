package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"

	"github.com/dvloznov/banking-pipeline/internal/etl"
)

// Table names inside the configured dataset.
const (
	customersTable    = "customers"
	transactionsTable = "transactions"
	runsTable         = "pipeline_runs"
)

// Run ledger states.
const (
	RunStatusRunning = "RUNNING"
	RunStatusSuccess = "SUCCESS"
	RunStatusFailed  = "FAILED"
)

const maxErrorMessageLen = 2000

// Store wraps a BigQuery client bound to one project and dataset.
type Store struct {
	client  *bigquery.Client
	project string
	dataset string
}

// NewStore connects to BigQuery using Application Default Credentials.
func NewStore(ctx context.Context, project, dataset string) (*Store, error) {
	if project == "" {
		return nil, fmt.Errorf("NewStore: project is required")
	}
	client, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("NewStore: bigquery client: %w", err)
	}
	return &Store{client: client, project: project, dataset: dataset}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) table(name string) *bigquery.Table {
	return s.client.DatasetInProject(s.project, s.dataset).Table(name)
}

func (s *Store) qualified(name string) string {
	return fmt.Sprintf("`%s.%s.%s`", s.project, s.dataset, name)
}

// InsertCustomers streams enriched customer rows into the warehouse.
func (s *Store) InsertCustomers(ctx context.Context, rows []*CustomerRow) error {
	if len(rows) == 0 {
		return nil
	}
	if err := s.table(customersTable).Inserter().Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertCustomers: inserting rows: %w", err)
	}
	return nil
}

// InsertTransactions streams scored transaction rows into the warehouse.
func (s *Store) InsertTransactions(ctx context.Context, rows []*TransactionRow) error {
	if len(rows) == 0 {
		return nil
	}
	if err := s.table(transactionsTable).Inserter().Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}
	return nil
}

// StartRun inserts a pipeline_runs row with status=RUNNING and returns
// the run id.
func (s *Store) StartRun(ctx context.Context) (string, error) {
	runID := uuid.NewString()
	row := &PipelineRunRow{
		RunID:     runID,
		StartedTS: time.Now(),
		Status:    RunStatusRunning,
	}
	if err := s.table(runsTable).Inserter().Put(ctx, row); err != nil {
		return "", fmt.Errorf("StartRun: inserting row: %w", err)
	}
	return runID, nil
}

// MarkRunSucceeded finalizes a ledger row with status=SUCCESS and the
// counters from the run report.
func (s *Store) MarkRunSucceeded(ctx context.Context, runID string, report *etl.Report) error {
	customersIn, customersOut, txIn, txOut, anomalies := RunCountsFrom(report)
	q := s.client.Query(fmt.Sprintf(`
		UPDATE %s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = "",
		    customers_in = @customers_in,
		    customers_out = @customers_out,
		    transactions_in = @transactions_in,
		    transactions_out = @transactions_out,
		    anomalies = @anomalies
		WHERE run_id = @run_id
	`, s.qualified(runsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: RunStatusSuccess},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "customers_in", Value: customersIn.Int64},
		{Name: "customers_out", Value: customersOut.Int64},
		{Name: "transactions_in", Value: txIn.Int64},
		{Name: "transactions_out", Value: txOut.Int64},
		{Name: "anomalies", Value: anomalies.Int64},
		{Name: "run_id", Value: runID},
	}
	if err := s.runAndWait(ctx, q); err != nil {
		return fmt.Errorf("MarkRunSucceeded: %w", err)
	}
	return nil
}

// MarkRunFailed finalizes a ledger row with status=FAILED. It is called
// on already-failing paths, so it logs through the returned error only.
func (s *Store) MarkRunFailed(ctx context.Context, runID string, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
		if len(msg) > maxErrorMessageLen {
			msg = msg[:maxErrorMessageLen]
		}
	}

	q := s.client.Query(fmt.Sprintf(`
		UPDATE %s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE run_id = @run_id
	`, s.qualified(runsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: RunStatusFailed},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: msg},
		{Name: "run_id", Value: runID},
	}
	if err := s.runAndWait(ctx, q); err != nil {
		return fmt.Errorf("MarkRunFailed: %w", err)
	}
	return nil
}

func (s *Store) runAndWait(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}
