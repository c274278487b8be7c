// Package runner wires the pure transform pipeline to its inputs and
// outputs: CSV files on disk or in GCS, and the BigQuery warehouse.
package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/banking-pipeline/internal/csvio"
	"github.com/dvloznov/banking-pipeline/internal/etl"
	"github.com/dvloznov/banking-pipeline/internal/gcsio"
	infrabq "github.com/dvloznov/banking-pipeline/internal/infra/bigquery"
	"github.com/dvloznov/banking-pipeline/internal/model"
)

// Warehouse is the slice of the BigQuery store the runner needs. Nil
// means run file-to-file without the warehouse leg.
type Warehouse interface {
	StartRun(ctx context.Context) (string, error)
	InsertCustomers(ctx context.Context, rows []*infrabq.CustomerRow) error
	InsertTransactions(ctx context.Context, rows []*infrabq.TransactionRow) error
	MarkRunSucceeded(ctx context.Context, runID string, report *etl.Report) error
	MarkRunFailed(ctx context.Context, runID string, runErr error) error
}

// Runner executes one full pipeline run.
type Runner struct {
	warehouse Warehouse
	log       zerolog.Logger
	now       func() time.Time
}

// New creates a runner. warehouse may be nil for file-only runs.
func New(warehouse Warehouse, log zerolog.Logger) *Runner {
	return &Runner{
		warehouse: warehouse,
		log:       log,
		now:       time.Now,
	}
}

// WithClock overrides the runner's clock. Tests use this for a fixed
// reference time.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// Run reads the raw CSVs, executes the transform pipeline and, when a
// warehouse is configured, loads the results under a run ledger entry.
// It returns the final pipeline state and the warehouse run id, which
// is empty for file-only runs.
func (r *Runner) Run(ctx context.Context, customersURI, transactionsURI string) (*etl.State, string, error) {
	started := r.now()

	// 1. Fetch and parse both raw inputs.
	rawCustomers, err := r.readRawCustomers(ctx, customersURI)
	if err != nil {
		return nil, "", err
	}
	rawTransactions, err := r.readRawTransactions(ctx, transactionsURI)
	if err != nil {
		return nil, "", err
	}

	r.log.Info().
		Int("raw_customers", len(rawCustomers)).
		Int("raw_transactions", len(rawTransactions)).
		Msg("raw inputs loaded")

	// 2. Open the run ledger entry.
	var runID string
	if r.warehouse != nil {
		runID, err = r.warehouse.StartRun(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("start run: %w", err)
		}
	}

	// 3. Execute the transform pipeline.
	state, err := etl.Run(ctx, started, rawCustomers, rawTransactions)
	if err != nil {
		r.failRun(ctx, runID, err)
		return nil, runID, fmt.Errorf("transform: %w", err)
	}

	state.Report.Log(r.log)

	// 4. Load the warehouse tables.
	if r.warehouse != nil {
		if err := r.load(ctx, state); err != nil {
			r.failRun(ctx, runID, err)
			return nil, runID, err
		}
		if err := r.warehouse.MarkRunSucceeded(ctx, runID, state.Report); err != nil {
			return nil, runID, fmt.Errorf("close run: %w", err)
		}
	}

	return state, runID, nil
}

func (r *Runner) load(ctx context.Context, state *etl.State) error {
	loaded := r.now()

	customerRows := make([]*infrabq.CustomerRow, 0, len(state.Customers))
	for i := range state.Customers {
		customerRows = append(customerRows, infrabq.CustomerRowFrom(&state.Customers[i], loaded))
	}
	if err := r.warehouse.InsertCustomers(ctx, customerRows); err != nil {
		return fmt.Errorf("load customers: %w", err)
	}

	txRows := make([]*infrabq.TransactionRow, 0, len(state.Scored))
	for i := range state.Scored {
		txRows = append(txRows, infrabq.TransactionRowFrom(&state.Scored[i], loaded))
	}
	if err := r.warehouse.InsertTransactions(ctx, txRows); err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}

	r.log.Info().
		Int("customers", len(customerRows)).
		Int("transactions", len(txRows)).
		Msg("warehouse load complete")
	return nil
}

func (r *Runner) failRun(ctx context.Context, runID string, runErr error) {
	if r.warehouse == nil || runID == "" {
		return
	}
	if err := r.warehouse.MarkRunFailed(ctx, runID, runErr); err != nil {
		r.log.Error().Err(err).Str("run_id", runID).Msg("failed to mark run failed")
	}
}

// WriteOutputs writes the cleaned customer and scored transaction CSVs
// plus the JSON quality report. Empty URIs skip the corresponding
// output.
func (r *Runner) WriteOutputs(ctx context.Context, state *etl.State, customersURI, transactionsURI, reportURI string) error {
	if customersURI != "" {
		var buf bytes.Buffer
		if err := csvio.WriteCustomers(&buf, state.Customers); err != nil {
			return fmt.Errorf("encode customers: %w", err)
		}
		if err := writeURI(ctx, customersURI, buf.Bytes()); err != nil {
			return err
		}
	}
	if transactionsURI != "" {
		var buf bytes.Buffer
		if err := csvio.WriteScoredTransactions(&buf, state.Scored); err != nil {
			return fmt.Errorf("encode transactions: %w", err)
		}
		if err := writeURI(ctx, transactionsURI, buf.Bytes()); err != nil {
			return err
		}
	}
	if reportURI != "" {
		data, err := json.MarshalIndent(state.Report, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		if err := writeURI(ctx, reportURI, data); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) readRawCustomers(ctx context.Context, uri string) ([]model.RawCustomer, error) {
	data, err := readURI(ctx, uri)
	if err != nil {
		return nil, err
	}
	customers, err := csvio.ReadRawCustomers(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", uri, err)
	}
	return customers, nil
}

func (r *Runner) readRawTransactions(ctx context.Context, uri string) ([]model.RawTransaction, error) {
	data, err := readURI(ctx, uri)
	if err != nil {
		return nil, err
	}
	txs, err := csvio.ReadRawTransactions(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", uri, err)
	}
	return txs, nil
}

func readURI(ctx context.Context, uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "gs://") {
		return gcsio.Fetch(ctx, uri)
	}
	data, err := os.ReadFile(uri)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", uri, err)
	}
	return data, nil
}

func writeURI(ctx context.Context, uri string, data []byte) error {
	if strings.HasPrefix(uri, "gs://") {
		return gcsio.Upload(ctx, uri, data)
	}
	if err := os.WriteFile(uri, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", uri, err)
	}
	return nil
}
