package etl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/banking-pipeline/internal/model"
)

// ErrNoInput is returned when a stage starts without the collection it
// consumes. Absent input is fatal for the whole invocation: partial
// output must never be treated as valid.
var ErrNoInput = errors.New("pipeline input collection is missing")

// Step is a single stage of the transformation pipeline.
type Step interface {
	Execute(ctx context.Context, state *State) error
}

// State is the collection handoff shared across pipeline steps. Each
// stage reads its complete input and produces a complete output before
// the next stage starts; there is no other shared state between them.
type State struct {
	RawCustomers    []model.RawCustomer
	RawTransactions []model.RawTransaction

	Customers    []model.Customer
	Transactions []model.Transaction
	Scored       []model.ScoredTransaction

	Report *Report
}

// CleanCustomersStep runs the customer cleaner over the raw customers.
type CleanCustomersStep struct {
	cleaner *CustomerCleaner
}

func (s *CleanCustomersStep) Execute(ctx context.Context, state *State) error {
	if state.RawCustomers == nil {
		return fmt.Errorf("clean customers: %w", ErrNoInput)
	}
	state.Customers = s.cleaner.Clean(state.RawCustomers)
	return nil
}

// CleanTransactionsStep runs the transaction cleaner over the raw
// transactions, validating references against the cleaned customers.
type CleanTransactionsStep struct {
	cleaner *TransactionCleaner
}

func (s *CleanTransactionsStep) Execute(ctx context.Context, state *State) error {
	if state.RawTransactions == nil {
		return fmt.Errorf("clean transactions: %w", ErrNoInput)
	}
	if state.Customers == nil {
		return fmt.Errorf("clean transactions: cleaned customers: %w", ErrNoInput)
	}
	state.Transactions = s.cleaner.Clean(state.RawTransactions, state.Customers)
	return nil
}

// AggregateFeaturesStep merges per-customer rollups onto the customers.
type AggregateFeaturesStep struct {
	aggregator *FeatureAggregator
}

func (s *AggregateFeaturesStep) Execute(ctx context.Context, state *State) error {
	if state.Transactions == nil || state.Customers == nil {
		return fmt.Errorf("aggregate features: %w", ErrNoInput)
	}
	state.Customers = s.aggregator.Aggregate(state.Transactions, state.Customers)
	return nil
}

// DetectAnomaliesStep scores the cleaned transactions.
type DetectAnomaliesStep struct {
	detector *AnomalyDetector
}

func (s *DetectAnomaliesStep) Execute(ctx context.Context, state *State) error {
	if state.Transactions == nil {
		return fmt.Errorf("detect anomalies: %w", ErrNoInput)
	}
	state.Scored = s.detector.Score(state.Transactions)
	return nil
}

// BuildReportStep derives the run summary.
type BuildReportStep struct {
	now time.Time
}

func (s *BuildReportStep) Execute(ctx context.Context, state *State) error {
	if state.Scored == nil {
		return fmt.Errorf("build report: %w", ErrNoInput)
	}
	state.Report = BuildReport(state, s.now)
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []Step
}

// NewPipeline creates a pipeline with the given steps.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps sequentially, stopping at the first failure.
func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline cancelled before step %d: %w", i+1, err)
		}
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// NewTransformPipeline creates the standard five-step pipeline:
// clean customers, clean transactions, aggregate features, detect
// anomalies, build the report. Ages, tenures, the date window and
// report timestamps all derive from the given reference time.
func NewTransformPipeline(now time.Time) *Pipeline {
	return NewPipeline(
		&CleanCustomersStep{cleaner: NewCustomerCleaner(now)},
		&CleanTransactionsStep{cleaner: NewTransactionCleaner(now)},
		&AggregateFeaturesStep{aggregator: NewFeatureAggregator()},
		&DetectAnomaliesStep{detector: NewAnomalyDetector()},
		&BuildReportStep{now: now},
	)
}

// Run is the whole-batch entry point: it executes the standard pipeline
// over the two raw collections and returns the completed state.
func Run(ctx context.Context, now time.Time, rawCustomers []model.RawCustomer, rawTransactions []model.RawTransaction) (*State, error) {
	state := &State{
		RawCustomers:    rawCustomers,
		RawTransactions: rawTransactions,
	}
	if err := NewTransformPipeline(now).Execute(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}
