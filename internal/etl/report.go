package etl

import (
	"time"

	"github.com/rs/zerolog"
)

// Report is the summary emitted after a pipeline run. It is an
// observation for operators, not part of the data contract.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`

	Customers    CustomerReport    `json:"customers"`
	Transactions TransactionReport `json:"transactions"`
}

// CustomerReport summarizes the cleaned customer set.
type CustomerReport struct {
	RawTotal        int     `json:"raw_total"`
	Total           int     `json:"total"`
	HighQuality     int     `json:"high_quality"`
	HighQualityRate float64 `json:"high_quality_rate"`
	AvgQualityScore float64 `json:"avg_quality_score"`
}

// TransactionReport summarizes the cleaned, scored transaction set.
type TransactionReport struct {
	RawTotal    int     `json:"raw_total"`
	Total       int     `json:"total"`
	Removed     int     `json:"removed"`
	Anomalies   int     `json:"anomalies"`
	AnomalyRate float64 `json:"anomaly_rate"`
	Fraud       int     `json:"fraud"`
	FraudRate   float64 `json:"fraud_rate"`
}

// BuildReport derives the run summary from a completed pipeline state.
func BuildReport(state *State, now time.Time) *Report {
	r := &Report{GeneratedAt: now}

	r.Customers.RawTotal = len(state.RawCustomers)
	r.Customers.Total = len(state.Customers)
	var qualitySum float64
	for _, c := range state.Customers {
		qualitySum += c.DataQualityScore
		if c.HighQuality {
			r.Customers.HighQuality++
		}
	}
	if r.Customers.Total > 0 {
		r.Customers.HighQualityRate = float64(r.Customers.HighQuality) / float64(r.Customers.Total)
		r.Customers.AvgQualityScore = qualitySum / float64(r.Customers.Total)
	}

	r.Transactions.RawTotal = len(state.RawTransactions)
	r.Transactions.Total = len(state.Scored)
	r.Transactions.Removed = len(state.RawTransactions) - len(state.Transactions)
	for _, tx := range state.Scored {
		if tx.IsAnomaly {
			r.Transactions.Anomalies++
		}
		if tx.IsFraud {
			r.Transactions.Fraud++
		}
	}
	if r.Transactions.Total > 0 {
		r.Transactions.AnomalyRate = float64(r.Transactions.Anomalies) / float64(r.Transactions.Total)
		r.Transactions.FraudRate = float64(r.Transactions.Fraud) / float64(r.Transactions.Total)
	}

	return r
}

// Log emits the report through the structured logger.
func (r *Report) Log(log zerolog.Logger) {
	log.Info().
		Int("customers_total", r.Customers.Total).
		Int("customers_high_quality", r.Customers.HighQuality).
		Float64("customers_avg_quality", r.Customers.AvgQualityScore).
		Msg("Customer cleaning summary")

	log.Info().
		Int("transactions_total", r.Transactions.Total).
		Int("transactions_removed", r.Transactions.Removed).
		Int("anomalies", r.Transactions.Anomalies).
		Float64("anomaly_rate", r.Transactions.AnomalyRate).
		Int("fraud", r.Transactions.Fraud).
		Float64("fraud_rate", r.Transactions.FraudRate).
		Msg("Transaction scoring summary")
}
