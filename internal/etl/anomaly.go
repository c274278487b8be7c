package etl

import (
	"math"
	"sort"
	"time"

	"github.com/dvloznov/banking-pipeline/internal/model"
)

// Composite anomaly score policy. The coefficients and threshold are a
// fixed contract, not tunables: changing them changes the meaning of
// every historical score.
const (
	zScoreWeight      = 3
	unusualHourWeight = 1
	rapidWeight       = 2
	highAmountWeight  = 2

	anomalyThreshold = 3

	zScoreCutoff = 3.0

	rapidWindow = 5 * time.Minute
)

// AnomalyDetector scores cleaned transactions against per-customer
// statistical baselines and behavioral signals.
type AnomalyDetector struct{}

// NewAnomalyDetector creates the detector.
func NewAnomalyDetector() *AnomalyDetector {
	return &AnomalyDetector{}
}

// Score annotates every transaction with its z-score, signal flags and
// composite anomaly verdict. Output rows keep the input order.
func (d *AnomalyDetector) Score(txs []model.Transaction) []model.ScoredTransaction {
	out := make([]model.ScoredTransaction, len(txs))
	for i, tx := range txs {
		out[i].Transaction = tx
	}

	byCustomer := make(map[string][]int)
	for i, tx := range txs {
		byCustomer[tx.CustomerID] = append(byCustomer[tx.CustomerID], i)
	}

	for _, idxs := range byCustomer {
		abs := make([]float64, len(idxs))
		for j, i := range idxs {
			abs[j] = txs[i].AmountAbs
		}
		m := mean(abs)
		// A single transaction has zero spread, which also pins its
		// z-score to zero below.
		std := sampleStd(abs)

		for _, i := range idxs {
			if std > 0 {
				out[i].AmountZScore = (txs[i].AmountAbs - m) / std
			}
			out[i].UnusualHour = txs[i].Hour < 6 || txs[i].Hour > 22
		}

		// Rapid-fire detection walks the customer's transactions in
		// ascending timestamp order; the earliest one has no
		// predecessor and is never flagged.
		ordered := make([]int, len(idxs))
		copy(ordered, idxs)
		sort.SliceStable(ordered, func(a, b int) bool {
			return txs[ordered[a]].Timestamp.Before(txs[ordered[b]].Timestamp)
		})
		for j := 1; j < len(ordered); j++ {
			gap := txs[ordered[j]].Timestamp.Sub(txs[ordered[j-1]].Timestamp)
			if gap < rapidWindow {
				out[ordered[j]].RapidTransaction = true
			}
		}
	}

	for i := range out {
		score := 0
		if math.Abs(out[i].AmountZScore) > zScoreCutoff {
			score += zScoreWeight
		}
		if out[i].UnusualHour {
			score += unusualHourWeight
		}
		if out[i].RapidTransaction {
			score += rapidWeight
		}
		if out[i].HighAmount {
			score += highAmountWeight
		}
		out[i].AnomalyScore = score
		out[i].IsAnomaly = score >= anomalyThreshold
	}

	return out
}
