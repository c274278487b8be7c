package etl

import (
	"math"
	"time"

	"github.com/dvloznov/banking-pipeline/internal/model"
)

// FeatureAggregator merges per-customer transaction rollups onto the
// cleaned customer set. It is a left join: every input customer comes
// back exactly once, zero-filled when the customer has no activity.
type FeatureAggregator struct{}

// NewFeatureAggregator creates the aggregator.
func NewFeatureAggregator() *FeatureAggregator {
	return &FeatureAggregator{}
}

// customerAccumulator collects one customer's transactions before the
// profile is computed. Slices keep the cleaned-set input order so the
// preferred-category tie-break can stay stable.
type customerAccumulator struct {
	amounts []float64
	abss    []float64
	dates   []time.Time

	categoryCounts map[string]int
	categoryFirst  map[string]int
	merchants      map[string]bool

	fraud    int
	weekend  int
	business int

	monthlySums map[int]float64
}

// Aggregate computes the per-customer profile for each cleaned customer
// and returns the enriched customer set in input order.
func (a *FeatureAggregator) Aggregate(txs []model.Transaction, customers []model.Customer) []model.Customer {
	accs := make(map[string]*customerAccumulator, len(customers))

	for i, tx := range txs {
		acc := accs[tx.CustomerID]
		if acc == nil {
			acc = &customerAccumulator{
				categoryCounts: make(map[string]int),
				categoryFirst:  make(map[string]int),
				merchants:      make(map[string]bool),
				monthlySums:    make(map[int]float64),
			}
			accs[tx.CustomerID] = acc
		}

		acc.amounts = append(acc.amounts, tx.Amount)
		acc.abss = append(acc.abss, tx.AmountAbs)
		acc.dates = append(acc.dates, tx.Date)

		acc.categoryCounts[tx.Category]++
		if _, ok := acc.categoryFirst[tx.Category]; !ok {
			acc.categoryFirst[tx.Category] = i
		}
		acc.merchants[tx.MerchantName] = true

		if tx.IsFraud {
			acc.fraud++
		}
		if tx.IsWeekend {
			acc.weekend++
		}
		if tx.BusinessHours {
			acc.business++
		}

		acc.monthlySums[tx.Month] += tx.Amount
	}

	out := make([]model.Customer, len(customers))
	for i, cust := range customers {
		out[i] = cust
		if acc := accs[cust.CustomerID]; acc != nil {
			out[i].Profile = acc.profile()
		}
	}
	return out
}

func (acc *customerAccumulator) profile() model.CustomerProfile {
	n := len(acc.amounts)

	first, last := acc.dates[0], acc.dates[0]
	for _, d := range acc.dates[1:] {
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}
	// Inclusive span: one transaction is one active day.
	spanDays := wholeDays(first, last) + 1

	var minAmt, maxAmt, sum float64
	minAmt, maxAmt = acc.amounts[0], acc.amounts[0]
	for _, v := range acc.amounts {
		sum += v
		if v < minAmt {
			minAmt = v
		}
		if v > maxAmt {
			maxAmt = v
		}
	}

	p := model.CustomerProfile{
		TotalTransactions:    n,
		TotalAmount:          round2(sum),
		AvgTransactionAmount: round2(sum / float64(n)),
		TransactionAmountStd: round2(sampleStd(acc.amounts)),
		MinTransactionAmount: round2(minAmt),
		MaxTransactionAmount: round2(maxAmt),

		FirstTransactionDate: first,
		LastTransactionDate:  last,
		TransactionSpanDays:  spanDays,
		TransactionsPerDay:   round3(float64(n) / float64(spanDays)),

		UniqueCategories: len(acc.categoryCounts),
		UniqueMerchants:  len(acc.merchants),

		FraudTransactions: acc.fraud,
		FraudRate:         round2(float64(acc.fraud) / float64(n)),

		WeekendTransactionRate: round2(float64(acc.weekend) / float64(n)),
		BusinessHoursRate:      round2(float64(acc.business) / float64(n)),

		AvgAbsoluteAmount: round2(mean(acc.abss)),
		AbsoluteAmountStd: round2(sampleStd(acc.abss)),

		MonthlySpendingVariance: round2(acc.monthlyVariance()),
		PreferredCategory:       acc.preferredCategory(),
	}
	return p
}

// monthlyVariance is the sample standard deviation of per-month signed
// sums, grouped by month number with years merged. Fewer than two
// active months yield zero.
func (acc *customerAccumulator) monthlyVariance() float64 {
	if len(acc.monthlySums) < 2 {
		return 0
	}
	sums := make([]float64, 0, len(acc.monthlySums))
	for _, s := range acc.monthlySums {
		sums = append(sums, s)
	}
	return sampleStd(sums)
}

// preferredCategory picks the category with the strictly highest count;
// ties go to the category seen earliest in the cleaned transaction
// sequence.
func (acc *customerAccumulator) preferredCategory() string {
	best := ""
	bestCount := math.MinInt
	bestFirst := math.MaxInt
	for cat, count := range acc.categoryCounts {
		first := acc.categoryFirst[cat]
		if count > bestCount || (count == bestCount && first < bestFirst) {
			best = cat
			bestCount = count
			bestFirst = first
		}
	}
	return best
}
