package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// MonthlyTrendRow is one month of aggregate spending across all
// customers.
type MonthlyTrendRow struct {
	Year            int64   `bigquery:"year"`
	Month           int64   `bigquery:"month"`
	ActiveCustomers int64   `bigquery:"active_customers"`
	TotalSpending   float64 `bigquery:"total_spending"`
	AvgSpending     float64 `bigquery:"avg_spending"`
	Transactions    int64   `bigquery:"transactions"`
	FraudCount      int64   `bigquery:"fraud_count"`
	FraudRatePct    float64 `bigquery:"fraud_rate_pct"`
}

// TopSpenderRow is one customer's rank within a month.
type TopSpenderRow struct {
	Year         int64   `bigquery:"year"`
	Month        int64   `bigquery:"month"`
	CustomerID   string  `bigquery:"customer_id"`
	FirstName    string  `bigquery:"first_name"`
	LastName     string  `bigquery:"last_name"`
	Segment      string  `bigquery:"customer_segment"`
	TotalSpent   float64 `bigquery:"total_spent"`
	Transactions int64   `bigquery:"transactions"`
	SpendingRank int64   `bigquery:"spending_rank"`
}

// VolatilityRow summarizes month-to-month variability of one
// customer's spending.
type VolatilityRow struct {
	CustomerID    string  `bigquery:"customer_id"`
	MonthsActive  int64   `bigquery:"months_active"`
	AvgMonthly    float64 `bigquery:"avg_monthly_spending"`
	StddevMonthly float64 `bigquery:"stddev_monthly_spending"`
	MinMonthly    float64 `bigquery:"min_monthly_spending"`
	MaxMonthly    float64 `bigquery:"max_monthly_spending"`
}

// MonthlySpendingTrend returns month-by-month debit spending across the
// whole transaction table, newest first.
func (s *Store) MonthlySpendingTrend(ctx context.Context) ([]*MonthlyTrendRow, error) {
	q := s.client.Query(fmt.Sprintf(`
		WITH monthly AS (
			SELECT
				year,
				month,
				customer_id,
				SUM(amount_abs) AS total_spent,
				COUNT(*) AS transaction_count,
				COUNTIF(is_fraud) AS fraud_count
			FROM %s
			WHERE amount < 0
			GROUP BY year, month, customer_id
		)
		SELECT
			year,
			month,
			COUNT(DISTINCT customer_id) AS active_customers,
			ROUND(SUM(total_spent), 2) AS total_spending,
			ROUND(AVG(total_spent), 2) AS avg_spending,
			SUM(transaction_count) AS transactions,
			SUM(fraud_count) AS fraud_count,
			CASE WHEN SUM(transaction_count) > 0
				THEN ROUND(SUM(fraud_count) / SUM(transaction_count) * 100, 2)
				ELSE 0 END AS fraud_rate_pct
		FROM monthly
		GROUP BY year, month
		ORDER BY year DESC, month DESC
	`, s.qualified(transactionsTable)))

	return readRows[MonthlyTrendRow](ctx, q, "MonthlySpendingTrend")
}

// TopSpenders returns the highest-spending customers per month, joined
// with their cleaned profile.
func (s *Store) TopSpenders(ctx context.Context, perMonth int) ([]*TopSpenderRow, error) {
	if perMonth < 1 {
		perMonth = 10
	}
	q := s.client.Query(fmt.Sprintf(`
		WITH monthly AS (
			SELECT
				year,
				month,
				customer_id,
				SUM(amount_abs) AS total_spent,
				COUNT(*) AS transactions
			FROM %s
			WHERE amount < 0
			GROUP BY year, month, customer_id
		),
		ranked AS (
			SELECT
				*,
				ROW_NUMBER() OVER (PARTITION BY year, month ORDER BY total_spent DESC) AS spending_rank
			FROM monthly
			WHERE total_spent > 0
		)
		SELECT
			r.year,
			r.month,
			r.customer_id,
			c.first_name,
			c.last_name,
			c.customer_segment,
			ROUND(r.total_spent, 2) AS total_spent,
			r.transactions,
			r.spending_rank
		FROM ranked r
		JOIN %s c ON r.customer_id = c.customer_id
		WHERE r.spending_rank <= @per_month
		ORDER BY r.year DESC, r.month DESC, r.spending_rank
	`, s.qualified(transactionsTable), s.qualified(customersTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "per_month", Value: int64(perMonth)},
	}

	return readRows[TopSpenderRow](ctx, q, "TopSpenders")
}

// SpendingVolatility returns per-customer month-to-month spending
// statistics, most volatile first.
func (s *Store) SpendingVolatility(ctx context.Context, minMonths int) ([]*VolatilityRow, error) {
	if minMonths < 2 {
		minMonths = 2
	}
	q := s.client.Query(fmt.Sprintf(`
		WITH monthly AS (
			SELECT
				customer_id,
				year,
				month,
				SUM(amount_abs) AS total_spent
			FROM %s
			WHERE amount < 0
			GROUP BY customer_id, year, month
		)
		SELECT
			customer_id,
			COUNT(*) AS months_active,
			ROUND(AVG(total_spent), 2) AS avg_monthly_spending,
			ROUND(STDDEV(total_spent), 2) AS stddev_monthly_spending,
			ROUND(MIN(total_spent), 2) AS min_monthly_spending,
			ROUND(MAX(total_spent), 2) AS max_monthly_spending
		FROM monthly
		GROUP BY customer_id
		HAVING COUNT(*) >= @min_months
		ORDER BY stddev_monthly_spending DESC
	`, s.qualified(transactionsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "min_months", Value: int64(minMonths)},
	}

	return readRows[VolatilityRow](ctx, q, "SpendingVolatility")
}

// readRows drains a query through the row iterator.
func readRows[T any](ctx context.Context, q *bigquery.Query, op string) ([]*T, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: query read: %w", op, err)
	}

	var rows []*T
	for {
		var r T
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: iter next: %w", op, err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}
