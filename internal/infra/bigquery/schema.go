package bigquery

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
)

// EnsureDataset creates the dataset when it does not exist yet.
func (s *Store) EnsureDataset(ctx context.Context) error {
	ds := s.client.Dataset(s.dataset)
	err := ds.Create(ctx, &bigquery.DatasetMetadata{Name: s.dataset})
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == 409 {
			return nil
		}
		return fmt.Errorf("EnsureDataset: create %s: %w", s.dataset, err)
	}
	return nil
}

// EnsureTables creates the pipeline tables when they do not exist.
// Statements are idempotent so repeated runs are safe.
func (s *Store) EnsureTables(ctx context.Context) error {
	stmts := []struct {
		table string
		ddl   string
	}{
		{customersTable, customersDDL},
		{transactionsTable, transactionsDDL},
		{runsTable, runsDDL},
	}
	for _, st := range stmts {
		sql := fmt.Sprintf(st.ddl, s.qualified(st.table))
		if err := s.runAndWait(ctx, s.client.Query(sql)); err != nil {
			return fmt.Errorf("EnsureTables: %s: %w", st.table, err)
		}
	}
	return nil
}

const customersDDL = `
CREATE TABLE IF NOT EXISTS %s (
	customer_id               STRING NOT NULL,
	first_name                STRING,
	last_name                 STRING,
	email                     STRING,
	email_valid               BOOL,
	phone                     STRING,
	phone_cleaned             STRING,
	phone_valid               BOOL,
	date_of_birth             DATE,
	age                       INT64,
	age_valid                 BOOL,
	address                   STRING,
	city                      STRING,
	state                     STRING,
	zip_code                  STRING,
	account_open_date         DATE,
	account_tenure_days       INT64,
	account_balance           FLOAT64,
	balance_valid             BOOL,
	credit_score              FLOAT64,
	credit_score_valid        BOOL,
	annual_income             FLOAT64,
	income_valid              BOOL,
	employment_status         STRING,
	risk_profile              STRING,
	data_quality_score        FLOAT64,
	high_quality              BOOL,
	customer_segment          STRING,
	total_transactions        INT64,
	total_amount              FLOAT64,
	avg_transaction_amount    FLOAT64,
	transaction_amount_std    FLOAT64,
	min_transaction_amount    FLOAT64,
	max_transaction_amount    FLOAT64,
	first_transaction_date    DATE,
	last_transaction_date     DATE,
	transaction_span_days     INT64,
	transactions_per_day      FLOAT64,
	unique_categories         INT64,
	unique_merchants          INT64,
	fraud_transactions        INT64,
	fraud_rate                FLOAT64,
	weekend_transaction_rate  FLOAT64,
	business_hours_rate       FLOAT64,
	avg_absolute_amount       FLOAT64,
	absolute_amount_std       FLOAT64,
	monthly_spending_variance FLOAT64,
	preferred_category        STRING,
	loaded_ts                 TIMESTAMP NOT NULL
)
`

const transactionsDDL = `
CREATE TABLE IF NOT EXISTS %s (
	transaction_id       STRING NOT NULL,
	customer_id          STRING NOT NULL,
	transaction_datetime TIMESTAMP,
	transaction_date     DATE,
	amount               FLOAT64,
	amount_abs           FLOAT64,
	transaction_type     STRING,
	category             STRING,
	merchant_name        STRING,
	merchant_city        STRING,
	merchant_state       STRING,
	payment_method       STRING,
	description          STRING,
	is_fraud             BOOL,
	hour                 INT64,
	day_of_week          INT64,
	month                INT64,
	year                 INT64,
	quarter              INT64,
	is_weekend           BOOL,
	business_hours       BOOL,
	is_night             BOOL,
	is_early_morning     BOOL,
	is_late_night        BOOL,
	amount_category      STRING,
	high_amount          BOOL,
	weekend_business     BOOL,
	transaction_quality  FLOAT64,
	amount_zscore        FLOAT64,
	unusual_hour         BOOL,
	rapid_transaction    BOOL,
	anomaly_score        INT64,
	is_anomaly           BOOL,
	loaded_ts            TIMESTAMP NOT NULL
)
PARTITION BY transaction_date
CLUSTER BY customer_id
`

const runsDDL = `
CREATE TABLE IF NOT EXISTS %s (
	run_id           STRING NOT NULL,
	started_ts       TIMESTAMP NOT NULL,
	finished_ts      TIMESTAMP,
	status           STRING NOT NULL,
	error_message    STRING,
	customers_in     INT64,
	customers_out    INT64,
	transactions_in  INT64,
	transactions_out INT64,
	anomalies        INT64
)
`
