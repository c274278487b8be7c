// Package bigquery persists the cleaned, enriched tables and serves
// the analytical query catalog that runs against them.
package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/dvloznov/banking-pipeline/internal/etl"
	"github.com/dvloznov/banking-pipeline/internal/model"
)

// CustomerRow is the warehouse shape of an enriched customer.
type CustomerRow struct {
	CustomerID string `bigquery:"customer_id"`
	FirstName  string `bigquery:"first_name"`
	LastName   string `bigquery:"last_name"`

	Email      string `bigquery:"email"`
	EmailValid bool   `bigquery:"email_valid"`

	Phone        string `bigquery:"phone"`
	PhoneCleaned string `bigquery:"phone_cleaned"`
	PhoneValid   bool   `bigquery:"phone_valid"`

	DateOfBirth bigquery.NullDate `bigquery:"date_of_birth"`
	Age         int64             `bigquery:"age"`
	AgeValid    bool              `bigquery:"age_valid"`

	Address string `bigquery:"address"`
	City    string `bigquery:"city"`
	State   string `bigquery:"state"`
	ZipCode string `bigquery:"zip_code"`

	AccountOpenDate   bigquery.NullDate `bigquery:"account_open_date"`
	AccountTenureDays int64             `bigquery:"account_tenure_days"`

	AccountBalance float64 `bigquery:"account_balance"`
	BalanceValid   bool    `bigquery:"balance_valid"`

	CreditScore      float64 `bigquery:"credit_score"`
	CreditScoreValid bool    `bigquery:"credit_score_valid"`

	AnnualIncome float64 `bigquery:"annual_income"`
	IncomeValid  bool    `bigquery:"income_valid"`

	EmploymentStatus string `bigquery:"employment_status"`
	RiskProfile      string `bigquery:"risk_profile"`

	DataQualityScore float64 `bigquery:"data_quality_score"`
	HighQuality      bool    `bigquery:"high_quality"`
	CustomerSegment  string  `bigquery:"customer_segment"`

	TotalTransactions    int64   `bigquery:"total_transactions"`
	TotalAmount          float64 `bigquery:"total_amount"`
	AvgTransactionAmount float64 `bigquery:"avg_transaction_amount"`
	TransactionAmountStd float64 `bigquery:"transaction_amount_std"`
	MinTransactionAmount float64 `bigquery:"min_transaction_amount"`
	MaxTransactionAmount float64 `bigquery:"max_transaction_amount"`

	FirstTransactionDate bigquery.NullDate `bigquery:"first_transaction_date"`
	LastTransactionDate  bigquery.NullDate `bigquery:"last_transaction_date"`
	TransactionSpanDays  int64             `bigquery:"transaction_span_days"`
	TransactionsPerDay   float64           `bigquery:"transactions_per_day"`

	UniqueCategories int64 `bigquery:"unique_categories"`
	UniqueMerchants  int64 `bigquery:"unique_merchants"`

	FraudTransactions int64   `bigquery:"fraud_transactions"`
	FraudRate         float64 `bigquery:"fraud_rate"`

	WeekendTransactionRate float64 `bigquery:"weekend_transaction_rate"`
	BusinessHoursRate      float64 `bigquery:"business_hours_rate"`

	AvgAbsoluteAmount float64 `bigquery:"avg_absolute_amount"`
	AbsoluteAmountStd float64 `bigquery:"absolute_amount_std"`

	MonthlySpendingVariance float64 `bigquery:"monthly_spending_variance"`
	PreferredCategory       string  `bigquery:"preferred_category"`

	LoadedTS time.Time `bigquery:"loaded_ts"`
}

// TransactionRow is the warehouse shape of a scored transaction.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"`
	CustomerID    string `bigquery:"customer_id"`

	TransactionDatetime time.Time  `bigquery:"transaction_datetime"`
	TransactionDate     civil.Date `bigquery:"transaction_date"`

	Amount    float64 `bigquery:"amount"`
	AmountAbs float64 `bigquery:"amount_abs"`

	TransactionType string `bigquery:"transaction_type"`
	Category        string `bigquery:"category"`
	MerchantName    string `bigquery:"merchant_name"`
	MerchantCity    string `bigquery:"merchant_city"`
	MerchantState   string `bigquery:"merchant_state"`
	PaymentMethod   string `bigquery:"payment_method"`
	Description     string `bigquery:"description"`
	IsFraud         bool   `bigquery:"is_fraud"`

	Hour      int64 `bigquery:"hour"`
	DayOfWeek int64 `bigquery:"day_of_week"`
	Month     int64 `bigquery:"month"`
	Year      int64 `bigquery:"year"`
	Quarter   int64 `bigquery:"quarter"`

	IsWeekend      bool `bigquery:"is_weekend"`
	BusinessHours  bool `bigquery:"business_hours"`
	IsNight        bool `bigquery:"is_night"`
	IsEarlyMorning bool `bigquery:"is_early_morning"`
	IsLateNight    bool `bigquery:"is_late_night"`

	AmountCategory  string `bigquery:"amount_category"`
	HighAmount      bool   `bigquery:"high_amount"`
	WeekendBusiness bool   `bigquery:"weekend_business"`

	TransactionQuality float64 `bigquery:"transaction_quality"`

	AmountZScore     float64 `bigquery:"amount_zscore"`
	UnusualHour      bool    `bigquery:"unusual_hour"`
	RapidTransaction bool    `bigquery:"rapid_transaction"`
	AnomalyScore     int64   `bigquery:"anomaly_score"`
	IsAnomaly        bool    `bigquery:"is_anomaly"`

	LoadedTS time.Time `bigquery:"loaded_ts"`
}

// PipelineRunRow records one pipeline invocation in the run ledger.
type PipelineRunRow struct {
	RunID      string                 `bigquery:"run_id"`
	StartedTS  time.Time              `bigquery:"started_ts"`
	FinishedTS bigquery.NullTimestamp `bigquery:"finished_ts"`

	Status       string `bigquery:"status"`
	ErrorMessage string `bigquery:"error_message"`

	CustomersIn     bigquery.NullInt64 `bigquery:"customers_in"`
	CustomersOut    bigquery.NullInt64 `bigquery:"customers_out"`
	TransactionsIn  bigquery.NullInt64 `bigquery:"transactions_in"`
	TransactionsOut bigquery.NullInt64 `bigquery:"transactions_out"`
	Anomalies       bigquery.NullInt64 `bigquery:"anomalies"`
}

// CustomerRowFrom maps an enriched customer onto its warehouse row.
func CustomerRowFrom(c *model.Customer, loaded time.Time) *CustomerRow {
	p := c.Profile
	return &CustomerRow{
		CustomerID:   c.CustomerID,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Email:        c.Email,
		EmailValid:   c.EmailValid,
		Phone:        c.Phone,
		PhoneCleaned: c.PhoneCleaned,
		PhoneValid:   c.PhoneValid,

		DateOfBirth: nullDate(c.DateOfBirth),
		Age:         int64(c.Age),
		AgeValid:    c.AgeValid,

		Address: c.Address,
		City:    c.City,
		State:   c.State,
		ZipCode: c.ZipCode,

		AccountOpenDate:   nullDate(c.AccountOpenDate),
		AccountTenureDays: int64(c.AccountTenureDays),

		AccountBalance:   c.AccountBalance,
		BalanceValid:     c.BalanceValid,
		CreditScore:      c.CreditScore,
		CreditScoreValid: c.CreditScoreValid,
		AnnualIncome:     c.AnnualIncome,
		IncomeValid:      c.IncomeValid,

		EmploymentStatus: c.EmploymentStatus,
		RiskProfile:      c.RiskProfile,

		DataQualityScore: c.DataQualityScore,
		HighQuality:      c.HighQuality,
		CustomerSegment:  c.CustomerSegment,

		TotalTransactions:    int64(p.TotalTransactions),
		TotalAmount:          p.TotalAmount,
		AvgTransactionAmount: p.AvgTransactionAmount,
		TransactionAmountStd: p.TransactionAmountStd,
		MinTransactionAmount: p.MinTransactionAmount,
		MaxTransactionAmount: p.MaxTransactionAmount,

		FirstTransactionDate: nullDate(p.FirstTransactionDate),
		LastTransactionDate:  nullDate(p.LastTransactionDate),
		TransactionSpanDays:  int64(p.TransactionSpanDays),
		TransactionsPerDay:   p.TransactionsPerDay,

		UniqueCategories: int64(p.UniqueCategories),
		UniqueMerchants:  int64(p.UniqueMerchants),

		FraudTransactions: int64(p.FraudTransactions),
		FraudRate:         p.FraudRate,

		WeekendTransactionRate: p.WeekendTransactionRate,
		BusinessHoursRate:      p.BusinessHoursRate,

		AvgAbsoluteAmount: p.AvgAbsoluteAmount,
		AbsoluteAmountStd: p.AbsoluteAmountStd,

		MonthlySpendingVariance: p.MonthlySpendingVariance,
		PreferredCategory:       p.PreferredCategory,

		LoadedTS: loaded,
	}
}

// TransactionRowFrom maps a scored transaction onto its warehouse row.
func TransactionRowFrom(t *model.ScoredTransaction, loaded time.Time) *TransactionRow {
	return &TransactionRow{
		TransactionID: t.TransactionID,
		CustomerID:    t.CustomerID,

		TransactionDatetime: t.Timestamp,
		TransactionDate:     civil.DateOf(t.Date),

		Amount:    t.Amount,
		AmountAbs: t.AmountAbs,

		TransactionType: t.TransactionType,
		Category:        t.Category,
		MerchantName:    t.MerchantName,
		MerchantCity:    t.MerchantCity,
		MerchantState:   t.MerchantState,
		PaymentMethod:   t.PaymentMethod,
		Description:     t.Description,
		IsFraud:         t.IsFraud,

		Hour:      int64(t.Hour),
		DayOfWeek: int64(t.DayOfWeek),
		Month:     int64(t.Month),
		Year:      int64(t.Year),
		Quarter:   int64(t.Quarter),

		IsWeekend:      t.IsWeekend,
		BusinessHours:  t.BusinessHours,
		IsNight:        t.IsNight,
		IsEarlyMorning: t.IsEarlyMorning,
		IsLateNight:    t.IsLateNight,

		AmountCategory:  t.AmountCategory,
		HighAmount:      t.HighAmount,
		WeekendBusiness: t.WeekendBusiness,

		TransactionQuality: t.TransactionQuality,

		AmountZScore:     t.AmountZScore,
		UnusualHour:      t.UnusualHour,
		RapidTransaction: t.RapidTransaction,
		AnomalyScore:     int64(t.AnomalyScore),
		IsAnomaly:        t.IsAnomaly,

		LoadedTS: loaded,
	}
}

// RunCountsFrom fills the ledger counters from a completed run report.
func RunCountsFrom(report *etl.Report) (customersIn, customersOut, txIn, txOut, anomalies bigquery.NullInt64) {
	return nullInt(report.Customers.RawTotal),
		nullInt(report.Customers.Total),
		nullInt(report.Transactions.RawTotal),
		nullInt(report.Transactions.Total),
		nullInt(report.Transactions.Anomalies)
}

func nullDate(t time.Time) bigquery.NullDate {
	if t.IsZero() {
		return bigquery.NullDate{}
	}
	return bigquery.NullDate{Date: civil.DateOf(t), Valid: true}
}

func nullInt(v int) bigquery.NullInt64 {
	return bigquery.NullInt64{Int64: int64(v), Valid: true}
}
