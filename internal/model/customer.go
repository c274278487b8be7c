package model

import "time"

// Customer segments assigned from fixed annual-income bands.
const (
	SegmentLowIncome    = "Low Income"
	SegmentMiddleIncome = "Middle Income"
	SegmentHighIncome   = "High Income"
	SegmentPremium      = "Premium"
)

// RawCustomer is a customer record as it arrives from the source table.
// Numeric and date fields are carried as text because the source may
// contain malformed values; the cleaner parses them and records
// validity flags instead of rejecting rows.
type RawCustomer struct {
	CustomerID       string `json:"customer_id"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	DateOfBirth      string `json:"date_of_birth"`
	Address          string `json:"address"`
	City             string `json:"city"`
	State            string `json:"state"`
	ZipCode          string `json:"zip_code"`
	AccountOpenDate  string `json:"account_open_date"`
	AccountBalance   string `json:"account_balance"`
	CreditScore      string `json:"credit_score"`
	AnnualIncome     string `json:"annual_income"`
	EmploymentStatus string `json:"employment_status"`
	RiskProfile      string `json:"risk_profile"`
}

// Customer is a cleaned, validated customer record. Field validity is
// modeled explicitly: a malformed numeric field keeps a zero value and
// a false flag rather than aborting the row.
type Customer struct {
	CustomerID string `json:"customer_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`

	Email      string `json:"email"`
	EmailValid bool   `json:"email_valid"`

	Phone        string `json:"phone"`
	PhoneCleaned string `json:"phone_cleaned"`
	PhoneValid   bool   `json:"phone_valid"`

	DateOfBirth time.Time `json:"date_of_birth"`
	Age         int       `json:"age"`
	AgeValid    bool      `json:"age_valid"`

	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`

	AccountOpenDate   time.Time `json:"account_open_date"`
	AccountTenureDays int       `json:"account_tenure_days"`

	AccountBalance float64 `json:"account_balance"`
	BalanceValid   bool    `json:"balance_valid"`

	CreditScore      float64 `json:"credit_score"`
	CreditScoreValid bool    `json:"credit_score_valid"`

	AnnualIncome float64 `json:"annual_income"`
	IncomeValid  bool    `json:"income_valid"`

	EmploymentStatus string `json:"employment_status"`
	RiskProfile      string `json:"risk_profile"`

	DataQualityScore float64 `json:"data_quality_score"`
	HighQuality      bool    `json:"high_quality"`

	// CustomerSegment is empty when the annual income is invalid.
	CustomerSegment string `json:"customer_segment"`

	// Profile is filled in by the feature aggregator. A customer with
	// no transactions keeps the zero-valued profile rather than being
	// treated as missing.
	Profile CustomerProfile `json:"profile"`
}

// CustomerProfile is the per-customer rollup of cleaned transactions.
type CustomerProfile struct {
	TotalTransactions    int     `json:"total_transactions"`
	TotalAmount          float64 `json:"total_amount"`
	AvgTransactionAmount float64 `json:"avg_transaction_amount"`
	TransactionAmountStd float64 `json:"transaction_amount_std"`
	MinTransactionAmount float64 `json:"min_transaction_amount"`
	MaxTransactionAmount float64 `json:"max_transaction_amount"`

	FirstTransactionDate time.Time `json:"first_transaction_date"`
	LastTransactionDate  time.Time `json:"last_transaction_date"`

	// TransactionSpanDays counts the active span inclusively: a single
	// transaction spans one day, never zero.
	TransactionSpanDays int     `json:"transaction_span_days"`
	TransactionsPerDay  float64 `json:"transactions_per_day"`

	UniqueCategories int `json:"unique_categories"`
	UniqueMerchants  int `json:"unique_merchants"`

	FraudTransactions int     `json:"fraud_transactions"`
	FraudRate         float64 `json:"fraud_rate"`

	WeekendTransactionRate float64 `json:"weekend_transaction_rate"`
	BusinessHoursRate      float64 `json:"business_hours_rate"`

	AvgAbsoluteAmount float64 `json:"avg_absolute_amount"`
	AbsoluteAmountStd float64 `json:"absolute_amount_std"`

	MonthlySpendingVariance float64 `json:"monthly_spending_variance"`
	PreferredCategory       string  `json:"preferred_category"`
}
