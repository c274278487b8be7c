package model

import "time"

// Amount-size categories assigned from fixed absolute-value bands.
const (
	AmountMicro     = "Micro"
	AmountSmall     = "Small"
	AmountMedium    = "Medium"
	AmountLarge     = "Large"
	AmountVeryLarge = "Very Large"
)

// RawTransaction is a transaction record as it arrives from the source
// table, with text-typed numeric, date and boolean fields.
type RawTransaction struct {
	TransactionID   string `json:"transaction_id"`
	CustomerID      string `json:"customer_id"`
	TransactionDate string `json:"transaction_date"`
	TransactionTime string `json:"transaction_time"`
	Amount          string `json:"amount"`
	TransactionType string `json:"transaction_type"`
	Category        string `json:"category"`
	MerchantName    string `json:"merchant_name"`
	MerchantCity    string `json:"merchant_city"`
	MerchantState   string `json:"merchant_state"`
	PaymentMethod   string `json:"payment_method"`
	IsFraud         string `json:"is_fraud"`
	Description     string `json:"description"`
}

// Transaction is a cleaned, feature-enriched transaction record.
// Rows that fail the amount, customer-reference or date-window checks
// are removed during cleaning and never reach this type's consumers.
type Transaction struct {
	TransactionID string `json:"transaction_id"`
	CustomerID    string `json:"customer_id"`

	// Timestamp combines the source date and time-of-day. When the
	// time component failed to parse it is midnight.
	Timestamp time.Time `json:"transaction_datetime"`
	Date      time.Time `json:"transaction_date"`

	Amount      float64 `json:"amount"`
	AmountAbs   float64 `json:"amount_abs"`
	AmountValid bool    `json:"amount_valid"`

	CustomerExists bool `json:"customer_exists"`

	TransactionType string `json:"transaction_type"`
	Category        string `json:"category"`
	MerchantName    string `json:"merchant_name"`
	MerchantCity    string `json:"merchant_city"`
	MerchantState   string `json:"merchant_state"`
	PaymentMethod   string `json:"payment_method"`
	Description     string `json:"description"`
	IsFraud         bool   `json:"is_fraud"`

	Hour      int `json:"hour"`
	DayOfWeek int `json:"day_of_week"` // 0=Monday
	Month     int `json:"month"`
	Year      int `json:"year"`
	Quarter   int `json:"quarter"`

	IsWeekend      bool `json:"is_weekend"`
	BusinessHours  bool `json:"business_hours"`
	IsNight        bool `json:"is_night"`
	IsEarlyMorning bool `json:"is_early_morning"`
	IsLateNight    bool `json:"is_late_night"`

	AmountCategory string `json:"amount_category"`

	// HighAmount is a whole-batch property: it flags amounts strictly
	// above the 99th percentile of absolute amounts across the entire
	// cleaned output set, recomputed each run.
	HighAmount      bool `json:"high_amount"`
	WeekendBusiness bool `json:"weekend_business"`

	TransactionQuality float64 `json:"transaction_quality"`
}

// ScoredTransaction annotates a cleaned transaction with the composite
// anomaly signals.
type ScoredTransaction struct {
	Transaction

	AmountZScore     float64 `json:"amount_zscore"`
	UnusualHour      bool    `json:"unusual_hour"`
	RapidTransaction bool    `json:"rapid_transaction"`
	AnomalyScore     int     `json:"anomaly_score"`
	IsAnomaly        bool    `json:"is_anomaly"`
}
