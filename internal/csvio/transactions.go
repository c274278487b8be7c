package csvio

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dvloznov/banking-pipeline/internal/model"
)

var rawTransactionColumns = []string{
	"transaction_id", "customer_id", "transaction_date",
	"transaction_time", "amount", "transaction_type", "category",
	"merchant_name", "merchant_city", "merchant_state",
	"payment_method", "is_fraud", "description",
}

// ReadRawTransactions reads a raw transaction table.
func ReadRawTransactions(r io.Reader) ([]model.RawTransaction, error) {
	cr := newReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return nil, fmt.Errorf("ReadRawTransactions: %w", err)
	}

	var out []model.RawTransaction
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ReadRawTransactions: row %d: %w", len(out)+2, err)
		}
		out = append(out, model.RawTransaction{
			TransactionID:   h.get(record, "transaction_id"),
			CustomerID:      h.get(record, "customer_id"),
			TransactionDate: h.get(record, "transaction_date"),
			TransactionTime: h.get(record, "transaction_time"),
			Amount:          h.get(record, "amount"),
			TransactionType: h.get(record, "transaction_type"),
			Category:        h.get(record, "category"),
			MerchantName:    h.get(record, "merchant_name"),
			MerchantCity:    h.get(record, "merchant_city"),
			MerchantState:   h.get(record, "merchant_state"),
			PaymentMethod:   h.get(record, "payment_method"),
			IsFraud:         h.get(record, "is_fraud"),
			Description:     h.get(record, "description"),
		})
	}
	return out, nil
}

// WriteRawTransactions writes the raw transaction table.
func WriteRawTransactions(w io.Writer, txs []model.RawTransaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rawTransactionColumns); err != nil {
		return fmt.Errorf("WriteRawTransactions: header: %w", err)
	}
	for _, t := range txs {
		record := []string{
			t.TransactionID, t.CustomerID, t.TransactionDate,
			t.TransactionTime, t.Amount, t.TransactionType, t.Category,
			t.MerchantName, t.MerchantCity, t.MerchantState,
			t.PaymentMethod, t.IsFraud, t.Description,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("WriteRawTransactions: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

var scoredTransactionColumns = []string{
	"transaction_id", "customer_id", "transaction_datetime",
	"transaction_date", "amount", "amount_abs", "amount_valid",
	"customer_exists", "transaction_type", "category", "merchant_name",
	"merchant_city", "merchant_state", "payment_method", "description",
	"is_fraud", "hour", "day_of_week", "month", "year", "quarter",
	"is_weekend", "business_hours", "is_night", "is_early_morning",
	"is_late_night", "amount_category", "high_amount",
	"weekend_business", "transaction_quality", "amount_zscore",
	"unusual_hour", "rapid_transaction", "anomaly_score", "is_anomaly",
}

// ReadScoredTransactions reads a scored transaction table previously
// written by WriteScoredTransactions.
func ReadScoredTransactions(r io.Reader) ([]model.ScoredTransaction, error) {
	cr := newReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return nil, fmt.Errorf("ReadScoredTransactions: %w", err)
	}

	var out []model.ScoredTransaction
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ReadScoredTransactions: row %d: %w", len(out)+2, err)
		}
		t := model.ScoredTransaction{
			Transaction: model.Transaction{
				TransactionID:      h.get(record, "transaction_id"),
				CustomerID:         h.get(record, "customer_id"),
				Timestamp:          parseTimestamp(h.get(record, "transaction_datetime")),
				Date:               parseDate(h.get(record, "transaction_date")),
				Amount:             parseFloat(h.get(record, "amount")),
				AmountAbs:          parseFloat(h.get(record, "amount_abs")),
				AmountValid:        parseBool(h.get(record, "amount_valid")),
				CustomerExists:     parseBool(h.get(record, "customer_exists")),
				TransactionType:    h.get(record, "transaction_type"),
				Category:           h.get(record, "category"),
				MerchantName:       h.get(record, "merchant_name"),
				MerchantCity:       h.get(record, "merchant_city"),
				MerchantState:      h.get(record, "merchant_state"),
				PaymentMethod:      h.get(record, "payment_method"),
				Description:        h.get(record, "description"),
				IsFraud:            parseBool(h.get(record, "is_fraud")),
				Hour:               parseInt(h.get(record, "hour")),
				DayOfWeek:          parseInt(h.get(record, "day_of_week")),
				Month:              parseInt(h.get(record, "month")),
				Year:               parseInt(h.get(record, "year")),
				Quarter:            parseInt(h.get(record, "quarter")),
				IsWeekend:          parseBool(h.get(record, "is_weekend")),
				BusinessHours:      parseBool(h.get(record, "business_hours")),
				IsNight:            parseBool(h.get(record, "is_night")),
				IsEarlyMorning:     parseBool(h.get(record, "is_early_morning")),
				IsLateNight:        parseBool(h.get(record, "is_late_night")),
				AmountCategory:     h.get(record, "amount_category"),
				HighAmount:         parseBool(h.get(record, "high_amount")),
				WeekendBusiness:    parseBool(h.get(record, "weekend_business")),
				TransactionQuality: parseFloat(h.get(record, "transaction_quality")),
			},
			AmountZScore:     parseFloat(h.get(record, "amount_zscore")),
			UnusualHour:      parseBool(h.get(record, "unusual_hour")),
			RapidTransaction: parseBool(h.get(record, "rapid_transaction")),
			AnomalyScore:     parseInt(h.get(record, "anomaly_score")),
			IsAnomaly:        parseBool(h.get(record, "is_anomaly")),
		}
		out = append(out, t)
	}
	return out, nil
}

// WriteScoredTransactions writes the cleaned, anomaly-scored
// transaction table.
func WriteScoredTransactions(w io.Writer, txs []model.ScoredTransaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(scoredTransactionColumns); err != nil {
		return fmt.Errorf("WriteScoredTransactions: header: %w", err)
	}
	for _, t := range txs {
		record := []string{
			t.TransactionID, t.CustomerID, formatTimestamp(t.Timestamp),
			formatDate(t.Date), formatFloat(t.Amount), formatFloat(t.AmountAbs), formatBool(t.AmountValid),
			formatBool(t.CustomerExists), t.TransactionType, t.Category, t.MerchantName,
			t.MerchantCity, t.MerchantState, t.PaymentMethod, t.Description,
			formatBool(t.IsFraud), formatInt(t.Hour), formatInt(t.DayOfWeek), formatInt(t.Month),
			formatInt(t.Year), formatInt(t.Quarter),
			formatBool(t.IsWeekend), formatBool(t.BusinessHours), formatBool(t.IsNight),
			formatBool(t.IsEarlyMorning), formatBool(t.IsLateNight), t.AmountCategory,
			formatBool(t.HighAmount), formatBool(t.WeekendBusiness), formatFloat(t.TransactionQuality),
			formatFloat(t.AmountZScore), formatBool(t.UnusualHour), formatBool(t.RapidTransaction),
			formatInt(t.AnomalyScore), formatBool(t.IsAnomaly),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("WriteScoredTransactions: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
