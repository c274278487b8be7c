package etl

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/banking-pipeline/internal/model"
)

func knownCustomers(ids ...string) []model.Customer {
	out := make([]model.Customer, len(ids))
	for i, id := range ids {
		out[i] = model.Customer{CustomerID: id}
	}
	return out
}

func validRawTransaction() model.RawTransaction {
	return model.RawTransaction{
		TransactionID:   "TXN_000000000001",
		CustomerID:      "CUST_000001",
		TransactionDate: "2023-06-12",
		TransactionTime: "14:30:00",
		Amount:          "-125.50",
		TransactionType: "Debit",
		Category:        "groceries",
		MerchantName:    "whole foods",
		MerchantCity:    "san francisco",
		MerchantState:   " ca ",
		PaymentMethod:   "Credit Card",
		IsFraud:         "False",
		Description:     "Weekly shop",
	}
}

func TestTransactionCleanerDerivedFeatures(t *testing.T) {
	cleaner := NewTransactionCleaner(testNow)

	out := cleaner.Clean([]model.RawTransaction{validRawTransaction()}, knownCustomers("CUST_000001"))
	require.Len(t, out, 1)
	tx := out[0]

	assert.Equal(t, time.Date(2023, time.June, 12, 14, 30, 0, 0, time.UTC), tx.Timestamp)
	assert.Equal(t, time.Date(2023, time.June, 12, 0, 0, 0, 0, time.UTC), tx.Date)

	assert.Equal(t, -125.50, tx.Amount)
	assert.Equal(t, 125.50, tx.AmountAbs)
	assert.True(t, tx.AmountValid)
	assert.True(t, tx.CustomerExists)

	assert.Equal(t, "Groceries", tx.Category)
	assert.Equal(t, "Whole Foods", tx.MerchantName)
	assert.Equal(t, "San Francisco", tx.MerchantCity)
	assert.Equal(t, "CA", tx.MerchantState)
	assert.False(t, tx.IsFraud)

	// 2023-06-12 is a Monday.
	assert.Equal(t, 14, tx.Hour)
	assert.Equal(t, 0, tx.DayOfWeek)
	assert.Equal(t, 6, tx.Month)
	assert.Equal(t, 2023, tx.Year)
	assert.Equal(t, 2, tx.Quarter)

	assert.False(t, tx.IsWeekend)
	assert.True(t, tx.BusinessHours)
	assert.False(t, tx.IsNight)
	assert.False(t, tx.IsEarlyMorning)
	assert.False(t, tx.IsLateNight)

	assert.Equal(t, model.AmountMedium, tx.AmountCategory)
	assert.False(t, tx.WeekendBusiness)
	assert.Equal(t, 1.0, tx.TransactionQuality)
}

func TestTransactionCleanerTimeFallsBackToMidnight(t *testing.T) {
	raw := validRawTransaction()
	raw.TransactionTime = "25:99"

	out := NewTransactionCleaner(testNow).Clean([]model.RawTransaction{raw}, knownCustomers("CUST_000001"))
	require.Len(t, out, 1)

	assert.Equal(t, out[0].Date, out[0].Timestamp)
	assert.Equal(t, 0, out[0].Hour)
	assert.True(t, out[0].IsNight)
	assert.True(t, out[0].IsLateNight)
	assert.False(t, out[0].BusinessHours)
}

func TestTransactionCleanerRemovesRows(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.RawTransaction)
	}{
		{"unparseable date", func(r *model.RawTransaction) { r.TransactionDate = "12/06/2023" }},
		{"date before window", func(r *model.RawTransaction) { r.TransactionDate = "2019-12-31" }},
		{"date after reference day", func(r *model.RawTransaction) { r.TransactionDate = "2024-01-02" }},
		{"zero amount", func(r *model.RawTransaction) { r.Amount = "0" }},
		{"amount at cap", func(r *model.RawTransaction) { r.Amount = "100000" }},
		{"malformed amount", func(r *model.RawTransaction) { r.Amount = "abc" }},
		{"unknown customer", func(r *model.RawTransaction) { r.CustomerID = "CUST_999999" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRawTransaction()
			tt.mutate(&raw)

			out := NewTransactionCleaner(testNow).Clean([]model.RawTransaction{raw}, knownCustomers("CUST_000001"))
			assert.Empty(t, out)
		})
	}
}

func TestTransactionCleanerKeepsReferenceDay(t *testing.T) {
	raw := validRawTransaction()
	raw.TransactionDate = "2024-01-01"

	out := NewTransactionCleaner(testNow).Clean([]model.RawTransaction{raw}, knownCustomers("CUST_000001"))
	assert.Len(t, out, 1)
}

func TestTransactionCleanerDeduplicates(t *testing.T) {
	first := validRawTransaction()
	dup := validRawTransaction()
	dup.Amount = "-999"

	out := NewTransactionCleaner(testNow).Clean([]model.RawTransaction{first, dup}, knownCustomers("CUST_000001"))
	require.Len(t, out, 1)
	assert.Equal(t, -125.50, out[0].Amount)
}

func TestTransactionCleanerNegativeAmountsSurvive(t *testing.T) {
	raw := validRawTransaction()
	raw.Amount = "-99999.99"

	out := NewTransactionCleaner(testNow).Clean([]model.RawTransaction{raw}, knownCustomers("CUST_000001"))
	require.Len(t, out, 1)
	assert.Equal(t, -99999.99, out[0].Amount)
	assert.Equal(t, 99999.99, out[0].AmountAbs)
	assert.Equal(t, model.AmountVeryLarge, out[0].AmountCategory)
}

func TestTransactionCleanerWeekendBusiness(t *testing.T) {
	raw := validRawTransaction()
	raw.TransactionDate = "2023-06-10" // Saturday
	raw.Category = "bill payment"

	out := NewTransactionCleaner(testNow).Clean([]model.RawTransaction{raw}, knownCustomers("CUST_000001"))
	require.Len(t, out, 1)

	assert.Equal(t, 5, out[0].DayOfWeek)
	assert.True(t, out[0].IsWeekend)
	assert.False(t, out[0].BusinessHours)
	assert.True(t, out[0].WeekendBusiness)
}

func TestFlagHighAmounts(t *testing.T) {
	raws := make([]model.RawTransaction, 100)
	for i := range raws {
		r := validRawTransaction()
		r.TransactionID = fmt.Sprintf("TXN_%012d", i)
		r.Amount = fmt.Sprintf("-%d", i+1)
		raws[i] = r
	}

	out := NewTransactionCleaner(testNow).Clean(raws, knownCustomers("CUST_000001"))
	require.Len(t, out, 100)

	// p99 over 1..100 interpolates to 99.01, so only the 100 crosses it.
	flagged := 0
	for _, tx := range out {
		if tx.HighAmount {
			flagged++
			assert.Equal(t, 100.0, tx.AmountAbs)
		}
	}
	assert.Equal(t, 1, flagged)
}

func TestAmountCategoryBands(t *testing.T) {
	tests := []struct {
		abs  float64
		want string
	}{
		{0.5, model.AmountMicro},
		{9.99, model.AmountMicro},
		{10, model.AmountSmall},
		{49.99, model.AmountSmall},
		{50, model.AmountMedium},
		{199.99, model.AmountMedium},
		{200, model.AmountLarge},
		{999.99, model.AmountLarge},
		{1000, model.AmountVeryLarge},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, amountCategory(tt.abs), "abs %v", tt.abs)
	}
}

func TestMondayIndexed(t *testing.T) {
	assert.Equal(t, 0, mondayIndexed(time.Monday))
	assert.Equal(t, 4, mondayIndexed(time.Friday))
	assert.Equal(t, 5, mondayIndexed(time.Saturday))
	assert.Equal(t, 6, mondayIndexed(time.Sunday))
}
