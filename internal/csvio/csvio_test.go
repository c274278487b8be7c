package csvio

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/banking-pipeline/internal/model"
)

func TestRawCustomersRoundTrip(t *testing.T) {
	in := []model.RawCustomer{
		{
			CustomerID:     "CUST_000001",
			FirstName:      "john",
			LastName:       "DOE",
			Email:          "John.Doe@Example.com",
			Phone:          "(555) 123-4567",
			DateOfBirth:    "1990-01-01",
			Address:        "12 Main St, Apt 4",
			City:           "Springfield",
			State:          "IL",
			ZipCode:        "62704",
			AccountBalance: "2500.75",
			AnnualIncome:   "not-a-number",
		},
		{CustomerID: "CUST_000002"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRawCustomers(&buf, in))

	out, err := ReadRawCustomers(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestRawTransactionsRoundTrip(t *testing.T) {
	in := []model.RawTransaction{
		{
			TransactionID:   "TXN_000000000001",
			CustomerID:      "CUST_000001",
			TransactionDate: "2023-06-12",
			TransactionTime: "14:30:00",
			Amount:          "-125.50",
			TransactionType: "Debit",
			Category:        "Groceries",
			MerchantName:    "Whole Foods",
			Description:     "Weekly shop, with a comma",
			IsFraud:         "false",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRawTransactions(&buf, in))

	out, err := ReadRawTransactions(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestCustomersRoundTrip(t *testing.T) {
	in := []model.Customer{
		{
			CustomerID:        "CUST_000001",
			FirstName:         "John",
			LastName:          "Doe",
			Email:             "john.doe@example.com",
			EmailValid:        true,
			Phone:             "(555) 123-4567",
			PhoneCleaned:      "5551234567",
			PhoneValid:        true,
			DateOfBirth:       time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
			Age:               34,
			AgeValid:          true,
			AccountOpenDate:   time.Date(2021, time.March, 15, 0, 0, 0, 0, time.UTC),
			AccountTenureDays: 1023,
			AccountBalance:    2500.75,
			BalanceValid:      true,
			CreditScore:       720,
			CreditScoreValid:  true,
			AnnualIncome:      45000,
			IncomeValid:       true,
			DataQualityScore:  1,
			HighQuality:       true,
			CustomerSegment:   model.SegmentMiddleIncome,
			Profile: model.CustomerProfile{
				TotalTransactions:    3,
				TotalAmount:          -70,
				AvgTransactionAmount: -23.33,
				FirstTransactionDate: time.Date(2023, time.January, 10, 0, 0, 0, 0, time.UTC),
				LastTransactionDate:  time.Date(2023, time.February, 5, 0, 0, 0, 0, time.UTC),
				TransactionSpanDays:  27,
				TransactionsPerDay:   0.111,
				UniqueCategories:     2,
				UniqueMerchants:      2,
				PreferredCategory:    "Groceries",
			},
		},
		// No transactions: dates stay zero and must survive as empty
		// cells.
		{CustomerID: "CUST_000002"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCustomers(&buf, in))

	out, err := ReadCustomers(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestScoredTransactionsRoundTrip(t *testing.T) {
	in := []model.ScoredTransaction{
		{
			Transaction: model.Transaction{
				TransactionID:      "TXN_000000000001",
				CustomerID:         "CUST_000001",
				Timestamp:          time.Date(2023, time.June, 12, 14, 30, 0, 0, time.UTC),
				Date:               time.Date(2023, time.June, 12, 0, 0, 0, 0, time.UTC),
				Amount:             -125.5,
				AmountAbs:          125.5,
				AmountValid:        true,
				CustomerExists:     true,
				TransactionType:    "Debit",
				Category:           "Groceries",
				MerchantName:       "Whole Foods",
				Hour:               14,
				Month:              6,
				Year:               2023,
				Quarter:            2,
				BusinessHours:      true,
				AmountCategory:     model.AmountMedium,
				TransactionQuality: 1,
			},
			AmountZScore: -0.218,
			AnomalyScore: 0,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteScoredTransactions(&buf, in))

	out, err := ReadScoredTransactions(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReadersTolerateReorderedColumns(t *testing.T) {
	data := "email,customer_id,first_name\n" +
		"a@example.com,CUST_000001,John\n"

	out, err := ReadRawCustomers(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, "CUST_000001", out[0].CustomerID)
	assert.Equal(t, "John", out[0].FirstName)
	assert.Equal(t, "a@example.com", out[0].Email)
	// Columns absent from the file read back empty.
	assert.Empty(t, out[0].Phone)
}

func TestReadersTolerateRaggedRows(t *testing.T) {
	data := "transaction_id,customer_id,amount\n" +
		"TXN_1,CUST_000001\n" +
		"TXN_2,CUST_000001,-10.5,extra\n"

	out, err := ReadRawTransactions(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Empty(t, out[0].Amount)
	assert.Equal(t, "-10.5", out[1].Amount)
}

func TestReadRawCustomersEmptyInput(t *testing.T) {
	_, err := ReadRawCustomers(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseHelpersDegradeToZero(t *testing.T) {
	assert.Equal(t, 0.0, parseFloat("abc"))
	assert.Equal(t, 0, parseInt(""))
	assert.False(t, parseBool("maybe"))
	assert.True(t, parseDate("").IsZero())
	assert.True(t, parseTimestamp("13/06/2023").IsZero())
}
