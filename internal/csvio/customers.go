package csvio

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dvloznov/banking-pipeline/internal/model"
)

var rawCustomerColumns = []string{
	"customer_id", "first_name", "last_name", "email", "phone",
	"date_of_birth", "address", "city", "state", "zip_code",
	"account_open_date", "account_balance", "credit_score",
	"annual_income", "employment_status", "risk_profile",
}

// ReadRawCustomers reads a raw customer table. Rows are taken as-is;
// all validation happens in the cleaner.
func ReadRawCustomers(r io.Reader) ([]model.RawCustomer, error) {
	cr := newReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return nil, fmt.Errorf("ReadRawCustomers: %w", err)
	}

	var out []model.RawCustomer
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ReadRawCustomers: row %d: %w", len(out)+2, err)
		}
		out = append(out, model.RawCustomer{
			CustomerID:       h.get(record, "customer_id"),
			FirstName:        h.get(record, "first_name"),
			LastName:         h.get(record, "last_name"),
			Email:            h.get(record, "email"),
			Phone:            h.get(record, "phone"),
			DateOfBirth:      h.get(record, "date_of_birth"),
			Address:          h.get(record, "address"),
			City:             h.get(record, "city"),
			State:            h.get(record, "state"),
			ZipCode:          h.get(record, "zip_code"),
			AccountOpenDate:  h.get(record, "account_open_date"),
			AccountBalance:   h.get(record, "account_balance"),
			CreditScore:      h.get(record, "credit_score"),
			AnnualIncome:     h.get(record, "annual_income"),
			EmploymentStatus: h.get(record, "employment_status"),
			RiskProfile:      h.get(record, "risk_profile"),
		})
	}
	return out, nil
}

// WriteRawCustomers writes the raw customer table, typically generator
// output destined for a pipeline run.
func WriteRawCustomers(w io.Writer, customers []model.RawCustomer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rawCustomerColumns); err != nil {
		return fmt.Errorf("WriteRawCustomers: header: %w", err)
	}
	for _, c := range customers {
		record := []string{
			c.CustomerID, c.FirstName, c.LastName, c.Email, c.Phone,
			c.DateOfBirth, c.Address, c.City, c.State, c.ZipCode,
			c.AccountOpenDate, c.AccountBalance, c.CreditScore,
			c.AnnualIncome, c.EmploymentStatus, c.RiskProfile,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("WriteRawCustomers: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

var cleanedCustomerColumns = []string{
	"customer_id", "first_name", "last_name", "email", "email_valid",
	"phone", "phone_cleaned", "phone_valid", "date_of_birth", "age",
	"age_valid", "address", "city", "state", "zip_code",
	"account_open_date", "account_tenure_days", "account_balance",
	"balance_valid", "credit_score", "credit_score_valid",
	"annual_income", "income_valid", "employment_status", "risk_profile",
	"data_quality_score", "high_quality", "customer_segment",
	"total_transactions", "total_amount", "avg_transaction_amount",
	"transaction_amount_std", "min_transaction_amount",
	"max_transaction_amount", "first_transaction_date",
	"last_transaction_date", "transaction_span_days",
	"transactions_per_day", "unique_categories", "unique_merchants",
	"fraud_transactions", "fraud_rate", "weekend_transaction_rate",
	"business_hours_rate", "avg_absolute_amount", "absolute_amount_std",
	"monthly_spending_variance", "preferred_category",
}

// ReadCustomers reads an enriched customer table previously written by
// WriteCustomers, typically to load it into the warehouse.
func ReadCustomers(r io.Reader) ([]model.Customer, error) {
	cr := newReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return nil, fmt.Errorf("ReadCustomers: %w", err)
	}

	var out []model.Customer
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ReadCustomers: row %d: %w", len(out)+2, err)
		}
		c := model.Customer{
			CustomerID:        h.get(record, "customer_id"),
			FirstName:         h.get(record, "first_name"),
			LastName:          h.get(record, "last_name"),
			Email:             h.get(record, "email"),
			EmailValid:        parseBool(h.get(record, "email_valid")),
			Phone:             h.get(record, "phone"),
			PhoneCleaned:      h.get(record, "phone_cleaned"),
			PhoneValid:        parseBool(h.get(record, "phone_valid")),
			DateOfBirth:       parseDate(h.get(record, "date_of_birth")),
			Age:               parseInt(h.get(record, "age")),
			AgeValid:          parseBool(h.get(record, "age_valid")),
			Address:           h.get(record, "address"),
			City:              h.get(record, "city"),
			State:             h.get(record, "state"),
			ZipCode:           h.get(record, "zip_code"),
			AccountOpenDate:   parseDate(h.get(record, "account_open_date")),
			AccountTenureDays: parseInt(h.get(record, "account_tenure_days")),
			AccountBalance:    parseFloat(h.get(record, "account_balance")),
			BalanceValid:      parseBool(h.get(record, "balance_valid")),
			CreditScore:       parseFloat(h.get(record, "credit_score")),
			CreditScoreValid:  parseBool(h.get(record, "credit_score_valid")),
			AnnualIncome:      parseFloat(h.get(record, "annual_income")),
			IncomeValid:       parseBool(h.get(record, "income_valid")),
			EmploymentStatus:  h.get(record, "employment_status"),
			RiskProfile:       h.get(record, "risk_profile"),
			DataQualityScore:  parseFloat(h.get(record, "data_quality_score")),
			HighQuality:       parseBool(h.get(record, "high_quality")),
			CustomerSegment:   h.get(record, "customer_segment"),
		}
		c.Profile = model.CustomerProfile{
			TotalTransactions:       parseInt(h.get(record, "total_transactions")),
			TotalAmount:             parseFloat(h.get(record, "total_amount")),
			AvgTransactionAmount:    parseFloat(h.get(record, "avg_transaction_amount")),
			TransactionAmountStd:    parseFloat(h.get(record, "transaction_amount_std")),
			MinTransactionAmount:    parseFloat(h.get(record, "min_transaction_amount")),
			MaxTransactionAmount:    parseFloat(h.get(record, "max_transaction_amount")),
			FirstTransactionDate:    parseDate(h.get(record, "first_transaction_date")),
			LastTransactionDate:     parseDate(h.get(record, "last_transaction_date")),
			TransactionSpanDays:     parseInt(h.get(record, "transaction_span_days")),
			TransactionsPerDay:      parseFloat(h.get(record, "transactions_per_day")),
			UniqueCategories:        parseInt(h.get(record, "unique_categories")),
			UniqueMerchants:         parseInt(h.get(record, "unique_merchants")),
			FraudTransactions:       parseInt(h.get(record, "fraud_transactions")),
			FraudRate:               parseFloat(h.get(record, "fraud_rate")),
			WeekendTransactionRate:  parseFloat(h.get(record, "weekend_transaction_rate")),
			BusinessHoursRate:       parseFloat(h.get(record, "business_hours_rate")),
			AvgAbsoluteAmount:       parseFloat(h.get(record, "avg_absolute_amount")),
			AbsoluteAmountStd:       parseFloat(h.get(record, "absolute_amount_std")),
			MonthlySpendingVariance: parseFloat(h.get(record, "monthly_spending_variance")),
			PreferredCategory:       h.get(record, "preferred_category"),
		}
		out = append(out, c)
	}
	return out, nil
}

// WriteCustomers writes the enriched customer table: cleaned fields
// plus the per-customer aggregate profile.
func WriteCustomers(w io.Writer, customers []model.Customer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(cleanedCustomerColumns); err != nil {
		return fmt.Errorf("WriteCustomers: header: %w", err)
	}
	for _, c := range customers {
		p := c.Profile
		record := []string{
			c.CustomerID, c.FirstName, c.LastName, c.Email, formatBool(c.EmailValid),
			c.Phone, c.PhoneCleaned, formatBool(c.PhoneValid), formatDate(c.DateOfBirth), formatInt(c.Age),
			formatBool(c.AgeValid), c.Address, c.City, c.State, c.ZipCode,
			formatDate(c.AccountOpenDate), formatInt(c.AccountTenureDays), formatFloat(c.AccountBalance),
			formatBool(c.BalanceValid), formatFloat(c.CreditScore), formatBool(c.CreditScoreValid),
			formatFloat(c.AnnualIncome), formatBool(c.IncomeValid), c.EmploymentStatus, c.RiskProfile,
			formatFloat(c.DataQualityScore), formatBool(c.HighQuality), c.CustomerSegment,
			formatInt(p.TotalTransactions), formatFloat(p.TotalAmount), formatFloat(p.AvgTransactionAmount),
			formatFloat(p.TransactionAmountStd), formatFloat(p.MinTransactionAmount),
			formatFloat(p.MaxTransactionAmount), formatDate(p.FirstTransactionDate),
			formatDate(p.LastTransactionDate), formatInt(p.TransactionSpanDays),
			formatFloat(p.TransactionsPerDay), formatInt(p.UniqueCategories), formatInt(p.UniqueMerchants),
			formatInt(p.FraudTransactions), formatFloat(p.FraudRate), formatFloat(p.WeekendTransactionRate),
			formatFloat(p.BusinessHoursRate), formatFloat(p.AvgAbsoluteAmount), formatFloat(p.AbsoluteAmountStd),
			formatFloat(p.MonthlySpendingVariance), p.PreferredCategory,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("WriteCustomers: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
