package etl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/banking-pipeline/internal/model"
)

var testNow = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func validRawCustomer() model.RawCustomer {
	return model.RawCustomer{
		CustomerID:       "CUST_000001",
		FirstName:        "  john ",
		LastName:         "DOE",
		Email:            "John.Doe@Example.com",
		Phone:            "(555) 123-4567 x2",
		DateOfBirth:      "1990-01-01",
		Address:          "123 main st",
		City:             "san francisco",
		State:            " ca ",
		ZipCode:          " 94103-1234 ",
		AccountOpenDate:  "2020-06-15",
		AccountBalance:   "2500.75",
		CreditScore:      "720",
		AnnualIncome:     "45000",
		EmploymentStatus: "Employed",
		RiskProfile:      "Low",
	}
}

func TestCustomerCleanerNormalizesFields(t *testing.T) {
	cleaner := NewCustomerCleaner(testNow)

	out := cleaner.Clean([]model.RawCustomer{validRawCustomer()})
	require.Len(t, out, 1)
	c := out[0]

	assert.Equal(t, "John", c.FirstName)
	assert.Equal(t, "Doe", c.LastName)
	assert.Equal(t, "123 Main St", c.Address)
	assert.Equal(t, "San Francisco", c.City)
	assert.Equal(t, "CA", c.State)
	assert.Equal(t, "94103-1234", c.ZipCode)

	assert.True(t, c.EmailValid)
	assert.Equal(t, "5551234567", c.PhoneCleaned)
	assert.True(t, c.PhoneValid)

	assert.Equal(t, 34, c.Age)
	assert.True(t, c.AgeValid)

	assert.True(t, c.BalanceValid)
	assert.True(t, c.CreditScoreValid)
	assert.True(t, c.IncomeValid)

	assert.Equal(t, 1.0, c.DataQualityScore)
	assert.True(t, c.HighQuality)
	assert.Equal(t, model.SegmentMiddleIncome, c.CustomerSegment)
}

func TestCustomerCleanerValidityFlags(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.RawCustomer)
		check  func(*testing.T, model.Customer)
	}{
		{
			"invalid email",
			func(r *model.RawCustomer) { r.Email = "not-an-email" },
			func(t *testing.T, c model.Customer) { assert.False(t, c.EmailValid) },
		},
		{
			"short phone",
			func(r *model.RawCustomer) { r.Phone = "12345" },
			func(t *testing.T, c model.Customer) { assert.False(t, c.PhoneValid) },
		},
		{
			"underage",
			func(r *model.RawCustomer) { r.DateOfBirth = "2015-01-01" },
			func(t *testing.T, c model.Customer) { assert.False(t, c.AgeValid) },
		},
		{
			"unparseable dob",
			func(r *model.RawCustomer) { r.DateOfBirth = "01/01/1990" },
			func(t *testing.T, c model.Customer) {
				assert.False(t, c.AgeValid)
				assert.True(t, c.DateOfBirth.IsZero())
			},
		},
		{
			"balance out of range keeps value",
			func(r *model.RawCustomer) { r.AccountBalance = "99999999" },
			func(t *testing.T, c model.Customer) {
				assert.False(t, c.BalanceValid)
				assert.Equal(t, 99999999.0, c.AccountBalance)
			},
		},
		{
			"credit score below floor",
			func(r *model.RawCustomer) { r.CreditScore = "250" },
			func(t *testing.T, c model.Customer) { assert.False(t, c.CreditScoreValid) },
		},
		{
			"negative income",
			func(r *model.RawCustomer) { r.AnnualIncome = "-1" },
			func(t *testing.T, c model.Customer) {
				assert.False(t, c.IncomeValid)
				assert.Empty(t, c.CustomerSegment)
			},
		},
		{
			"malformed income",
			func(r *model.RawCustomer) { r.AnnualIncome = "lots" },
			func(t *testing.T, c model.Customer) {
				assert.False(t, c.IncomeValid)
				assert.Empty(t, c.CustomerSegment)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRawCustomer()
			tt.mutate(&raw)

			out := NewCustomerCleaner(testNow).Clean([]model.RawCustomer{raw})
			require.Len(t, out, 1)
			tt.check(t, out[0])
		})
	}
}

func TestCustomerCleanerQualityScore(t *testing.T) {
	raw := validRawCustomer()
	raw.Email = "broken"

	out := NewCustomerCleaner(testNow).Clean([]model.RawCustomer{raw})
	require.Len(t, out, 1)

	// Five of six checks pass: 0.833 is still above the 0.8 bar.
	assert.InDelta(t, 5.0/6.0, out[0].DataQualityScore, 1e-9)
	assert.True(t, out[0].HighQuality)

	raw.Phone = "12"
	out = NewCustomerCleaner(testNow).Clean([]model.RawCustomer{raw})
	require.Len(t, out, 1)
	assert.InDelta(t, 4.0/6.0, out[0].DataQualityScore, 1e-9)
	assert.False(t, out[0].HighQuality)
}

func TestCustomerCleanerDeduplicates(t *testing.T) {
	a := validRawCustomer()
	a.FirstName = "first"

	sameID := validRawCustomer()
	sameID.FirstName = "duplicate id"
	sameID.Email = "other@example.com"

	sameEmail := validRawCustomer()
	sameEmail.CustomerID = "CUST_000002"
	sameEmail.FirstName = "duplicate email"

	kept := validRawCustomer()
	kept.CustomerID = "CUST_000003"
	kept.Email = "third@example.com"

	out := NewCustomerCleaner(testNow).Clean([]model.RawCustomer{a, sameID, sameEmail, kept})

	require.Len(t, out, 2)
	assert.Equal(t, "First", out[0].FirstName)
	assert.Equal(t, "CUST_000003", out[1].CustomerID)
}

func TestSegmentForIncome(t *testing.T) {
	tests := []struct {
		income float64
		want   string
	}{
		{0, model.SegmentLowIncome},
		{29999.99, model.SegmentLowIncome},
		{30000, model.SegmentMiddleIncome},
		{45000, model.SegmentMiddleIncome},
		{60000, model.SegmentHighIncome},
		{99999.99, model.SegmentHighIncome},
		{100000, model.SegmentPremium},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, segmentForIncome(tt.income), "income %v", tt.income)
	}
}

// Cleaning already-cleaned values changes nothing: the cleaner is a
// projection.
func TestCustomerCleanerIdempotent(t *testing.T) {
	cleaner := NewCustomerCleaner(testNow)

	first := cleaner.Clean([]model.RawCustomer{validRawCustomer()})
	require.Len(t, first, 1)

	roundTrip := model.RawCustomer{
		CustomerID:       first[0].CustomerID,
		FirstName:        first[0].FirstName,
		LastName:         first[0].LastName,
		Email:            first[0].Email,
		Phone:            first[0].Phone,
		DateOfBirth:      first[0].DateOfBirth.Format("2006-01-02"),
		Address:          first[0].Address,
		City:             first[0].City,
		State:            first[0].State,
		ZipCode:          first[0].ZipCode,
		AccountOpenDate:  first[0].AccountOpenDate.Format("2006-01-02"),
		AccountBalance:   "2500.75",
		CreditScore:      "720",
		AnnualIncome:     "45000",
		EmploymentStatus: first[0].EmploymentStatus,
		RiskProfile:      first[0].RiskProfile,
	}

	second := cleaner.Clean([]model.RawCustomer{roundTrip})
	require.Len(t, second, 1)
	assert.Equal(t, first[0], second[0])
}
