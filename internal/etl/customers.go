package etl

import (
	"math"
	"regexp"
	"time"

	"github.com/dvloznov/banking-pipeline/internal/model"
)

// emailPattern accepts the usual local@domain.tld shape: ASCII letters,
// digits and ._%+- in the local part, and a top-level label of at least
// two letters.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const dateLayout = "2006-01-02"

// Validation ranges for customer numeric fields.
const (
	minCustomerAge = 18
	maxCustomerAge = 120

	minAccountBalance = -50000
	maxAccountBalance = 10000000

	minCreditScore = 300
	maxCreditScore = 850

	maxAnnualIncome = 10000000
)

// CustomerCleaner validates and normalizes raw customer records. It
// never rejects a row: malformed fields degrade to false validity
// flags, and only exact customer_id / email duplicates are dropped.
type CustomerCleaner struct {
	now time.Time
}

// NewCustomerCleaner creates a cleaner that derives ages and tenures
// relative to the given reference time.
func NewCustomerCleaner(now time.Time) *CustomerCleaner {
	return &CustomerCleaner{now: now}
}

// Clean deduplicates, validates, normalizes and segments the raw
// customer set. Output order follows input order of the survivors.
func (c *CustomerCleaner) Clean(raws []model.RawCustomer) []model.Customer {
	deduped := dedupeCustomers(raws)

	out := make([]model.Customer, 0, len(deduped))
	for _, raw := range deduped {
		out = append(out, c.cleanOne(raw))
	}
	return out
}

// dedupeCustomers removes repeated customer_ids, then repeated emails
// on the id-deduped set, keeping the first occurrence each time.
func dedupeCustomers(raws []model.RawCustomer) []model.RawCustomer {
	seenID := make(map[string]bool, len(raws))
	byID := make([]model.RawCustomer, 0, len(raws))
	for _, r := range raws {
		if seenID[r.CustomerID] {
			continue
		}
		seenID[r.CustomerID] = true
		byID = append(byID, r)
	}

	seenEmail := make(map[string]bool, len(byID))
	out := make([]model.RawCustomer, 0, len(byID))
	for _, r := range byID {
		if seenEmail[r.Email] {
			continue
		}
		seenEmail[r.Email] = true
		out = append(out, r)
	}
	return out
}

func (c *CustomerCleaner) cleanOne(raw model.RawCustomer) model.Customer {
	cust := model.Customer{
		CustomerID:       raw.CustomerID,
		FirstName:        titleCase(raw.FirstName),
		LastName:         titleCase(raw.LastName),
		Email:            raw.Email,
		Phone:            raw.Phone,
		Address:          titleCase(raw.Address),
		City:             titleCase(raw.City),
		State:            upperTrim(raw.State),
		ZipCode:          cleanZip(raw.ZipCode),
		EmploymentStatus: raw.EmploymentStatus,
		RiskProfile:      raw.RiskProfile,
	}

	cust.EmailValid = emailPattern.MatchString(raw.Email)

	cust.PhoneCleaned = digitsOnly(raw.Phone)
	if len(cust.PhoneCleaned) > 10 {
		cust.PhoneCleaned = cust.PhoneCleaned[:10]
	}
	cust.PhoneValid = len(cust.PhoneCleaned) == 10

	if dob, err := time.Parse(dateLayout, raw.DateOfBirth); err == nil {
		cust.DateOfBirth = dob
		cust.Age = wholeYears(dob, c.now)
		cust.AgeValid = cust.Age >= minCustomerAge && cust.Age <= maxCustomerAge
	}

	if opened, err := time.Parse(dateLayout, raw.AccountOpenDate); err == nil {
		cust.AccountOpenDate = opened
		cust.AccountTenureDays = wholeDays(opened, c.now)
	}

	cust.AccountBalance, cust.BalanceValid = parseInRange(raw.AccountBalance, minAccountBalance, maxAccountBalance)
	cust.CreditScore, cust.CreditScoreValid = parseInRange(raw.CreditScore, minCreditScore, maxCreditScore)
	cust.AnnualIncome, cust.IncomeValid = parseInRange(raw.AnnualIncome, 0, maxAnnualIncome)

	passed := 0
	for _, ok := range []bool{
		cust.EmailValid, cust.PhoneValid, cust.AgeValid,
		cust.BalanceValid, cust.CreditScoreValid, cust.IncomeValid,
	} {
		if ok {
			passed++
		}
	}
	cust.DataQualityScore = float64(passed) / 6
	cust.HighQuality = cust.DataQualityScore >= 0.8

	if cust.IncomeValid {
		cust.CustomerSegment = segmentForIncome(cust.AnnualIncome)
	}

	return cust
}

// parseInRange keeps the parsed value even when out of range; only the
// flag records whether it passed.
func parseInRange(s string, lo, hi float64) (float64, bool) {
	v, ok := parseFloat(s)
	if !ok {
		return 0, false
	}
	return v, v >= lo && v <= hi
}

// segmentForIncome maps an annual income onto the fixed bands. The
// lowest band starts at zero inclusive.
func segmentForIncome(income float64) string {
	switch {
	case income < 30000:
		return model.SegmentLowIncome
	case income < 60000:
		return model.SegmentMiddleIncome
	case income < 100000:
		return model.SegmentHighIncome
	default:
		return model.SegmentPremium
	}
}

// wholeYears counts whole 365-day years between two times.
func wholeYears(from, to time.Time) int {
	return wholeDays(from, to) / 365
}

func wholeDays(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}
