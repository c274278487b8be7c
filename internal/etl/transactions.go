package etl

import (
	"math"
	"time"

	"github.com/dvloznov/banking-pipeline/internal/model"
)

const timeLayout = "15:04:05"

// maxTransactionAmount is the exclusive bound on absolute amounts.
const maxTransactionAmount = 100000

// minTransactionDate is the inclusive lower bound of the accepted date
// window; the upper bound is the cleaner's reference day.
var minTransactionDate = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// Categories that make a weekend transaction look like weekday
// business, compared after title-casing.
var weekendBusinessCategories = map[string]bool{
	"Bill Payment": true,
	"Transfer":     true,
}

// TransactionCleaner validates and normalizes raw transaction records
// against the cleaned customer set. Unlike the customer cleaner it
// removes rows: an invalid amount, an unknown customer reference or a
// date outside [2020-01-01, today] deletes the row outright.
type TransactionCleaner struct {
	now time.Time
}

// NewTransactionCleaner creates a cleaner whose date window ends at the
// given reference day.
func NewTransactionCleaner(now time.Time) *TransactionCleaner {
	return &TransactionCleaner{now: now}
}

// Clean deduplicates, enriches and filters the raw transaction set.
// The high-amount flag depends on the whole surviving batch: it is
// assigned in a second pass against the global 99th percentile of
// absolute amounts, recomputed on every run.
func (c *TransactionCleaner) Clean(raws []model.RawTransaction, customers []model.Customer) []model.Transaction {
	known := make(map[string]bool, len(customers))
	for _, cust := range customers {
		known[cust.CustomerID] = true
	}

	today := truncateToDay(c.now)

	seen := make(map[string]bool, len(raws))
	out := make([]model.Transaction, 0, len(raws))
	for _, raw := range raws {
		if seen[raw.TransactionID] {
			continue
		}
		seen[raw.TransactionID] = true

		tx, ok := c.cleanOne(raw, known)
		if !ok {
			continue
		}
		if !tx.AmountValid || !tx.CustomerExists {
			continue
		}
		if tx.Date.Before(minTransactionDate) || tx.Date.After(today) {
			continue
		}
		out = append(out, tx)
	}

	flagHighAmounts(out)
	return out
}

// cleanOne returns ok=false only when the date itself is unparseable,
// which makes the date-window check impossible to satisfy. A bad time
// component degrades to midnight instead.
func (c *TransactionCleaner) cleanOne(raw model.RawTransaction, known map[string]bool) (model.Transaction, bool) {
	date, err := time.Parse(dateLayout, raw.TransactionDate)
	if err != nil {
		return model.Transaction{}, false
	}

	ts := date
	if t, err := time.Parse(timeLayout, raw.TransactionTime); err == nil {
		ts = date.Add(time.Duration(t.Hour())*time.Hour +
			time.Duration(t.Minute())*time.Minute +
			time.Duration(t.Second())*time.Second)
	}

	tx := model.Transaction{
		TransactionID:   raw.TransactionID,
		CustomerID:      raw.CustomerID,
		Timestamp:       ts,
		Date:            date,
		TransactionType: raw.TransactionType,
		Category:        titleCase(raw.Category),
		MerchantName:    titleCase(raw.MerchantName),
		MerchantCity:    titleCase(raw.MerchantCity),
		MerchantState:   upperTrim(raw.MerchantState),
		PaymentMethod:   raw.PaymentMethod,
		Description:     raw.Description,
		IsFraud:         parseBool(raw.IsFraud),
	}

	amount, parsed := parseFloat(raw.Amount)
	tx.Amount = amount
	tx.AmountAbs = math.Abs(amount)
	tx.AmountValid = parsed && tx.AmountAbs > 0 && tx.AmountAbs < maxTransactionAmount

	tx.CustomerExists = known[raw.CustomerID]

	tx.Hour = ts.Hour()
	tx.DayOfWeek = mondayIndexed(ts.Weekday())
	tx.Month = int(ts.Month())
	tx.Year = ts.Year()
	tx.Quarter = (int(ts.Month())-1)/3 + 1

	tx.IsWeekend = tx.DayOfWeek >= 5
	tx.BusinessHours = tx.Hour >= 9 && tx.Hour <= 18 && tx.DayOfWeek < 5
	tx.IsNight = tx.Hour >= 22 || tx.Hour <= 6
	tx.IsEarlyMorning = tx.Hour >= 6 && tx.Hour <= 9
	tx.IsLateNight = tx.Hour >= 22 || tx.Hour <= 2

	tx.AmountCategory = amountCategory(tx.AmountAbs)
	tx.WeekendBusiness = tx.IsWeekend && weekendBusinessCategories[tx.Category]

	quality := 0
	if tx.AmountValid {
		quality++
	}
	if tx.CustomerExists {
		quality++
	}
	tx.TransactionQuality = float64(quality) / 2

	return tx, true
}

// flagHighAmounts marks rows strictly above the 99th percentile of
// absolute amounts over the filtered set.
func flagHighAmounts(txs []model.Transaction) {
	if len(txs) == 0 {
		return
	}
	abs := make([]float64, len(txs))
	for i, tx := range txs {
		abs[i] = tx.AmountAbs
	}
	p99 := percentile(abs, 0.99)
	for i := range txs {
		txs[i].HighAmount = txs[i].AmountAbs > p99
	}
}

func amountCategory(abs float64) string {
	switch {
	case abs < 10:
		return model.AmountMicro
	case abs < 50:
		return model.AmountSmall
	case abs < 200:
		return model.AmountMedium
	case abs < 1000:
		return model.AmountLarge
	default:
		return model.AmountVeryLarge
	}
}

// mondayIndexed converts Go's Sunday-first weekday to the 0=Monday
// convention used throughout the derived features.
func mondayIndexed(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
