// Package generator produces synthetic banking customers and
// transactions for exercising the transformation pipeline.
package generator

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/dvloznov/banking-pipeline/internal/model"
)

const dateLayout = "2006-01-02"

var transactionCategories = []string{
	"Groceries", "Gas Station", "Restaurant", "Online Shopping",
	"Pharmacy", "ATM Withdrawal", "Bill Payment", "Transfer",
	"Salary Deposit", "Investment", "Insurance", "Entertainment",
	"Travel", "Healthcare", "Education", "Utilities",
}

var merchantNames = map[string][]string{
	"Groceries":       {"Walmart", "Target", "Kroger", "Safeway", "Whole Foods"},
	"Gas Station":     {"Shell", "Exxon", "BP", "Chevron", "Mobil"},
	"Restaurant":      {"McDonald's", "Starbucks", "Subway", "Pizza Hut", "KFC"},
	"Online Shopping": {"Amazon", "eBay", "Best Buy", "Apple Store", "Walmart.com"},
	"Pharmacy":        {"CVS", "Walgreens", "Rite Aid", "Pharmacy Plus"},
	"ATM Withdrawal":  {"Bank ATM", "Third Party ATM"},
	"Entertainment":   {"Netflix", "Spotify", "Movie Theater", "Concert Venue"},
}

var atmAmounts = []float64{20, 40, 60, 80, 100, 200}

// Config controls the size and shape of a synthetic dataset.
type Config struct {
	NumCustomers    int
	NumTransactions int
	Seed            int64
	StartDate       time.Time
	EndDate         time.Time
}

// Generator emits reproducible synthetic data: the same seed yields the
// same customers and transactions.
type Generator struct {
	cfg   Config
	rng   *rand.Rand
	faker *gofakeit.Faker
}

// New creates a generator for the given configuration.
func New(cfg Config) *Generator {
	return &Generator{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
		faker: gofakeit.New(uint64(cfg.Seed)),
	}
}

// spendingProfile shapes a customer's transactions.
type spendingProfile struct {
	monthlySpending     float64
	preferredCategories []string
	fraudProbability    float64
	city, state         string
}

// Customers generates the raw customer table. Numeric fields are
// formatted as text the way a real extract would carry them.
func (g *Generator) Customers() []model.RawCustomer {
	now := time.Now()
	customers := make([]model.RawCustomer, 0, g.cfg.NumCustomers)

	for i := 0; i < g.cfg.NumCustomers; i++ {
		age := int(g.normal(45, 15))
		if age < 18 {
			age = 18
		}
		if age > 85 {
			age = 85
		}

		// Income rises through peak earning years; credit follows
		// income and age.
		income := g.normal(50000, 20000) * (1 + float64(age-30)*0.02)
		if income < 25000 {
			income = 25000
		}
		credit := 600 + (income-25000)*0.002 + float64(age-18)*2 + g.normal(0, 50)
		if credit < 300 {
			credit = 300
		}
		if credit > 850 {
			credit = 850
		}

		dob := now.AddDate(-age, 0, -g.rng.Intn(364))
		opened := g.dateBetween(now.AddDate(-5, 0, 0), now)

		customers = append(customers, model.RawCustomer{
			CustomerID:       fmt.Sprintf("CUST_%06d", i+1),
			FirstName:        g.faker.FirstName(),
			LastName:         g.faker.LastName(),
			Email:            g.faker.Email(),
			Phone:            g.faker.PhoneFormatted(),
			DateOfBirth:      dob.Format(dateLayout),
			Address:          g.faker.Street(),
			City:             g.faker.City(),
			State:            g.faker.StateAbr(),
			ZipCode:          g.faker.Zip(),
			AccountOpenDate:  opened.Format(dateLayout),
			AccountBalance:   formatAmount(g.lognormal(8, 1.5)),
			CreditScore:      fmt.Sprintf("%d", int(credit)),
			AnnualIncome:     formatAmount(income),
			EmploymentStatus: g.weighted([]string{"Employed", "Self-Employed", "Unemployed", "Retired"}, []float64{0.7, 0.15, 0.05, 0.1}),
			RiskProfile:      g.weighted([]string{"Low", "Medium", "High"}, []float64{0.6, 0.3, 0.1}),
		})
	}
	return customers
}

// Transactions generates the raw transaction table for the given
// customers, including a small injected fraud population.
func (g *Generator) Transactions(customers []model.RawCustomer) []model.RawTransaction {
	profiles := make(map[string]spendingProfile, len(customers))
	for _, c := range customers {
		income, _ := parseAmount(c.AnnualIncome)
		fraudProb := 0.005
		if c.RiskProfile == "High" {
			fraudProb = 0.02
		}
		profiles[c.CustomerID] = spendingProfile{
			monthlySpending:     income * 0.06,
			preferredCategories: g.sample(transactionCategories, 3+g.rng.Intn(4)),
			fraudProbability:    fraudProb,
			city:                c.City,
			state:               c.State,
		}
	}

	spanDays := int(g.cfg.EndDate.Sub(g.cfg.StartDate).Hours() / 24)
	if spanDays < 1 {
		spanDays = 1
	}

	txs := make([]model.RawTransaction, 0, g.cfg.NumTransactions)
	for i := 0; i < g.cfg.NumTransactions; i++ {
		cust := customers[g.rng.Intn(len(customers))]
		profile := profiles[cust.CustomerID]

		// Skewed day sampling keeps most activity near the window
		// start, thinning toward the end.
		u := g.rng.Float64()
		date := g.cfg.StartDate.AddDate(0, 0, int(u*u*float64(spanDays)))

		isFraud := g.rng.Float64() < profile.fraudProbability

		var category string
		if g.rng.Float64() < 0.7 && !isFraud {
			category = profile.preferredCategories[g.rng.Intn(len(profile.preferredCategories))]
		} else {
			category = transactionCategories[g.rng.Intn(len(transactionCategories))]
		}

		amount := g.amountFor(category, profile, isFraud)

		txType := "Debit"
		amount = -math.Abs(amount)
		if (category == "Salary Deposit" || category == "Investment" || category == "Transfer") && g.rng.Float64() < 0.8 {
			txType = "Credit"
			amount = math.Abs(amount)
		}

		var merchant string
		if names, ok := merchantNames[category]; ok {
			merchant = names[g.rng.Intn(len(names))]
		} else {
			merchant = category + " " + g.faker.Company()
		}

		city, state := profile.city, profile.state
		if g.rng.Float64() < 0.1 {
			city = g.faker.City()
			state = g.faker.StateAbr()
		}

		txs = append(txs, model.RawTransaction{
			TransactionID:   "TXN_" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:12]),
			CustomerID:      cust.CustomerID,
			TransactionDate: date.Format(dateLayout),
			TransactionTime: g.randomTime(),
			Amount:          formatAmount(amount),
			TransactionType: txType,
			Category:        category,
			MerchantName:    merchant,
			MerchantCity:    city,
			MerchantState:   state,
			PaymentMethod:   g.weighted([]string{"Debit Card", "Credit Card", "Cash", "Check", "Online Transfer"}, []float64{0.4, 0.35, 0.1, 0.05, 0.1}),
			IsFraud:         fmt.Sprintf("%t", isFraud),
			Description:     merchant + " - " + category,
		})
	}
	return txs
}

// amountFor draws a plausible amount for the category. Fraudulent
// transactions skew larger.
func (g *Generator) amountFor(category string, profile spendingProfile, isFraud bool) float64 {
	if isFraud {
		return g.lognormal(6, 1.5)
	}
	switch category {
	case "Groceries":
		return g.lognormal(4, 0.5)
	case "Gas Station":
		return g.lognormal(3.5, 0.3)
	case "Restaurant":
		return g.lognormal(3, 0.7)
	case "Online Shopping":
		return g.lognormal(4.5, 1)
	case "ATM Withdrawal":
		return atmAmounts[g.rng.Intn(len(atmAmounts))]
	case "Salary Deposit":
		return profile.monthlySpending * (0.8 + 0.4*g.rng.Float64())
	case "Bill Payment":
		return g.lognormal(5, 0.5)
	default:
		return g.lognormal(4, 0.8)
	}
}

func (g *Generator) normal(mu, sigma float64) float64 {
	return mu + sigma*g.rng.NormFloat64()
}

func (g *Generator) lognormal(mu, sigma float64) float64 {
	return math.Exp(mu + sigma*g.rng.NormFloat64())
}

func (g *Generator) dateBetween(start, end time.Time) time.Time {
	span := int(end.Sub(start).Hours() / 24)
	if span < 1 {
		return start
	}
	return start.AddDate(0, 0, g.rng.Intn(span))
}

func (g *Generator) randomTime() string {
	secs := g.rng.Intn(24 * 60 * 60)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}

// weighted picks one option according to the given probabilities.
func (g *Generator) weighted(options []string, weights []float64) string {
	r := g.rng.Float64()
	var cum float64
	for i, w := range weights {
		cum += w
		if r < cum {
			return options[i]
		}
	}
	return options[len(options)-1]
}

// sample picks n distinct elements without replacement.
func (g *Generator) sample(options []string, n int) []string {
	idx := g.rng.Perm(len(options))
	if n > len(options) {
		n = len(options)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = options[idx[i]]
	}
	return out
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func parseAmount(s string) (float64, error) {
	var v float64
	_, err := fmt.Sscanf(s, "%f", &v)
	return v, err
}
