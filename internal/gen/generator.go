// Package gen produces synthetic customer and transaction datasets for
// local development and pipeline demos. Output is a pure function of the
// generator configuration, including the seed.
package gen

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/dvloznov/feature-pipeline/internal/domain"
)

var regions = []string{
	"New York", "Los Angeles", "Chicago", "Houston", "Phoenix",
	"Philadelphia", "San Antonio", "San Diego", "Dallas", "San Jose",
}

// Config controls the synthetic dataset shape.
type Config struct {
	Customers int       // number of customers
	Days      int       // history length, counted back from EndDate
	MeanTx    int       // expected transactions per customer
	EndDate   time.Time // latest possible timestamp
	Seed      int64
	// ErrorRate injects invalid rows (unknown type or negative amount)
	// with this probability per transaction, to exercise the data-error
	// reporting path. Zero disables injection.
	ErrorRate float64
}

// DefaultConfig mirrors the sample-data defaults: 1000 customers with
// roughly 8 transactions each over 400 days, no error injection.
func DefaultConfig(endDate time.Time) Config {
	return Config{
		Customers: 1000,
		Days:      400,
		MeanTx:    8,
		EndDate:   endDate,
		Seed:      42,
	}
}

// Validate checks the generator configuration.
func (c Config) Validate() error {
	if c.Customers <= 0 {
		return fmt.Errorf("Validate: customers must be positive, got %d", c.Customers)
	}
	if c.Days <= 0 {
		return fmt.Errorf("Validate: days must be positive, got %d", c.Days)
	}
	if c.MeanTx < 0 {
		return fmt.Errorf("Validate: mean transactions must be non-negative, got %d", c.MeanTx)
	}
	if c.EndDate.IsZero() {
		return fmt.Errorf("Validate: end date is required")
	}
	if c.ErrorRate < 0 || c.ErrorRate > 1 {
		return fmt.Errorf("Validate: error rate %v outside [0, 1]", c.ErrorRate)
	}
	return nil
}

// Generate builds the customer table and transaction ledger. The same
// configuration always yields the same dataset.
func Generate(cfg Config) ([]domain.Customer, []domain.Transaction, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("Generate: %w", err)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	start := cfg.EndDate.AddDate(0, 0, -cfg.Days)

	customers := make([]domain.Customer, 0, cfg.Customers)
	var txs []domain.Transaction
	txSeq := 0

	for i := 0; i < cfg.Customers; i++ {
		customerID := fmt.Sprintf("C%05d", i+1)
		signupOffset := rng.Intn(cfg.Days)
		customers = append(customers, domain.Customer{
			CustomerID: customerID,
			SignupDate: start.AddDate(0, 0, signupOffset),
			Region:     regions[rng.Intn(len(regions))],
		})

		txs = append(txs, customerTransactions(rng, cfg, customerID, start, &txSeq)...)
	}

	return customers, txs, nil
}

func customerTransactions(rng *rand.Rand, cfg Config, customerID string, start time.Time, seq *int) []domain.Transaction {
	count := poisson(rng, float64(cfg.MeanTx))
	txs := make([]domain.Transaction, 0, count)

	for i := 0; i < count; i++ {
		*seq++
		ts := start.Add(time.Duration(rng.Int63n(int64(cfg.Days) * int64(24*time.Hour))))
		tx := domain.Transaction{
			TransactionID: fmt.Sprintf("T%08d", *seq),
			CustomerID:    customerID,
			Timestamp:     ts,
			Amount:        amount(rng),
			Type:          transactionType(rng),
		}
		if cfg.ErrorRate > 0 && rng.Float64() < cfg.ErrorRate {
			corrupt(rng, &tx)
		}
		txs = append(txs, tx)
	}

	return txs
}

// amount draws from a log-normal distribution with mean around $50,
// capped at $1000, matching the sample-data profile.
func amount(rng *rand.Rand) float64 {
	a := math.Exp(rng.NormFloat64()*0.8 + 3.5)
	if a > 1000 {
		a = 1000
	}
	return math.Round(a*100) / 100
}

func transactionType(rng *rand.Rand) domain.TransactionType {
	switch r := rng.Float64(); {
	case r < 0.50:
		return domain.TypePurchase
	case r < 0.70:
		return domain.TypeWithdrawal
	case r < 0.85:
		return domain.TypeTransfer
	default:
		return domain.TypeDeposit
	}
}

func corrupt(rng *rand.Rand, tx *domain.Transaction) {
	if rng.Float64() < 0.5 {
		tx.Type = domain.TransactionType("refund")
	} else {
		tx.Amount = -tx.Amount
	}
}

// poisson draws via Knuth's method; good enough for small means.
func poisson(rng *rand.Rand, mean float64) int {
	if mean <= 0 {
		return 0
	}
	l := math.Exp(-mean)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= l {
			return k
		}
		k++
	}
}
