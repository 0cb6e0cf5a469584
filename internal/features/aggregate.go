package features

import (
	"math"
	"time"

	"github.com/dvloznov/feature-pipeline/internal/domain"
)

// windowDays is the length of the trailing aggregation window.
const windowDays = 365

// monthsPerWindow is the fixed denominator for avg_transactions_per_month.
// The metric divides by 12 even for customers whose history is shorter,
// keeping it stable for newly-windowed customers.
const monthsPerWindow = 12.0

// WindowStart returns the exclusive lower bound of the trailing window
// ending at the reference date.
func WindowStart(referenceDate time.Time) time.Time {
	return referenceDate.AddDate(0, 0, -windowDays)
}

// InWindow reports whether ts falls in the half-open interval
// (referenceDate - 365 days, referenceDate].
func InWindow(ts, referenceDate time.Time) bool {
	return ts.After(WindowStart(referenceDate)) && !ts.After(referenceDate)
}

// Aggregate computes the full feature record for one customer from their
// complete transaction slice. txs must already be validated; it may be
// empty. The result is a pure function of (txs, referenceDate, cfg): no
// I/O and no shared state. Callers obtain txs from GroupByCustomer, whose
// canonical ordering makes floating-point sums reproducible regardless of
// how the ledger was loaded or how many workers run concurrently.
func Aggregate(txs []domain.Transaction, referenceDate time.Time, cfg Config) domain.FeatureRecord {
	rec := domain.FeatureRecord{
		WindowStart: WindowStart(referenceDate),
		WindowEnd:   referenceDate,
	}

	var (
		amounts    []float64
		firstSeen  time.Time
		hasHistory bool
	)

	for _, tx := range txs {
		// Tenure looks at the whole history, not just the window.
		if !hasHistory || tx.Timestamp.Before(firstSeen) {
			firstSeen = tx.Timestamp
			hasHistory = true
		}

		if !InWindow(tx.Timestamp, referenceDate) {
			continue
		}

		rec.TotalTransactions12m++
		rec.TotalAmount12m += tx.Amount
		amounts = append(amounts, tx.Amount)

		switch tx.Type {
		case domain.TypePurchase:
			rec.PurchaseCount12m++
			rec.PurchaseAmount12m += tx.Amount
		case domain.TypeWithdrawal:
			rec.WithdrawalCount12m++
			rec.WithdrawalAmount12m += tx.Amount
		case domain.TypeTransfer:
			rec.TransferCount12m++
			rec.TransferAmount12m += tx.Amount
		case domain.TypeDeposit:
			rec.DepositCount12m++
			rec.DepositAmount12m += tx.Amount
		}

		if tx.Amount > cfg.HighValueThreshold {
			rec.HighValueTransactions12m++
		}
		if tx.Amount < cfg.LowValueThreshold {
			rec.LowValueTransactions12m++
		}
	}

	rec.AvgTransactionsPerMonth = float64(rec.TotalTransactions12m) / monthsPerWindow

	if n := len(amounts); n > 0 {
		rec.AvgAmount12m = rec.TotalAmount12m / float64(n)
		rec.MaxAmount12m = amounts[0]
		rec.MinAmount12m = amounts[0]
		for _, a := range amounts[1:] {
			if a > rec.MaxAmount12m {
				rec.MaxAmount12m = a
			}
			if a < rec.MinAmount12m {
				rec.MinAmount12m = a
			}
		}
		rec.StdAmount12m = populationStdDev(amounts, rec.AvgAmount12m)
	}

	if hasHistory {
		days := int64(referenceDate.Sub(firstSeen) / (24 * time.Hour))
		rec.DaysSinceFirstTransaction = &days
	}

	return rec
}

// populationStdDev divides by N, not N-1: the window is a complete census
// of the customer's recent activity, not a sample. Returns 0 for N <= 1.
func populationStdDev(amounts []float64, mean float64) float64 {
	n := len(amounts)
	if n <= 1 {
		return 0
	}
	var sumSq float64
	for _, a := range amounts {
		d := a - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n))
}
