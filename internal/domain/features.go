package domain

import (
	"time"
)

// FeatureRecord is the fixed-shape set of per-customer statistics computed
// over the trailing 12-month window. Records are produced fresh on every
// run and never mutated afterwards.
//
// All "12m" fields are scoped to the half-open window
// (WindowStart, WindowEnd]; DaysSinceFirstTransaction is the exception and
// reflects the customer's true first transaction even when it predates the
// window. It is nil for a customer with no transactions at all.
type FeatureRecord struct {
	WindowStart time.Time // reference date minus 365 days (exclusive bound)
	WindowEnd   time.Time // reference date (inclusive bound)

	TotalTransactions12m    int64
	AvgTransactionsPerMonth float64 // fixed 12-month denominator
	TotalAmount12m          float64
	AvgAmount12m            float64 // 0 when the window is empty
	MaxAmount12m            float64 // 0 when the window is empty
	MinAmount12m            float64 // 0 when the window is empty
	StdAmount12m            float64 // population std dev, 0 when N <= 1

	PurchaseCount12m   int64
	WithdrawalCount12m int64
	TransferCount12m   int64
	DepositCount12m    int64

	PurchaseAmount12m   float64
	WithdrawalAmount12m float64
	TransferAmount12m   float64
	DepositAmount12m    float64

	HighValueTransactions12m int64 // amount strictly above the high-value threshold
	LowValueTransactions12m  int64 // amount strictly below the low-value threshold

	DaysSinceFirstTransaction *int64 // whole days, nil when the customer has no transactions
}

// TypeCount returns the in-window count for one transaction type.
func (r FeatureRecord) TypeCount(t TransactionType) int64 {
	switch t {
	case TypePurchase:
		return r.PurchaseCount12m
	case TypeWithdrawal:
		return r.WithdrawalCount12m
	case TypeTransfer:
		return r.TransferCount12m
	case TypeDeposit:
		return r.DepositCount12m
	}
	return 0
}
