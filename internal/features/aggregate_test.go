package features

import (
	"math"
	"testing"
	"time"

	"github.com/dvloznov/feature-pipeline/internal/domain"
)

var refDate = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

func tx(id string, ts time.Time, amount float64, typ domain.TransactionType) domain.Transaction {
	return domain.Transaction{
		TransactionID: id,
		CustomerID:    "C00001",
		Timestamp:     ts,
		Amount:        amount,
		Type:          typ,
	}
}

func daysBefore(ref time.Time, days int) time.Time {
	return ref.AddDate(0, 0, -days)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestInWindow(t *testing.T) {
	tests := []struct {
		name string
		ts   time.Time
		want bool
	}{
		{"at reference date", refDate, true},
		{"one day before reference", daysBefore(refDate, 1), true},
		{"one day inside lower bound", daysBefore(refDate, 364), true},
		{"exactly 365 days before", daysBefore(refDate, 365), false},
		{"far in the past", daysBefore(refDate, 400), false},
		{"after reference date", refDate.AddDate(0, 0, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InWindow(tt.ts, refDate); got != tt.want {
				t.Errorf("InWindow(%v) = %v, want %v", tt.ts, got, tt.want)
			}
		})
	}
}

func TestAggregateBasicStats(t *testing.T) {
	txs := []domain.Transaction{
		tx("T1", daysBefore(refDate, 10), 100, domain.TypePurchase),
		tx("T2", daysBefore(refDate, 20), 200, domain.TypePurchase),
		tx("T3", daysBefore(refDate, 30), 300, domain.TypeDeposit),
	}

	rec := Aggregate(txs, refDate, DefaultConfig())

	if rec.TotalTransactions12m != 3 {
		t.Errorf("TotalTransactions12m = %d, want 3", rec.TotalTransactions12m)
	}
	if !almostEqual(rec.TotalAmount12m, 600) {
		t.Errorf("TotalAmount12m = %v, want 600", rec.TotalAmount12m)
	}
	if !almostEqual(rec.AvgAmount12m, 200) {
		t.Errorf("AvgAmount12m = %v, want 200", rec.AvgAmount12m)
	}
	if !almostEqual(rec.MaxAmount12m, 300) {
		t.Errorf("MaxAmount12m = %v, want 300", rec.MaxAmount12m)
	}
	if !almostEqual(rec.MinAmount12m, 100) {
		t.Errorf("MinAmount12m = %v, want 100", rec.MinAmount12m)
	}

	// Population std dev over {100, 200, 300}: sqrt(20000/3)
	wantStd := math.Sqrt(20000.0 / 3.0)
	if !almostEqual(rec.StdAmount12m, wantStd) {
		t.Errorf("StdAmount12m = %v, want %v", rec.StdAmount12m, wantStd)
	}

	// Fixed 12-month denominator, not elapsed months.
	if !almostEqual(rec.AvgTransactionsPerMonth, 3.0/12.0) {
		t.Errorf("AvgTransactionsPerMonth = %v, want 0.25", rec.AvgTransactionsPerMonth)
	}
}

func TestAggregateWindowBoundaries(t *testing.T) {
	txs := []domain.Transaction{
		tx("T1", refDate, 50, domain.TypePurchase),                // inclusive upper bound
		tx("T2", daysBefore(refDate, 365), 50, domain.TypePurchase), // exclusive lower bound
		tx("T3", daysBefore(refDate, 364), 50, domain.TypePurchase),
	}

	rec := Aggregate(txs, refDate, DefaultConfig())

	if rec.TotalTransactions12m != 2 {
		t.Errorf("TotalTransactions12m = %d, want 2 (boundary tx at -365d must be excluded)", rec.TotalTransactions12m)
	}
}

func TestAggregateEmptyWindow(t *testing.T) {
	// Scenario: one transaction 400 days old, none since. Window stats are
	// zero but tenure still reflects the old transaction.
	txs := []domain.Transaction{
		tx("T1", daysBefore(refDate, 400), 250, domain.TypePurchase),
	}

	rec := Aggregate(txs, refDate, DefaultConfig())

	if rec.TotalTransactions12m != 0 {
		t.Errorf("TotalTransactions12m = %d, want 0", rec.TotalTransactions12m)
	}
	if rec.AvgAmount12m != 0 || rec.MaxAmount12m != 0 || rec.MinAmount12m != 0 || rec.StdAmount12m != 0 {
		t.Errorf("empty-window stats must all be 0, got avg=%v max=%v min=%v std=%v",
			rec.AvgAmount12m, rec.MaxAmount12m, rec.MinAmount12m, rec.StdAmount12m)
	}
	if rec.DaysSinceFirstTransaction == nil {
		t.Fatal("DaysSinceFirstTransaction = nil, want 400")
	}
	if *rec.DaysSinceFirstTransaction != 400 {
		t.Errorf("DaysSinceFirstTransaction = %d, want 400", *rec.DaysSinceFirstTransaction)
	}
}

func TestAggregateNoHistory(t *testing.T) {
	rec := Aggregate(nil, refDate, DefaultConfig())

	if rec.TotalTransactions12m != 0 {
		t.Errorf("TotalTransactions12m = %d, want 0", rec.TotalTransactions12m)
	}
	if rec.DaysSinceFirstTransaction != nil {
		t.Errorf("DaysSinceFirstTransaction = %v, want nil for a customer with no history", *rec.DaysSinceFirstTransaction)
	}
	if rec.AvgTransactionsPerMonth != 0 {
		t.Errorf("AvgTransactionsPerMonth = %v, want 0", rec.AvgTransactionsPerMonth)
	}
}

func TestAggregateTypePartition(t *testing.T) {
	txs := []domain.Transaction{
		tx("T1", daysBefore(refDate, 1), 10, domain.TypePurchase),
		tx("T2", daysBefore(refDate, 2), 20, domain.TypePurchase),
		tx("T3", daysBefore(refDate, 3), 30, domain.TypeWithdrawal),
		tx("T4", daysBefore(refDate, 4), 40, domain.TypeTransfer),
		tx("T5", daysBefore(refDate, 5), 50, domain.TypeDeposit),
	}

	rec := Aggregate(txs, refDate, DefaultConfig())

	tests := []struct {
		name       string
		count      int64
		amount     float64
		wantCount  int64
		wantAmount float64
	}{
		{"purchase", rec.PurchaseCount12m, rec.PurchaseAmount12m, 2, 30},
		{"withdrawal", rec.WithdrawalCount12m, rec.WithdrawalAmount12m, 1, 30},
		{"transfer", rec.TransferCount12m, rec.TransferAmount12m, 1, 40},
		{"deposit", rec.DepositCount12m, rec.DepositAmount12m, 1, 50},
	}

	var countSum int64
	for _, tt := range tests {
		if tt.count != tt.wantCount {
			t.Errorf("%s count = %d, want %d", tt.name, tt.count, tt.wantCount)
		}
		if !almostEqual(tt.amount, tt.wantAmount) {
			t.Errorf("%s amount = %v, want %v", tt.name, tt.amount, tt.wantAmount)
		}
		countSum += tt.count
	}

	// Type counts partition the in-window total.
	if countSum != rec.TotalTransactions12m {
		t.Errorf("type counts sum to %d, want %d", countSum, rec.TotalTransactions12m)
	}
}

func TestAggregateValueBands(t *testing.T) {
	cfg := Config{HighValueThreshold: 1000, LowValueThreshold: 10}

	txs := []domain.Transaction{
		tx("T1", daysBefore(refDate, 1), 1000, domain.TypePurchase), // at threshold: not high
		tx("T2", daysBefore(refDate, 2), 1000.01, domain.TypePurchase),
		tx("T3", daysBefore(refDate, 3), 10, domain.TypePurchase), // at threshold: not low
		tx("T4", daysBefore(refDate, 4), 9.99, domain.TypePurchase),
		tx("T5", daysBefore(refDate, 5), 500, domain.TypePurchase),
	}

	rec := Aggregate(txs, refDate, cfg)

	if rec.HighValueTransactions12m != 1 {
		t.Errorf("HighValueTransactions12m = %d, want 1 (comparison is strict)", rec.HighValueTransactions12m)
	}
	if rec.LowValueTransactions12m != 1 {
		t.Errorf("LowValueTransactions12m = %d, want 1 (comparison is strict)", rec.LowValueTransactions12m)
	}
}

func TestAggregateSingleTransactionStdDev(t *testing.T) {
	txs := []domain.Transaction{
		tx("T1", daysBefore(refDate, 1), 123.45, domain.TypeDeposit),
	}

	rec := Aggregate(txs, refDate, DefaultConfig())

	if rec.StdAmount12m != 0 {
		t.Errorf("StdAmount12m = %v, want 0 for a single transaction", rec.StdAmount12m)
	}
	if !almostEqual(rec.MaxAmount12m, 123.45) || !almostEqual(rec.MinAmount12m, 123.45) {
		t.Errorf("extrema = (%v, %v), want both 123.45", rec.MinAmount12m, rec.MaxAmount12m)
	}
}

func TestAggregateTenureUsesEarliestTransaction(t *testing.T) {
	// Earliest transaction is outside the window and not first in the slice.
	txs := []domain.Transaction{
		tx("T2", daysBefore(refDate, 30), 75, domain.TypePurchase),
		tx("T1", daysBefore(refDate, 900), 20, domain.TypeDeposit),
		tx("T3", daysBefore(refDate, 5), 15, domain.TypePurchase),
	}

	rec := Aggregate(txs, refDate, DefaultConfig())

	if rec.DaysSinceFirstTransaction == nil {
		t.Fatal("DaysSinceFirstTransaction = nil, want 900")
	}
	if *rec.DaysSinceFirstTransaction != 900 {
		t.Errorf("DaysSinceFirstTransaction = %d, want 900", *rec.DaysSinceFirstTransaction)
	}
	if rec.TotalTransactions12m != 2 {
		t.Errorf("TotalTransactions12m = %d, want 2", rec.TotalTransactions12m)
	}
}

func TestAggregateWindowBoundsRecorded(t *testing.T) {
	rec := Aggregate(nil, refDate, DefaultConfig())

	if !rec.WindowEnd.Equal(refDate) {
		t.Errorf("WindowEnd = %v, want %v", rec.WindowEnd, refDate)
	}
	if !rec.WindowStart.Equal(daysBefore(refDate, 365)) {
		t.Errorf("WindowStart = %v, want %v", rec.WindowStart, daysBefore(refDate, 365))
	}
}
