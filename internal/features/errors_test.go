package features

import (
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/feature-pipeline/internal/domain"
)

func TestValidateLedger(t *testing.T) {
	customers := []domain.Customer{
		{CustomerID: "C00001"},
		{CustomerID: "C00002"},
	}
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	txs := []domain.Transaction{
		{TransactionID: "T1", CustomerID: "C00001", Timestamp: ts, Amount: 100, Type: domain.TypePurchase},
		{TransactionID: "T2", CustomerID: "C00001", Timestamp: ts, Amount: 50, Type: "refund"},
		{TransactionID: "T3", CustomerID: "C00002", Timestamp: ts, Amount: -5, Type: domain.TypeDeposit},
		{TransactionID: "T4", CustomerID: "C99999", Timestamp: ts, Amount: 10, Type: domain.TypeTransfer},
		{TransactionID: "T5", CustomerID: "C00002", Timestamp: ts, Amount: 0, Type: domain.TypeWithdrawal},
	}

	valid, report := ValidateLedger(customers, txs)

	if len(valid) != 2 {
		t.Fatalf("got %d valid rows, want 2", len(valid))
	}
	if valid[0].TransactionID != "T1" || valid[1].TransactionID != "T5" {
		t.Errorf("valid rows = %s, %s; want T1, T5", valid[0].TransactionID, valid[1].TransactionID)
	}

	if report.Count() != 3 {
		t.Fatalf("report.Count() = %d, want 3", report.Count())
	}

	byReason := report.CountByReason()
	if byReason[ReasonUnknownType] != 1 {
		t.Errorf("unknown_type count = %d, want 1", byReason[ReasonUnknownType])
	}
	if byReason[ReasonNegativeAmount] != 1 {
		t.Errorf("negative_amount count = %d, want 1", byReason[ReasonNegativeAmount])
	}
	if byReason[ReasonUnknownCustomer] != 1 {
		t.Errorf("unknown_customer count = %d, want 1", byReason[ReasonUnknownCustomer])
	}
}

func TestValidateLedgerUnknownTypeWinsOverNegativeAmount(t *testing.T) {
	// A row can be broken in more than one way; it is reported once, with
	// the type check applied first.
	txs := []domain.Transaction{
		{TransactionID: "T1", CustomerID: "C00001", Amount: -10, Type: "refund"},
	}

	_, report := ValidateLedger([]domain.Customer{{CustomerID: "C00001"}}, txs)

	if report.Count() != 1 {
		t.Fatalf("report.Count() = %d, want 1", report.Count())
	}
	if report.Rows[0].Reason != ReasonUnknownType {
		t.Errorf("reason = %s, want %s", report.Rows[0].Reason, ReasonUnknownType)
	}
}

func TestValidateLedgerZeroAmountAccepted(t *testing.T) {
	txs := []domain.Transaction{
		{TransactionID: "T1", CustomerID: "C00001", Amount: 0, Type: domain.TypePurchase},
	}

	valid, report := ValidateLedger([]domain.Customer{{CustomerID: "C00001"}}, txs)

	if len(valid) != 1 || report.Count() != 0 {
		t.Errorf("zero-amount row rejected: valid=%d rejected=%d", len(valid), report.Count())
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"zero thresholds", Config{}, false},
		{"negative high", Config{HighValueThreshold: -1, LowValueThreshold: 0}, true},
		{"negative low", Config{HighValueThreshold: 100, LowValueThreshold: -1}, true},
		{"low above high", Config{HighValueThreshold: 10, LowValueThreshold: 100}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrConfig) {
				t.Errorf("Validate() error does not wrap ErrConfig: %v", err)
			}
		})
	}
}

func TestGroupByCustomerOrdering(t *testing.T) {
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	txs := []domain.Transaction{
		{TransactionID: "T3", CustomerID: "C1", Timestamp: ts.AddDate(0, 0, 2)},
		{TransactionID: "T2", CustomerID: "C1", Timestamp: ts},
		{TransactionID: "T1", CustomerID: "C1", Timestamp: ts},
		{TransactionID: "T4", CustomerID: "C2", Timestamp: ts},
	}

	byCustomer := GroupByCustomer(txs)

	if len(byCustomer) != 2 {
		t.Fatalf("got %d customers, want 2", len(byCustomer))
	}

	got := byCustomer["C1"]
	wantOrder := []string{"T1", "T2", "T3"}
	for i, want := range wantOrder {
		if got[i].TransactionID != want {
			t.Errorf("C1[%d] = %s, want %s (timestamp then transaction ID)", i, got[i].TransactionID, want)
		}
	}
}

func TestMaxTimestamp(t *testing.T) {
	if _, ok := MaxTimestamp(nil); ok {
		t.Error("MaxTimestamp(nil) reported a timestamp for an empty ledger")
	}

	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	txs := []domain.Transaction{
		{TransactionID: "T1", Timestamp: ts},
		{TransactionID: "T2", Timestamp: ts.AddDate(0, 1, 0)},
		{TransactionID: "T3", Timestamp: ts.AddDate(0, 0, 5)},
	}

	max, ok := MaxTimestamp(txs)
	if !ok {
		t.Fatal("MaxTimestamp returned ok=false for a non-empty ledger")
	}
	if !max.Equal(ts.AddDate(0, 1, 0)) {
		t.Errorf("MaxTimestamp = %v, want %v", max, ts.AddDate(0, 1, 0))
	}
}
