package gen

import (
	"testing"
	"time"

	"github.com/dvloznov/feature-pipeline/internal/domain"
)

var endDate = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

func smallConfig() Config {
	cfg := DefaultConfig(endDate)
	cfg.Customers = 50
	return cfg
}

func TestGenerateDeterministic(t *testing.T) {
	c1, t1, err := Generate(smallConfig())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	c2, t2, err := Generate(smallConfig())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(c1) != len(c2) || len(t1) != len(t2) {
		t.Fatalf("sizes differ: (%d, %d) vs (%d, %d)", len(c1), len(t1), len(c2), len(t2))
	}
	for i := range c1 {
		if c1[i] != c2[i] {
			t.Fatalf("customer %d differs between identically-seeded runs", i)
		}
	}
	for i := range t1 {
		if t1[i] != t2[i] {
			t.Fatalf("transaction %d differs between identically-seeded runs", i)
		}
	}
}

func TestGenerateSeedChangesOutput(t *testing.T) {
	cfg2 := smallConfig()
	cfg2.Seed = 43

	_, t1, err := Generate(smallConfig())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	_, t2, err := Generate(cfg2)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(t1) == len(t2) {
		same := true
		for i := range t1 {
			if t1[i] != t2[i] {
				same = false
				break
			}
		}
		if same {
			t.Error("different seeds produced identical ledgers")
		}
	}
}

func TestGenerateShape(t *testing.T) {
	cfg := smallConfig()
	customers, txs, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(customers) != cfg.Customers {
		t.Fatalf("got %d customers, want %d", len(customers), cfg.Customers)
	}

	known := make(map[string]bool, len(customers))
	seenIDs := make(map[string]bool, len(customers))
	start := endDate.AddDate(0, 0, -cfg.Days)
	for _, c := range customers {
		if seenIDs[c.CustomerID] {
			t.Errorf("duplicate customer ID %s", c.CustomerID)
		}
		seenIDs[c.CustomerID] = true
		known[c.CustomerID] = true
		if c.Region == "" {
			t.Errorf("customer %s has no region", c.CustomerID)
		}
	}

	seenTx := make(map[string]bool, len(txs))
	for _, tx := range txs {
		if seenTx[tx.TransactionID] {
			t.Errorf("duplicate transaction ID %s", tx.TransactionID)
		}
		seenTx[tx.TransactionID] = true
		if !known[tx.CustomerID] {
			t.Errorf("transaction %s references unknown customer %s", tx.TransactionID, tx.CustomerID)
		}
		if tx.Timestamp.Before(start) || tx.Timestamp.After(endDate) {
			t.Errorf("transaction %s timestamp %v outside [%v, %v]", tx.TransactionID, tx.Timestamp, start, endDate)
		}
		if !tx.Type.Valid() {
			t.Errorf("transaction %s has invalid type %q with no error injection", tx.TransactionID, tx.Type)
		}
		if tx.Amount < 0 || tx.Amount > 1000 {
			t.Errorf("transaction %s amount %v outside [0, 1000]", tx.TransactionID, tx.Amount)
		}
	}
}

func TestGenerateErrorInjection(t *testing.T) {
	cfg := smallConfig()
	cfg.ErrorRate = 0.5

	_, txs, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	corrupted := 0
	for _, tx := range txs {
		if !tx.Type.Valid() || tx.Amount < 0 {
			corrupted++
		}
	}
	if corrupted == 0 {
		t.Error("ErrorRate 0.5 injected no invalid rows")
	}
	if tx := txs; len(tx) > 0 && corrupted == len(tx) {
		t.Error("every row was corrupted at ErrorRate 0.5")
	}

	// Corrupted rows carry the unknown type used by the demo datasets.
	for _, tx := range txs {
		if !tx.Type.Valid() && tx.Type != domain.TransactionType("refund") {
			t.Errorf("unexpected injected type %q", tx.Type)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero customers", func(c *Config) { c.Customers = 0 }, true},
		{"negative days", func(c *Config) { c.Days = -1 }, true},
		{"zero end date", func(c *Config) { c.EndDate = time.Time{} }, true},
		{"error rate above one", func(c *Config) { c.ErrorRate = 1.5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(endDate)
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
