// Package dataset implements the CSV loader and exporter collaborators.
// It owns the on-disk representation of the customer table, the
// transaction ledger and the exported feature table; the aggregation core
// only ever sees the in-memory structures.
package dataset

import (
	"time"
)

// Default file names inside a dataset directory.
const (
	CustomersFile    = "customers.csv"
	TransactionsFile = "transactions.csv"
	FeaturesFile     = "customer_features.csv"
)

// DateTime wraps time.Time with RFC 3339 CSV encoding for gocsv.
type DateTime struct {
	time.Time
}

// MarshalCSV implements gocsv marshalling.
func (d DateTime) MarshalCSV() (string, error) {
	if d.IsZero() {
		return "", nil
	}
	return d.UTC().Format(time.RFC3339), nil
}

// UnmarshalCSV implements gocsv unmarshalling.
func (d *DateTime) UnmarshalCSV(s string) error {
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// customerCSV is one row of customers.csv. Columns beyond customer_id are
// passthrough attributes the core does not consume.
type customerCSV struct {
	CustomerID string   `csv:"customer_id"`
	SignupDate DateTime `csv:"signup_date"`
	Region     string   `csv:"region"`
}

// transactionCSV is one row of transactions.csv. The type column is kept
// as a raw string so that rows with unknown types reach the validation
// pass and get reported instead of failing the load.
type transactionCSV struct {
	TransactionID string   `csv:"transaction_id"`
	CustomerID    string   `csv:"customer_id"`
	Timestamp     DateTime `csv:"timestamp"`
	Amount        float64  `csv:"amount"`
	Type          string   `csv:"type"`
}

// featureCSV is one row of customer_features.csv. Column names match the
// feature-store registration schema and must not drift.
type featureCSV struct {
	CustomerID                string   `csv:"customer_id"`
	WindowStart               DateTime `csv:"window_start"`
	WindowEnd                 DateTime `csv:"window_end"`
	TotalTransactions12m      int64    `csv:"total_transactions_12m"`
	AvgTransactionsPerMonth   float64  `csv:"avg_transactions_per_month"`
	TotalAmount12m            float64  `csv:"total_amount_12m"`
	AvgAmount12m              float64  `csv:"avg_amount_12m"`
	MaxAmount12m              float64  `csv:"max_amount_12m"`
	MinAmount12m              float64  `csv:"min_amount_12m"`
	StdAmount12m              float64  `csv:"std_amount_12m"`
	PurchaseCount12m          int64    `csv:"purchase_count_12m"`
	WithdrawalCount12m        int64    `csv:"withdrawal_count_12m"`
	TransferCount12m          int64    `csv:"transfer_count_12m"`
	DepositCount12m           int64    `csv:"deposit_count_12m"`
	PurchaseAmount12m         float64  `csv:"purchase_amount_12m"`
	WithdrawalAmount12m       float64  `csv:"withdrawal_amount_12m"`
	TransferAmount12m         float64  `csv:"transfer_amount_12m"`
	DepositAmount12m          float64  `csv:"deposit_amount_12m"`
	HighValueTransactions12m  int64    `csv:"high_value_transactions_12m"`
	LowValueTransactions12m   int64    `csv:"low_value_transactions_12m"`
	DaysSinceFirstTransaction *int64   `csv:"days_since_first_transaction"`
	CustomerSegment           string   `csv:"customer_segment"`
}
