package dataset

import (
	"context"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/dvloznov/feature-pipeline/internal/domain"
)

// CSVLoader reads the customer table and transaction ledger from local
// CSV files. It implements pipeline.Loader.
type CSVLoader struct {
	CustomersPath    string
	TransactionsPath string
}

// NewCSVLoader creates a loader for the two input files.
func NewCSVLoader(customersPath, transactionsPath string) *CSVLoader {
	return &CSVLoader{
		CustomersPath:    customersPath,
		TransactionsPath: transactionsPath,
	}
}

// LoadCustomers reads and decodes customers.csv.
func (l *CSVLoader) LoadCustomers(ctx context.Context) ([]domain.Customer, error) {
	f, err := os.Open(l.CustomersPath)
	if err != nil {
		return nil, fmt.Errorf("LoadCustomers: open %q: %w", l.CustomersPath, err)
	}
	defer f.Close()

	var rows []*customerCSV
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		return nil, fmt.Errorf("LoadCustomers: decode %q: %w", l.CustomersPath, err)
	}

	customers := make([]domain.Customer, 0, len(rows))
	for i, row := range rows {
		if row.CustomerID == "" {
			return nil, fmt.Errorf("LoadCustomers: row %d: missing customer_id", i+1)
		}
		customers = append(customers, domain.Customer{
			CustomerID: row.CustomerID,
			SignupDate: row.SignupDate.Time,
			Region:     row.Region,
		})
	}

	return customers, nil
}

// LoadTransactions reads and decodes transactions.csv. Rows with unknown
// types or negative amounts are loaded as-is; the aggregation core
// rejects and reports them.
func (l *CSVLoader) LoadTransactions(ctx context.Context) ([]domain.Transaction, error) {
	f, err := os.Open(l.TransactionsPath)
	if err != nil {
		return nil, fmt.Errorf("LoadTransactions: open %q: %w", l.TransactionsPath, err)
	}
	defer f.Close()

	var rows []*transactionCSV
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		return nil, fmt.Errorf("LoadTransactions: decode %q: %w", l.TransactionsPath, err)
	}

	txs := make([]domain.Transaction, 0, len(rows))
	for i, row := range rows {
		if row.TransactionID == "" {
			return nil, fmt.Errorf("LoadTransactions: row %d: missing transaction_id", i+1)
		}
		if row.Timestamp.IsZero() {
			return nil, fmt.Errorf("LoadTransactions: row %d: missing timestamp", i+1)
		}
		txs = append(txs, domain.Transaction{
			TransactionID: row.TransactionID,
			CustomerID:    row.CustomerID,
			Timestamp:     row.Timestamp.Time,
			Amount:        row.Amount,
			Type:          domain.TransactionType(row.Type),
		})
	}

	return txs, nil
}
