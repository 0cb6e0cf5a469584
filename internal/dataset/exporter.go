package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/dvloznov/feature-pipeline/internal/domain"
	"github.com/dvloznov/feature-pipeline/internal/pipeline"
)

// CSVExporter writes the assembled feature table to a local CSV file. It
// implements pipeline.Exporter.
type CSVExporter struct {
	Path string
}

// NewCSVExporter creates an exporter writing to the given file path.
func NewCSVExporter(path string) *CSVExporter {
	return &CSVExporter{Path: path}
}

// ExportFeatures encodes one row per customer, in the assembler's stable
// order, with the exact downstream column names.
func (e *CSVExporter) ExportFeatures(ctx context.Context, result *pipeline.Result) error {
	if dir := filepath.Dir(e.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ExportFeatures: mkdir %q: %w", dir, err)
		}
	}

	rows := make([]*featureCSV, 0, len(result.Rows))
	for _, row := range result.Rows {
		rows = append(rows, toFeatureCSV(row))
	}

	f, err := os.Create(e.Path)
	if err != nil {
		return fmt.Errorf("ExportFeatures: create %q: %w", e.Path, err)
	}
	defer f.Close()

	if err := gocsv.Marshal(rows, f); err != nil {
		return fmt.Errorf("ExportFeatures: encode %q: %w", e.Path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("ExportFeatures: close %q: %w", e.Path, err)
	}

	return nil
}

func toFeatureCSV(row pipeline.FeatureRow) *featureCSV {
	rec := row.Features
	return &featureCSV{
		CustomerID:                row.CustomerID,
		WindowStart:               DateTime{rec.WindowStart},
		WindowEnd:                 DateTime{rec.WindowEnd},
		TotalTransactions12m:      rec.TotalTransactions12m,
		AvgTransactionsPerMonth:   rec.AvgTransactionsPerMonth,
		TotalAmount12m:            rec.TotalAmount12m,
		AvgAmount12m:              rec.AvgAmount12m,
		MaxAmount12m:              rec.MaxAmount12m,
		MinAmount12m:              rec.MinAmount12m,
		StdAmount12m:              rec.StdAmount12m,
		PurchaseCount12m:          rec.PurchaseCount12m,
		WithdrawalCount12m:        rec.WithdrawalCount12m,
		TransferCount12m:          rec.TransferCount12m,
		DepositCount12m:           rec.DepositCount12m,
		PurchaseAmount12m:         rec.PurchaseAmount12m,
		WithdrawalAmount12m:       rec.WithdrawalAmount12m,
		TransferAmount12m:         rec.TransferAmount12m,
		DepositAmount12m:          rec.DepositAmount12m,
		HighValueTransactions12m:  rec.HighValueTransactions12m,
		LowValueTransactions12m:   rec.LowValueTransactions12m,
		DaysSinceFirstTransaction: rec.DaysSinceFirstTransaction,
		CustomerSegment:           string(row.CustomerSegment),
	}
}

// SaveCustomers writes a customer table CSV, used by the synthetic data
// generator.
func SaveCustomers(path string, customers []domain.Customer) error {
	rows := make([]*customerCSV, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, &customerCSV{
			CustomerID: c.CustomerID,
			SignupDate: DateTime{c.SignupDate},
			Region:     c.Region,
		})
	}
	return writeCSV(path, rows)
}

// SaveTransactions writes a transaction ledger CSV, used by the synthetic
// data generator.
func SaveTransactions(path string, txs []domain.Transaction) error {
	rows := make([]*transactionCSV, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, &transactionCSV{
			TransactionID: tx.TransactionID,
			CustomerID:    tx.CustomerID,
			Timestamp:     DateTime{tx.Timestamp},
			Amount:        tx.Amount,
			Type:          string(tx.Type),
		})
	}
	return writeCSV(path, rows)
}

func writeCSV[T any](path string, rows []T) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("writeCSV: mkdir %q: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writeCSV: create %q: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.Marshal(rows, f); err != nil {
		return fmt.Errorf("writeCSV: encode %q: %w", path, err)
	}
	return f.Close()
}
