package pipeline

import (
	"context"

	"github.com/dvloznov/feature-pipeline/internal/domain"
)

// Loader is an interface for reading the input tables. Concrete
// implementations own the transport (local CSV, GCS, BigQuery); the core
// only sees in-memory slices.
type Loader interface {
	LoadCustomers(ctx context.Context) ([]domain.Customer, error)
	LoadTransactions(ctx context.Context) ([]domain.Transaction, error)
}

// Exporter is an interface for persisting the assembled feature table.
// This abstraction allows different sinks (CSV file, BigQuery table) and
// enables mocking in tests.
type Exporter interface {
	ExportFeatures(ctx context.Context, result *Result) error
}
