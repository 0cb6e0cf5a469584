// Package bigquery defines the shared row types and repository interfaces
// for the warehouse copy of the customer feature table.
package bigquery

import (
	"context"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

// FeatureRepository provides an interface for feature-table warehouse operations.
type FeatureRepository interface {
	// InsertFeatures inserts a batch of FeatureRow into the warehouse.
	InsertFeatures(ctx context.Context, rows []*FeatureRow) error

	// QueryFeaturesBySegment retrieves the feature rows carrying the given
	// segment label for a reference date.
	QueryFeaturesBySegment(ctx context.Context, segment string, referenceDate time.Time) ([]*FeatureRow, error)

	// QuerySegmentCounts returns the number of customers per segment for a
	// reference date.
	QuerySegmentCounts(ctx context.Context, referenceDate time.Time) (map[string]int64, error)
}

// FeatureRow represents one customer's feature vector in the warehouse.
// Window bounds are stored as dates: the engine anchors windows to whole
// days, and daily snapshot partitions key on window_end.
type FeatureRow struct {
	CustomerID string `bigquery:"customer_id"` // REQUIRED

	WindowStart civil.Date `bigquery:"window_start"` // REQUIRED
	WindowEnd   civil.Date `bigquery:"window_end"`   // REQUIRED

	TotalTransactions12m    int64   `bigquery:"total_transactions_12m"`
	AvgTransactionsPerMonth float64 `bigquery:"avg_transactions_per_month"`

	TotalAmount12m float64 `bigquery:"total_amount_12m"`
	AvgAmount12m   float64 `bigquery:"avg_amount_12m"`
	MaxAmount12m   float64 `bigquery:"max_amount_12m"`
	MinAmount12m   float64 `bigquery:"min_amount_12m"`
	StdAmount12m   float64 `bigquery:"std_amount_12m"`

	PurchaseCount12m   int64 `bigquery:"purchase_count_12m"`
	WithdrawalCount12m int64 `bigquery:"withdrawal_count_12m"`
	TransferCount12m   int64 `bigquery:"transfer_count_12m"`
	DepositCount12m    int64 `bigquery:"deposit_count_12m"`

	PurchaseAmount12m   float64 `bigquery:"purchase_amount_12m"`
	WithdrawalAmount12m float64 `bigquery:"withdrawal_amount_12m"`
	TransferAmount12m   float64 `bigquery:"transfer_amount_12m"`
	DepositAmount12m    float64 `bigquery:"deposit_amount_12m"`

	HighValueTransactions12m int64 `bigquery:"high_value_transactions_12m"`
	LowValueTransactions12m  int64 `bigquery:"low_value_transactions_12m"`

	DaysSinceFirstTransaction bigquery.NullInt64 `bigquery:"days_since_first_transaction"` // NULLABLE

	CustomerSegment string `bigquery:"customer_segment"` // REQUIRED

	ExportedTS time.Time `bigquery:"exported_ts"` // REQUIRED (default CURRENT_TIMESTAMP)
}
