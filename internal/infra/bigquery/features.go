package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	bq "github.com/dvloznov/feature-pipeline/internal/bigquery"
	"github.com/dvloznov/feature-pipeline/internal/pipeline"
)

// RowsFromResult converts a pipeline run into warehouse rows. Row order
// follows the run's customer_id ordering.
func RowsFromResult(result *pipeline.Result, exportedTS time.Time) []*bq.FeatureRow {
	rows := make([]*bq.FeatureRow, 0, len(result.Rows))
	for _, r := range result.Rows {
		f := r.Features

		row := &bq.FeatureRow{
			CustomerID: r.CustomerID,

			WindowStart: civil.DateOf(f.WindowStart),
			WindowEnd:   civil.DateOf(f.WindowEnd),

			TotalTransactions12m:    f.TotalTransactions12m,
			AvgTransactionsPerMonth: f.AvgTransactionsPerMonth,

			TotalAmount12m: f.TotalAmount12m,
			AvgAmount12m:   f.AvgAmount12m,
			MaxAmount12m:   f.MaxAmount12m,
			MinAmount12m:   f.MinAmount12m,
			StdAmount12m:   f.StdAmount12m,

			PurchaseCount12m:   f.PurchaseCount12m,
			WithdrawalCount12m: f.WithdrawalCount12m,
			TransferCount12m:   f.TransferCount12m,
			DepositCount12m:    f.DepositCount12m,

			PurchaseAmount12m:   f.PurchaseAmount12m,
			WithdrawalAmount12m: f.WithdrawalAmount12m,
			TransferAmount12m:   f.TransferAmount12m,
			DepositAmount12m:    f.DepositAmount12m,

			HighValueTransactions12m: f.HighValueTransactions12m,
			LowValueTransactions12m:  f.LowValueTransactions12m,

			CustomerSegment: string(r.CustomerSegment),
			ExportedTS:      exportedTS,
		}

		if f.DaysSinceFirstTransaction != nil {
			row.DaysSinceFirstTransaction = bigquery.NullInt64{
				Int64: *f.DaysSinceFirstTransaction,
				Valid: true,
			}
		}

		rows = append(rows, row)
	}

	return rows
}
