package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	bq "github.com/dvloznov/feature-pipeline/internal/bigquery"
)

const (
	featuresTable = "customer_features"
	dateFormat    = "2006-01-02"
)

// InsertFeatures inserts a batch of FeatureRow into <dataset>.customer_features.
func InsertFeatures(ctx context.Context, projectID, datasetID string, rows []*bq.FeatureRow) error {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("InsertFeatures: bigquery client: %w", err)
	}
	defer client.Close()

	return InsertFeaturesWithClient(ctx, client, projectID, datasetID, rows)
}

// InsertFeaturesWithClient inserts a batch of FeatureRow using the provided
// BigQuery client.
func InsertFeaturesWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID string, rows []*bq.FeatureRow) error {
	if len(rows) == 0 {
		return nil
	}

	// Use fully qualified table name to avoid project ID issues
	table := client.DatasetInProject(projectID, datasetID).Table(featuresTable)
	inserter := table.Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertFeatures: inserting rows: %w", err)
	}

	return nil
}

// QueryFeaturesBySegmentWithClient retrieves the feature rows for one segment
// at a reference date, ordered by customer_id.
func QueryFeaturesBySegmentWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID, segment string, referenceDate time.Time) ([]*bq.FeatureRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			f.customer_id,
			f.window_start,
			f.window_end,
			f.total_transactions_12m,
			f.avg_transactions_per_month,
			f.total_amount_12m,
			f.avg_amount_12m,
			f.max_amount_12m,
			f.min_amount_12m,
			f.std_amount_12m,
			f.purchase_count_12m,
			f.withdrawal_count_12m,
			f.transfer_count_12m,
			f.deposit_count_12m,
			f.purchase_amount_12m,
			f.withdrawal_amount_12m,
			f.transfer_amount_12m,
			f.deposit_amount_12m,
			f.high_value_transactions_12m,
			f.low_value_transactions_12m,
			f.days_since_first_transaction,
			f.customer_segment,
			f.exported_ts
		FROM %s.%s f
		WHERE f.customer_segment = @segment
		  AND f.window_end = @window_end
		ORDER BY f.customer_id
	`, datasetID, featuresTable))
	q.DefaultProjectID = projectID
	q.Parameters = []bigquery.QueryParameter{
		{Name: "segment", Value: segment},
		{Name: "window_end", Value: referenceDate.Format(dateFormat)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryFeaturesBySegment: query read: %w", err)
	}

	var rows []*bq.FeatureRow
	for {
		var r bq.FeatureRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryFeaturesBySegment: iter next: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}

// QuerySegmentCountsWithClient returns per-segment customer counts for a
// reference date.
func QuerySegmentCountsWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID string, referenceDate time.Time) (map[string]int64, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			f.customer_segment AS segment,
			COUNT(*) AS customers
		FROM %s.%s f
		WHERE f.window_end = @window_end
		GROUP BY f.customer_segment
	`, datasetID, featuresTable))
	q.DefaultProjectID = projectID
	q.Parameters = []bigquery.QueryParameter{
		{Name: "window_end", Value: referenceDate.Format(dateFormat)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QuerySegmentCounts: query read: %w", err)
	}

	counts := make(map[string]int64)
	for {
		var r struct {
			Segment   string `bigquery:"segment"`
			Customers int64  `bigquery:"customers"`
		}
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QuerySegmentCounts: iter next: %w", err)
		}
		counts[r.Segment] = r.Customers
	}

	return counts, nil
}
