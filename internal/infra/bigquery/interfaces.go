// Package bigquery implements the warehouse repository for customer feature
// tables on top of Google BigQuery.
package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"

	bq "github.com/dvloznov/feature-pipeline/internal/bigquery"
)

// Re-export interface from shared package for backward compatibility
type FeatureRepository = bq.FeatureRepository

// BigQueryFeatureRepository is the concrete implementation of
// FeatureRepository that interacts with BigQuery. It holds a shared client
// to avoid creating a new connection for each operation.
type BigQueryFeatureRepository struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

// NewBigQueryFeatureRepository creates a new repository with a shared
// BigQuery client bound to the given project and dataset.
func NewBigQueryFeatureRepository(ctx context.Context, projectID, datasetID string) (*BigQueryFeatureRepository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryFeatureRepository: creating client: %w", err)
	}
	return &BigQueryFeatureRepository{
		client:    client,
		projectID: projectID,
		datasetID: datasetID,
	}, nil
}

// Close closes the BigQuery client connection.
func (r *BigQueryFeatureRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// InsertFeatures delegates to InsertFeaturesWithClient with the shared client.
func (r *BigQueryFeatureRepository) InsertFeatures(ctx context.Context, rows []*bq.FeatureRow) error {
	return InsertFeaturesWithClient(ctx, r.client, r.projectID, r.datasetID, rows)
}

// QueryFeaturesBySegment delegates to QueryFeaturesBySegmentWithClient with the shared client.
func (r *BigQueryFeatureRepository) QueryFeaturesBySegment(ctx context.Context, segment string, referenceDate time.Time) ([]*bq.FeatureRow, error) {
	return QueryFeaturesBySegmentWithClient(ctx, r.client, r.projectID, r.datasetID, segment, referenceDate)
}

// QuerySegmentCounts delegates to QuerySegmentCountsWithClient with the shared client.
func (r *BigQueryFeatureRepository) QuerySegmentCounts(ctx context.Context, referenceDate time.Time) (map[string]int64, error) {
	return QuerySegmentCountsWithClient(ctx, r.client, r.projectID, r.datasetID, referenceDate)
}

var _ bq.FeatureRepository = (*BigQueryFeatureRepository)(nil)
