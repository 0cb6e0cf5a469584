package registry

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCustomerFeatures(t *testing.T) {
	r := New()
	require.NoError(t, RegisterCustomerFeatures(r, "data/customer_features.csv"))

	views := r.FeatureViews()
	require.Len(t, views, 1)

	view := views[0]
	assert.Equal(t, "customer_behavior_12m", view.Name)
	assert.Equal(t, []string{"customer"}, view.Entities)
	assert.Equal(t, 365*24*time.Hour, view.TTL)
	assert.Equal(t, "customer_features_source", view.Source)
	assert.Len(t, view.Fields, 19)
}

func TestApplyValidation(t *testing.T) {
	tests := []struct {
		name     string
		entities []Entity
		sources  []DataSource
		views    []FeatureView
		services []FeatureService
		wantErr  string
	}{
		{
			name:     "entity without join key",
			entities: []Entity{{Name: "customer"}},
			wantErr:  "join key",
		},
		{
			name:    "view with unknown entity",
			sources: []DataSource{{Name: "src"}},
			views:   []FeatureView{{Name: "v", Entities: []string{"ghost"}, Source: "src"}},
			wantErr: "unknown entity",
		},
		{
			name:    "view with unknown source",
			views:   []FeatureView{{Name: "v", Source: "ghost"}},
			wantErr: "unknown source",
		},
		{
			name:     "service with unknown view",
			services: []FeatureService{{Name: "svc", Views: []string{"ghost"}}},
			wantErr:  "unknown view",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New().Apply(tt.entities, tt.sources, tt.views, tt.services)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplyIdempotent(t *testing.T) {
	r := New()
	require.NoError(t, RegisterCustomerFeatures(r, "a.csv"))
	require.NoError(t, RegisterCustomerFeatures(r, "b.csv"))

	assert.Len(t, r.FeatureViews(), 1)

	meta := r.Snapshot(time.Now())
	require.Len(t, meta.DataSources, 1)
	assert.Equal(t, "b.csv", meta.DataSources[0].Path)
}

func TestExportMetadata(t *testing.T) {
	r := New()
	require.NoError(t, RegisterCustomerFeatures(r, "data/customer_features.csv"))

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, r.ExportMetadata(&buf, now))

	var meta Metadata
	require.NoError(t, json.Unmarshal(buf.Bytes(), &meta))

	assert.Equal(t, "customer_feature_pipeline", meta.FeatureStore)
	assert.True(t, meta.ExportTimestamp.Equal(now))
	require.Len(t, meta.Entities, 1)
	assert.Equal(t, "customer_id", meta.Entities[0].JoinKey)
	require.Len(t, meta.FeatureViews, 1)
	require.Len(t, meta.FeatureServices, 1)
	assert.Equal(t, []string{"customer_behavior_12m"}, meta.FeatureServices[0].Views)
}

func TestViewFieldsMatchFeatureTableColumns(t *testing.T) {
	// The registered field names are the contract with the exported CSV
	// columns; drift breaks downstream feature retrieval.
	want := []string{
		"total_transactions_12m",
		"avg_transactions_per_month",
		"total_amount_12m",
		"avg_amount_12m",
		"max_amount_12m",
		"min_amount_12m",
		"std_amount_12m",
		"purchase_count_12m",
		"withdrawal_count_12m",
		"transfer_count_12m",
		"deposit_count_12m",
		"purchase_amount_12m",
		"withdrawal_amount_12m",
		"transfer_amount_12m",
		"deposit_amount_12m",
		"high_value_transactions_12m",
		"low_value_transactions_12m",
		"days_since_first_transaction",
		"customer_segment",
	}

	fields := CustomerBehaviorView().Fields
	require.Len(t, fields, len(want))
	for i, name := range want {
		assert.Equal(t, name, fields[i].Name)
	}
}
