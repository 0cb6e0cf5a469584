package registry

import (
	"time"
)

// Definitions for the customer 12-month behavior feature set. Field names
// match the exported feature table columns exactly; downstream
// registration breaks if they drift.

// CustomerEntity is the join key for all customer feature views.
func CustomerEntity() Entity {
	return Entity{
		Name:        "customer",
		JoinKey:     "customer_id",
		Description: "A customer of the transaction ledger",
	}
}

// FeatureTableSource points at the exported feature table.
func FeatureTableSource(path string) DataSource {
	return DataSource{
		Name:           "customer_features_source",
		Path:           path,
		TimestampField: "window_end",
	}
}

// CustomerBehaviorView describes the trailing 12-month aggregate feature
// set plus the segment label.
func CustomerBehaviorView() FeatureView {
	return FeatureView{
		Name:        "customer_behavior_12m",
		Entities:    []string{"customer"},
		TTL:         365 * 24 * time.Hour,
		Source:      "customer_features_source",
		Description: "Trailing 12-month transaction statistics and behavioral segment per customer",
		Fields: []Field{
			{Name: "total_transactions_12m", Dtype: TypeInt64},
			{Name: "avg_transactions_per_month", Dtype: TypeFloat64},
			{Name: "total_amount_12m", Dtype: TypeFloat64},
			{Name: "avg_amount_12m", Dtype: TypeFloat64},
			{Name: "max_amount_12m", Dtype: TypeFloat64},
			{Name: "min_amount_12m", Dtype: TypeFloat64},
			{Name: "std_amount_12m", Dtype: TypeFloat64},
			{Name: "purchase_count_12m", Dtype: TypeInt64},
			{Name: "withdrawal_count_12m", Dtype: TypeInt64},
			{Name: "transfer_count_12m", Dtype: TypeInt64},
			{Name: "deposit_count_12m", Dtype: TypeInt64},
			{Name: "purchase_amount_12m", Dtype: TypeFloat64},
			{Name: "withdrawal_amount_12m", Dtype: TypeFloat64},
			{Name: "transfer_amount_12m", Dtype: TypeFloat64},
			{Name: "deposit_amount_12m", Dtype: TypeFloat64},
			{Name: "high_value_transactions_12m", Dtype: TypeInt64},
			{Name: "low_value_transactions_12m", Dtype: TypeInt64},
			{Name: "days_since_first_transaction", Dtype: TypeInt64},
			{Name: "customer_segment", Dtype: TypeString},
		},
	}
}

// SegmentationService bundles everything a segmentation consumer needs.
func SegmentationService() FeatureService {
	return FeatureService{
		Name:        "customer_segmentation",
		Views:       []string{"customer_behavior_12m"},
		Description: "Feature set backing customer segmentation",
	}
}

// RegisterCustomerFeatures applies the full customer feature definition
// set to the registry.
func RegisterCustomerFeatures(r *Registry, featureTablePath string) error {
	return r.Apply(
		[]Entity{CustomerEntity()},
		[]DataSource{FeatureTableSource(featureTablePath)},
		[]FeatureView{CustomerBehaviorView()},
		[]FeatureService{SegmentationService()},
	)
}
