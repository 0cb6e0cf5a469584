// Package registry holds an in-memory feature-store registry: entities,
// data sources, feature views and feature services describing the
// exported feature table, plus a JSON metadata export for catalog
// ingestion.
package registry

import (
	"time"
)

// ValueType is the declared type of a single feature field.
type ValueType string

const (
	TypeInt64   ValueType = "INT64"
	TypeFloat64 ValueType = "FLOAT64"
	TypeString  ValueType = "STRING"
	TypeUnixTS  ValueType = "UNIX_TIMESTAMP"
)

// Entity is a join key the feature views are keyed on.
type Entity struct {
	Name        string `json:"name"`
	JoinKey     string `json:"join_key"`
	Description string `json:"description,omitempty"`
}

// DataSource describes where a feature view's rows are materialized.
type DataSource struct {
	Name           string `json:"name"`
	Path           string `json:"path"`
	TimestampField string `json:"timestamp_field,omitempty"`
}

// Field is one named, typed feature column.
type Field struct {
	Name  string    `json:"name"`
	Dtype ValueType `json:"dtype"`
}

// FeatureView groups the fields computed together over one source.
type FeatureView struct {
	Name        string        `json:"name"`
	Entities    []string      `json:"entities"`
	TTL         time.Duration `json:"ttl_seconds"`
	Fields      []Field       `json:"fields"`
	Source      string        `json:"source"`
	Description string        `json:"description,omitempty"`
}

// FeatureService is a named bundle of feature views served together to a
// model or downstream consumer.
type FeatureService struct {
	Name        string   `json:"name"`
	Views       []string `json:"views"`
	Description string   `json:"description,omitempty"`
}
