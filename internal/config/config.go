// Package config loads service configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the runtime configuration shared by the API server and worker.
type Config struct {
	// Port is the HTTP listen port for the API server.
	Port string `env:"PORT" envDefault:"8080"`

	// GCSBucket is the bucket used to stage datasets and publish feature tables.
	GCSBucket string `env:"GCS_BUCKET"`

	// BigQueryProject and BigQueryDataset locate the warehouse feature table.
	BigQueryProject string `env:"BIGQUERY_PROJECT"`
	BigQueryDataset string `env:"BIGQUERY_DATASET" envDefault:"features"`

	// NotionToken and NotionDatabaseID configure the data-catalog sync.
	NotionToken      string `env:"NOTION_TOKEN"`
	NotionDatabaseID string `env:"NOTION_DATABASE_ID"`

	// WorkerCount caps concurrent per-customer aggregation goroutines.
	WorkerCount int `env:"WORKER_COUNT" envDefault:"8"`

	// RunWorkers is the number of feature runs processed at once.
	RunWorkers int `env:"RUN_WORKERS" envDefault:"2"`

	// JobQueueSize is the in-memory run queue buffer.
	JobQueueSize int `env:"JOB_QUEUE_SIZE" envDefault:"32"`

	// WorkDir is the scratch directory for staged datasets and run outputs.
	WorkDir string `env:"WORK_DIR" envDefault:"/tmp/feature-pipeline"`

	// HighValueThreshold and LowValueThreshold override the transaction
	// value band used for the high/low value counters.
	HighValueThreshold float64 `env:"HIGH_VALUE_THRESHOLD" envDefault:"1000"`
	LowValueThreshold  float64 `env:"LOW_VALUE_THRESHOLD" envDefault:"10"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("Load: parse env: %w", err)
	}
	return cfg, nil
}

// RequireNotion reports an error when the catalog sync settings are missing.
func (c *Config) RequireNotion() error {
	if c.NotionToken == "" {
		return fmt.Errorf("NOTION_TOKEN is required")
	}
	if c.NotionDatabaseID == "" {
		return fmt.Errorf("NOTION_DATABASE_ID is required")
	}
	return nil
}

// RequireBigQuery reports an error when the warehouse settings are missing.
func (c *Config) RequireBigQuery() error {
	if c.BigQueryProject == "" {
		return fmt.Errorf("BIGQUERY_PROJECT is required")
	}
	return nil
}
