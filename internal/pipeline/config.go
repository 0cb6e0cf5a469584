package pipeline

import (
	"fmt"
	"time"

	"github.com/dvloznov/feature-pipeline/internal/features"
	"github.com/dvloznov/feature-pipeline/internal/segment"
)

// defaultWorkers bounds the per-customer fan-out when Config.Workers is
// left at zero.
const defaultWorkers = 8

// Config is the single configuration structure passed into both the
// aggregator and the classifier for one run. Nothing here is read from
// ambient state.
type Config struct {
	// ReferenceDate fixes the end of every 12-month window. When nil, the
	// maximum transaction timestamp in the ledger is used; "now" is
	// deliberately not a default because it would make the same input
	// produce different windows on different days.
	ReferenceDate *time.Time

	// Features holds the high/low value amount cutoffs.
	Features features.Config

	// Segments holds the classification rule cutoffs.
	Segments segment.Thresholds

	// Workers bounds the per-customer fan-out. Zero means defaultWorkers.
	Workers int
}

// DefaultConfig returns a run configuration with all documented defaults
// and no explicit reference date.
func DefaultConfig() Config {
	return Config{
		Features: features.DefaultConfig(),
		Segments: segment.DefaultThresholds(),
	}
}

// Validate checks the whole run configuration before any aggregation
// starts. Configuration errors are fatal for the batch.
func (c Config) Validate() error {
	if err := c.Features.Validate(); err != nil {
		return fmt.Errorf("Config.Validate: %w", err)
	}
	if err := c.Segments.Validate(); err != nil {
		return fmt.Errorf("Config.Validate: %w", err)
	}
	if c.ReferenceDate != nil && c.ReferenceDate.IsZero() {
		return fmt.Errorf("Config.Validate: explicit reference date is the zero time: %w", features.ErrConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("Config.Validate: workers %d is negative: %w", c.Workers, features.ErrConfig)
	}
	return nil
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return defaultWorkers
}
