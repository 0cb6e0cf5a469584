package features

import (
	"errors"
	"fmt"
)

// ErrConfig marks fatal configuration errors. The aggregator refuses to
// run with an invalid configuration instead of falling back to a default.
var ErrConfig = errors.New("invalid configuration")

// Default amount cutoffs for the high/low value transaction counters.
const (
	DefaultHighValueThreshold = 1000.0
	DefaultLowValueThreshold  = 10.0
)

// Config holds the threshold configuration consumed by the aggregator.
// Thresholds are always passed in explicitly; nothing is read from
// ambient or global state, so the same engine can be run against
// multiple threshold regimes deterministically.
type Config struct {
	// HighValueThreshold counts in-window transactions with amount
	// strictly greater than this value.
	HighValueThreshold float64

	// LowValueThreshold counts in-window transactions with amount
	// strictly less than this value.
	LowValueThreshold float64
}

// DefaultConfig returns the documented default thresholds.
func DefaultConfig() Config {
	return Config{
		HighValueThreshold: DefaultHighValueThreshold,
		LowValueThreshold:  DefaultLowValueThreshold,
	}
}

// Validate checks the configuration and returns an error wrapping
// ErrConfig when a threshold is unusable.
func (c Config) Validate() error {
	if c.HighValueThreshold < 0 {
		return fmt.Errorf("Validate: high-value threshold %v is negative: %w", c.HighValueThreshold, ErrConfig)
	}
	if c.LowValueThreshold < 0 {
		return fmt.Errorf("Validate: low-value threshold %v is negative: %w", c.LowValueThreshold, ErrConfig)
	}
	if c.LowValueThreshold > c.HighValueThreshold {
		return fmt.Errorf("Validate: low-value threshold %v exceeds high-value threshold %v: %w",
			c.LowValueThreshold, c.HighValueThreshold, ErrConfig)
	}
	return nil
}
