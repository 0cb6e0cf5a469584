// Package segment classifies customer feature records into behavioral
// segments using a priority-ordered rule list.
package segment

import (
	"fmt"

	"github.com/dvloznov/feature-pipeline/internal/domain"
	"github.com/dvloznov/feature-pipeline/internal/features"
)

// Default segmentation thresholds.
const (
	DefaultHighValueAmount    = 10000.0
	DefaultHighValueCount     = int64(20)
	DefaultActiveAmount       = 5000.0
	DefaultActiveCount        = int64(10)
	DefaultOccasionalAvgSpend = 500.0
	DefaultRegularCount       = int64(5)
)

// Thresholds configures the segmentation rules. Like the aggregation
// thresholds, these are explicit inputs rather than constants buried in
// the rule logic.
type Thresholds struct {
	HighValueAmount    float64 // rule 1: total_amount_12m cutoff
	HighValueCount     int64   // rule 1: total_transactions_12m cutoff
	ActiveAmount       float64 // rule 2: total_amount_12m cutoff
	ActiveCount        int64   // rule 2: total_transactions_12m cutoff
	OccasionalAvgSpend float64 // rule 3: avg_amount_12m cutoff
	RegularCount       int64   // rule 4: total_transactions_12m cutoff
}

// DefaultThresholds returns the documented default rule cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighValueAmount:    DefaultHighValueAmount,
		HighValueCount:     DefaultHighValueCount,
		ActiveAmount:       DefaultActiveAmount,
		ActiveCount:        DefaultActiveCount,
		OccasionalAvgSpend: DefaultOccasionalAvgSpend,
		RegularCount:       DefaultRegularCount,
	}
}

// Validate checks the thresholds and returns an error wrapping
// features.ErrConfig when one is unusable.
func (t Thresholds) Validate() error {
	if t.HighValueAmount < 0 || t.ActiveAmount < 0 || t.OccasionalAvgSpend < 0 {
		return fmt.Errorf("Validate: segmentation amount thresholds must be non-negative: %w", features.ErrConfig)
	}
	if t.HighValueCount < 0 || t.ActiveCount < 0 || t.RegularCount < 0 {
		return fmt.Errorf("Validate: segmentation count thresholds must be non-negative: %w", features.ErrConfig)
	}
	return nil
}

// Rule is one (predicate, label) pair. Rules are not mutually exclusive;
// their position in the list is the tie-break.
type Rule struct {
	Segment domain.Segment
	Matches func(domain.FeatureRecord) bool
}

// Classifier assigns exactly one segment to a feature record. Rules are
// evaluated in order and the first match wins, so the overlap between
// e.g. "active" and "high_value_active" is resolved by position, not by
// predicate shape.
type Classifier struct {
	rules []Rule
}

// New builds a classifier from the given thresholds. The final rule
// matches unconditionally, so every record receives a label.
func New(t Thresholds) *Classifier {
	return &Classifier{
		rules: []Rule{
			{
				Segment: domain.SegmentHighValueActive,
				Matches: func(r domain.FeatureRecord) bool {
					return r.TotalAmount12m > t.HighValueAmount && r.TotalTransactions12m > t.HighValueCount
				},
			},
			{
				Segment: domain.SegmentActive,
				Matches: func(r domain.FeatureRecord) bool {
					return r.TotalAmount12m > t.ActiveAmount || r.TotalTransactions12m > t.ActiveCount
				},
			},
			{
				Segment: domain.SegmentHighValueOccasional,
				Matches: func(r domain.FeatureRecord) bool {
					return r.AvgAmount12m > t.OccasionalAvgSpend
				},
			},
			{
				Segment: domain.SegmentRegular,
				Matches: func(r domain.FeatureRecord) bool {
					return r.TotalTransactions12m > t.RegularCount
				},
			},
			{
				Segment: domain.SegmentOccasional,
				Matches: func(r domain.FeatureRecord) bool {
					return r.TotalTransactions12m > 0
				},
			},
			{
				// Terminal catch-all: a customer with zero in-window
				// transactions is inactive even when older history exists.
				Segment: domain.SegmentInactive,
				Matches: func(domain.FeatureRecord) bool { return true },
			},
		},
	}
}

// Classify returns the first matching segment label. It is a pure
// function of the record and never fails: the terminal rule guarantees
// totality.
func (c *Classifier) Classify(rec domain.FeatureRecord) domain.Segment {
	for _, rule := range c.rules {
		if rule.Matches(rec) {
			return rule.Segment
		}
	}
	// Unreachable: the terminal rule always matches.
	return domain.SegmentInactive
}

// Rules exposes the ordered rule list, mainly so tests can assert the
// priority order as a visible artifact.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}
