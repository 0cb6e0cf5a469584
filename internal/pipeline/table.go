package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dvloznov/feature-pipeline/internal/domain"
	"github.com/dvloznov/feature-pipeline/internal/features"
	"github.com/dvloznov/feature-pipeline/internal/segment"
)

// FeatureRow is one row of the output feature table: a customer's feature
// record plus the assigned segment label.
type FeatureRow struct {
	CustomerID      string
	Features        domain.FeatureRecord
	CustomerSegment domain.Segment
}

// Result is the assembled feature table for one run, together with the
// reference date the windows were anchored to and the report of rejected
// ledger rows.
type Result struct {
	ReferenceDate time.Time
	Rows          []FeatureRow
	Report        *features.ErrorReport
}

// BuildFeatureTable computes one feature row per customer and attaches the
// segment label. Customers are independent, so rows are computed
// concurrently; the output is ordered by customer ID and is identical for
// a fixed (customers, ledger, cfg) regardless of worker count.
//
// Rejected ledger rows are excluded and reported in Result.Report; an
// invalid configuration aborts before any aggregation.
func BuildFeatureTable(ctx context.Context, customers []domain.Customer, ledger []domain.Transaction, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("BuildFeatureTable: %w", err)
	}

	valid, report := features.ValidateLedger(customers, ledger)

	referenceDate, err := resolveReferenceDate(cfg, valid)
	if err != nil {
		return nil, fmt.Errorf("BuildFeatureTable: %w", err)
	}

	byCustomer := features.GroupByCustomer(valid)
	classifier := segment.New(cfg.Segments)

	// Stable output order, independent of map iteration and scheduling.
	ordered := make([]domain.Customer, len(customers))
	copy(ordered, customers)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].CustomerID < ordered[j].CustomerID })

	rows := make([]FeatureRow, len(ordered))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers())

	for i, customer := range ordered {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			rec := features.Aggregate(byCustomer[customer.CustomerID], referenceDate, cfg.Features)
			rows[i] = FeatureRow{
				CustomerID:      customer.CustomerID,
				Features:        rec,
				CustomerSegment: classifier.Classify(rec),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("BuildFeatureTable: %w", err)
	}

	return &Result{
		ReferenceDate: referenceDate,
		Rows:          rows,
		Report:        report,
	}, nil
}

// resolveReferenceDate picks the explicit reference date or falls back to
// the maximum valid transaction timestamp. An empty ledger with no
// explicit reference date is a configuration error: there is nothing to
// anchor the windows to.
func resolveReferenceDate(cfg Config, valid []domain.Transaction) (time.Time, error) {
	if cfg.ReferenceDate != nil {
		return *cfg.ReferenceDate, nil
	}
	max, ok := features.MaxTimestamp(valid)
	if !ok {
		return time.Time{}, fmt.Errorf("resolveReferenceDate: ledger has no valid transactions and no reference date was given: %w", features.ErrConfig)
	}
	return max, nil
}
