// Package pipeline assembles the customer feature table: it joins the
// per-customer aggregates over the full ledger, attaches segment labels
// and hands the result to an exporter.
package pipeline

import (
	"context"
	"fmt"

	"github.com/dvloznov/feature-pipeline/internal/logger"
)

// Run executes one full feature-generation batch with the given
// collaborators: load both input tables, build the labeled feature table
// and export it. Rejected ledger rows are logged but do not abort the
// batch; configuration errors do.
func Run(ctx context.Context, loader Loader, exporter Exporter, cfg Config) (*Result, error) {
	log := logger.FromContext(ctx)

	// 1. Load the customer table.
	customers, err := loader.LoadCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("Run: loading customers: %w", err)
	}

	// 2. Load the transaction ledger.
	ledger, err := loader.LoadTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("Run: loading transactions: %w", err)
	}

	log.Info().
		Int("customers", len(customers)).
		Int("transactions", len(ledger)).
		Msg("Loaded input tables")

	// 3. Aggregate and classify.
	result, err := BuildFeatureTable(ctx, customers, ledger, cfg)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	if result.Report.Count() > 0 {
		for reason, n := range result.Report.CountByReason() {
			log.Warn().
				Str("reason", string(reason)).
				Int("rows", n).
				Msg("Rejected ledger rows")
		}
	}

	log.Info().
		Time("reference_date", result.ReferenceDate).
		Int("feature_rows", len(result.Rows)).
		Int("rejected_rows", result.Report.Count()).
		Msg("Feature table assembled")

	// 4. Export the labeled feature table.
	if err := exporter.ExportFeatures(ctx, result); err != nil {
		return nil, fmt.Errorf("Run: exporting features: %w", err)
	}

	return result, nil
}
