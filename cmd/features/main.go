package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/dvloznov/feature-pipeline/internal/dataset"
	"github.com/dvloznov/feature-pipeline/internal/features"
	"github.com/dvloznov/feature-pipeline/internal/logger"
	"github.com/dvloznov/feature-pipeline/internal/pipeline"
	"github.com/dvloznov/feature-pipeline/internal/segment"
)

func main() {
	// Initialize structured logger
	log := logger.New()

	// Parse CLI flags
	customersPath := flag.String("customers", "data/customers.csv", "Path to the customer table CSV")
	transactionsPath := flag.String("transactions", "data/transactions.csv", "Path to the transaction ledger CSV")
	outputPath := flag.String("output", "data/customer_features.csv", "Path for the labeled feature table CSV")
	referenceDate := flag.String("reference-date", "", "Window anchor as YYYY-MM-DD (defaults to the latest transaction)")
	highValue := flag.Float64("high-value", features.DefaultHighValueThreshold, "High-value transaction threshold")
	lowValue := flag.Float64("low-value", features.DefaultLowValueThreshold, "Low-value transaction threshold")
	workers := flag.Int("workers", 0, "Concurrent aggregation workers (0 = default)")
	flag.Parse()

	cfg := pipeline.Config{
		Features: features.Config{
			HighValueThreshold: *highValue,
			LowValueThreshold:  *lowValue,
		},
		Segments: segment.DefaultThresholds(),
		Workers:  *workers,
	}

	if *referenceDate != "" {
		ref, err := time.Parse("2006-01-02", *referenceDate)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid --reference-date, want YYYY-MM-DD")
		}
		cfg.ReferenceDate = &ref
	}

	// Create context with timeout so the batch doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// Add logger to context
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("customers", *customersPath).
		Str("transactions", *transactionsPath).
		Str("output", *outputPath).
		Msg("Starting feature run")

	loader := &dataset.CSVLoader{
		CustomersPath:    *customersPath,
		TransactionsPath: *transactionsPath,
	}
	exporter := &dataset.CSVExporter{Path: *outputPath}

	result, err := pipeline.Run(ctx, loader, exporter, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Feature run failed")
	}

	fmt.Printf("Feature run completed: %d customers, %d rows rejected.\n", len(result.Rows), result.Report.Count())
}
