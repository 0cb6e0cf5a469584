package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/feature-pipeline/internal/catalog"
	"github.com/dvloznov/feature-pipeline/internal/dataset"
	"github.com/dvloznov/feature-pipeline/internal/features"
	"github.com/dvloznov/feature-pipeline/internal/gcsuploader"
	"github.com/dvloznov/feature-pipeline/internal/gen"
	"github.com/dvloznov/feature-pipeline/internal/logger"
	"github.com/dvloznov/feature-pipeline/internal/pipeline"
	"github.com/dvloznov/feature-pipeline/internal/registry"
	"github.com/dvloznov/feature-pipeline/internal/segment"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		runGenerate(log)
	case "features":
		runFeatures(log)
	case "upload":
		runUpload(log)
	case "registry":
		runRegistry(log)
	case "sync-catalog":
		runSyncCatalog(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Feature Pipeline CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  generate      Generate a synthetic customer and transaction dataset")
	fmt.Println("  features      Build the labeled customer feature table from CSVs")
	fmt.Println("  upload        Upload a dataset file to GCS")
	fmt.Println("  registry      Export the feature-store registry metadata as JSON")
	fmt.Println("  sync-catalog  Mirror the registry into the Notion data catalog")
	fmt.Println("  help          Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runGenerate(log zerolog.Logger) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	outDir := fs.String("out", "data", "Output directory for the dataset CSVs")
	customers := fs.Int("customers", 1000, "Number of customers to generate")
	days := fs.Int("days", 400, "Ledger history length in days")
	seed := fs.Int64("seed", 42, "Random seed")
	errorRate := fs.Float64("error-rate", 0, "Fraction of ledger rows corrupted with data errors")
	endDate := fs.String("end-date", "", "Last ledger day as YYYY-MM-DD (defaults to today)")
	fs.Parse(os.Args[2:])

	end := time.Now().UTC().Truncate(24 * time.Hour)
	if *endDate != "" {
		parsed, err := time.Parse("2006-01-02", *endDate)
		if err != nil {
			log.Fatal().Err(err).Msg("Error: invalid --end-date format, expected YYYY-MM-DD")
		}
		end = parsed
	}

	cfg := gen.DefaultConfig(end)
	cfg.Customers = *customers
	cfg.Days = *days
	cfg.Seed = *seed
	cfg.ErrorRate = *errorRate

	log.Info().
		Int("customers", cfg.Customers).
		Int("days", cfg.Days).
		Int64("seed", cfg.Seed).
		Msg("Generating dataset")

	custs, txs, err := gen.Generate(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Generation failed")
	}

	customersPath := filepath.Join(*outDir, dataset.CustomersFile)
	transactionsPath := filepath.Join(*outDir, dataset.TransactionsFile)

	if err := dataset.SaveCustomers(customersPath, custs); err != nil {
		log.Fatal().Err(err).Msg("Failed to write customers CSV")
	}
	if err := dataset.SaveTransactions(transactionsPath, txs); err != nil {
		log.Fatal().Err(err).Msg("Failed to write transactions CSV")
	}

	fmt.Printf("Generated %d customers and %d transactions in %s\n", len(custs), len(txs), *outDir)
}

func runFeatures(log zerolog.Logger) {
	fs := flag.NewFlagSet("features", flag.ExitOnError)
	customersPath := fs.String("customers", "data/customers.csv", "Path to the customer table CSV")
	transactionsPath := fs.String("transactions", "data/transactions.csv", "Path to the transaction ledger CSV")
	outputPath := fs.String("output", "data/customer_features.csv", "Path for the labeled feature table CSV")
	referenceDate := fs.String("reference-date", "", "Window anchor as YYYY-MM-DD (defaults to the latest transaction)")
	highValue := fs.Float64("high-value", features.DefaultHighValueThreshold, "High-value transaction threshold")
	lowValue := fs.Float64("low-value", features.DefaultLowValueThreshold, "Low-value transaction threshold")
	fs.Parse(os.Args[2:])

	cfg := pipeline.Config{
		Features: features.Config{
			HighValueThreshold: *highValue,
			LowValueThreshold:  *lowValue,
		},
		Segments: segment.DefaultThresholds(),
	}

	if *referenceDate != "" {
		ref, err := time.Parse("2006-01-02", *referenceDate)
		if err != nil {
			log.Fatal().Err(err).Msg("Error: invalid --reference-date format, expected YYYY-MM-DD")
		}
		cfg.ReferenceDate = &ref
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().Str("transactions", *transactionsPath).Msg("Starting feature run")

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

func runUpload(log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", "", "GCS bucket name")
	objectName := fs.String("object", "", "GCS object name (defaults to filename)")
	filePath := fs.String("file", "", "Path to local dataset file")
	fs.Parse(os.Args[2:])

	if *bucketName == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH")
	}

	if *objectName == "" {
		*objectName = filepath.Base(*filePath)
	}

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("bucket", *bucketName).
		Str("object", *objectName).
		Str("file", *filePath).
		Msg("Uploading file to GCS")

	if err := gcsuploader.UploadFile(ctx, *bucketName, *objectName, *filePath); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to gs://%s/%s\n", *filePath, *bucketName, *objectName)
}

func runRegistry(log zerolog.Logger) {
	fs := flag.NewFlagSet("registry", flag.ExitOnError)
	featuresPath := fs.String("features", "data/customer_features.csv", "Feature table path recorded as the view source")
	outPath := fs.String("out", "", "Write metadata JSON to this file instead of stdout")
	fs.Parse(os.Args[2:])

	reg := registry.New()
	if err := registry.RegisterCustomerFeatures(reg, *featuresPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to build registry")
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create output file")
		}
		defer f.Close()
		out = f
	}

	if err := reg.ExportMetadata(out, time.Now().UTC()); err != nil {
		log.Fatal().Err(err).Msg("Failed to export registry metadata")
	}
}

func runSyncCatalog(log zerolog.Logger) {
	fs := flag.NewFlagSet("sync-catalog", flag.ExitOnError)
	featuresPath := fs.String("features", "data/customer_features.csv", "Feature table path recorded as the view source")
	notionToken := fs.String("notion-token", os.Getenv("NOTION_TOKEN"), "Notion API token (or set NOTION_TOKEN env)")
	notionDBID := fs.String("notion-db-id", os.Getenv("NOTION_DATABASE_ID"), "Notion database ID (or set NOTION_DATABASE_ID env)")
	dryRun := fs.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	fs.Parse(os.Args[2:])

	if *notionToken == "" {
		log.Fatal().Msg("Error: --notion-token is required")
	}
	if *notionDBID == "" {
		log.Fatal().Msg("Error: --notion-db-id is required")
	}

	reg := registry.New()
	if err := registry.RegisterCustomerFeatures(reg, *featuresPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to build registry")
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().Bool("dry_run", *dryRun).Msg("Starting catalog sync")

	notionClient := catalog.NewNotionClient(*notionToken)

	if err := catalog.SyncFeatureViews(ctx, notionClient, *notionDBID, reg, *dryRun); err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	fmt.Println("Catalog sync completed successfully.")
}
