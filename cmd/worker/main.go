package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/feature-pipeline/internal/config"
	"github.com/dvloznov/feature-pipeline/internal/features"
	"github.com/dvloznov/feature-pipeline/internal/gcsuploader"
	infraBQ "github.com/dvloznov/feature-pipeline/internal/infra/bigquery"
	"github.com/dvloznov/feature-pipeline/internal/jobs/inmemory"
	"github.com/dvloznov/feature-pipeline/internal/logger"
	"github.com/dvloznov/feature-pipeline/internal/pipeline"
	"github.com/dvloznov/feature-pipeline/internal/runner"
	"github.com/dvloznov/feature-pipeline/internal/segment"
)

func main() {
	// Initialize logger
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize job store and queue
	// In production, this would be replaced with Cloud Tasks or Pub/Sub
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.JobQueueSize, cfg.RunWorkers, jobStore)

	log.Info().Msg("Starting worker service")

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	run := &runner.Runner{
		Storage: gcsuploader.NewGCSStorageService(),
		WorkDir: cfg.WorkDir,
		Pipeline: pipeline.Config{
			Features: features.Config{
				HighValueThreshold: cfg.HighValueThreshold,
				LowValueThreshold:  cfg.LowValueThreshold,
			},
			Segments: segment.DefaultThresholds(),
			Workers:  cfg.WorkerCount,
		},
	}

	// Warehouse export is optional for the worker
	if cfg.BigQueryProject != "" {
		repo, err := infraBQ.NewBigQueryFeatureRepository(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create feature repository")
		}
		defer repo.Close()
		run.Warehouse = repo
	} else {
		log.Warn().Msg("No BigQuery project configured - warehouse export disabled")
	}

	// Start consuming jobs
	if err := jobQueue.Start(ctx, run.Handle); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Worker service started, waiting for runs...")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	// Cancel context to stop workers
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop the queue and wait for in-flight runs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Worker service exited")
}
