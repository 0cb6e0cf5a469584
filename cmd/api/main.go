package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dvloznov/feature-pipeline/internal/api/handlers"
	"github.com/dvloznov/feature-pipeline/internal/api/middleware"
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

	if cfg.GCSBucket == "" {
		log.Warn().Msg("No GCS bucket configured - dataset staging will be disabled")
	}

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.JobQueueSize, cfg.RunWorkers, jobStore)

	// Runs are processed in-process; a separate worker deployment uses
	// cmd/worker instead.
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

	var featuresHandler *handlers.FeaturesHandler
	if cfg.BigQueryProject != "" {
		repo, err := infraBQ.NewBigQueryFeatureRepository(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create feature repository")
		}
		defer repo.Close()
		run.Warehouse = repo
		featuresHandler = handlers.NewFeaturesHandler(repo, log)
	} else {
		log.Warn().Msg("No BigQuery project configured - feature queries will be disabled")
	}

	// Start worker in background to process runs
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	go func() {
		log.Info().Msg("Starting run worker")
		if err := jobQueue.Start(workerCtx, run.Handle); err != nil {
			log.Error().Err(err).Msg("Run worker stopped with error")
		}
	}()

	// Initialize handlers
	runsHandler := handlers.NewRunsHandler(jobStore, jobQueue, log)
	datasetsHandler := handlers.NewDatasetsHandler(cfg.GCSBucket, log)

	// Create router
	mux := http.NewServeMux()

	// Runs endpoints
	mux.HandleFunc("/api/runs", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			runsHandler.EnqueueRun(w, r)
		case http.MethodGet:
			runsHandler.ListRuns(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/runs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			// Extract run ID from path
			jobID := strings.TrimPrefix(r.URL.Path, "/api/runs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Run ID is required")
				return
			}
			runsHandler.GetRun(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Dataset staging endpoints
	mux.HandleFunc("/api/datasets/upload/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			name := strings.TrimPrefix(r.URL.Path, "/api/datasets/upload/")
			if name == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Dataset name is required")
				return
			}
			datasetsHandler.UploadDataset(w, r, name)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Feature query endpoints
	mux.HandleFunc("/api/features", func(w http.ResponseWriter, r *http.Request) {
		if featuresHandler == nil {
			middleware.WriteError(w, http.StatusServiceUnavailable, "Warehouse not configured")
			return
		}
		if r.Method == http.MethodGet {
			featuresHandler.ListFeaturesBySegment(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/segments", func(w http.ResponseWriter, r *http.Request) {
		if featuresHandler == nil {
			middleware.WriteError(w, http.StatusServiceUnavailable, "Warehouse not configured")
			return
		}
		if r.Method == http.MethodGet {
			featuresHandler.SegmentCounts(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Cancel worker context
	cancelWorker()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight runs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}
