// Package runner executes feature-run jobs end to end: it materializes
// staged datasets, runs the aggregation pipeline, and publishes the labeled
// feature table to local files, cloud storage and the warehouse.
package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dvloznov/feature-pipeline/internal/bigquery"
	"github.com/dvloznov/feature-pipeline/internal/dataset"
	"github.com/dvloznov/feature-pipeline/internal/gcs"
	"github.com/dvloznov/feature-pipeline/internal/gcsuploader"
	infraBQ "github.com/dvloznov/feature-pipeline/internal/infra/bigquery"
	"github.com/dvloznov/feature-pipeline/internal/jobs"
	"github.com/dvloznov/feature-pipeline/internal/logger"
	"github.com/dvloznov/feature-pipeline/internal/pipeline"
)

// Runner processes feature-run jobs.
type Runner struct {
	// Storage stages gs:// datasets to the local filesystem and publishes
	// outputs. Required only when job paths use gs:// URIs.
	Storage gcs.StorageService

	// Warehouse receives the feature rows after each successful run.
	// Optional; runs still succeed with CSV output alone.
	Warehouse bigquery.FeatureRepository

	// WorkDir is the scratch directory for staged files.
	WorkDir string

	// Pipeline carries the aggregation and segmentation settings shared by
	// all runs. A job's reference date and value-band thresholds override
	// the configured ones.
	Pipeline pipeline.Config
}

// Handle adapts Execute to the jobs.JobHandler signature.
func (r *Runner) Handle(ctx context.Context, job jobs.Job) error {
	runJob, ok := job.(*jobs.FeatureRunJob)
	if !ok {
		return fmt.Errorf("unexpected job type: %T", job)
	}
	return r.Execute(ctx, runJob)
}

// Execute runs a single feature-run job. On success it records the row
// counts on the job for the run listing endpoints.
func (r *Runner) Execute(ctx context.Context, job *jobs.FeatureRunJob) error {
	log := logger.FromContext(ctx).With().Str("job_id", job.JobID).Logger()
	ctx = logger.WithContext(ctx, log)

	scratch := filepath.Join(r.WorkDir, job.JobID)

	customersPath, err := r.materialize(ctx, job.CustomersPath, filepath.Join(scratch, dataset.CustomersFile))
	if err != nil {
		return fmt.Errorf("Execute: staging customers: %w", err)
	}
	transactionsPath, err := r.materialize(ctx, job.TransactionsPath, filepath.Join(scratch, dataset.TransactionsFile))
	if err != nil {
		return fmt.Errorf("Execute: staging transactions: %w", err)
	}

	outputPath := job.OutputPath
	uploadOutput := isGCSURI(outputPath)
	if uploadOutput {
		outputPath = filepath.Join(scratch, dataset.FeaturesFile)
	}

	cfg := r.Pipeline
	if job.ReferenceDate != nil {
		cfg.ReferenceDate = job.ReferenceDate
	}
	if job.HighValueThreshold != nil {
		cfg.Features.HighValueThreshold = *job.HighValueThreshold
	}
	if job.LowValueThreshold != nil {
		cfg.Features.LowValueThreshold = *job.LowValueThreshold
	}

	loader := &dataset.CSVLoader{
		CustomersPath:    customersPath,
		TransactionsPath: transactionsPath,
	}
	exporter := &dataset.CSVExporter{Path: outputPath}

	result, err := pipeline.Run(ctx, loader, exporter, cfg)
	if err != nil {
		return fmt.Errorf("Execute: %w", err)
	}

	job.FeatureRows = len(result.Rows)
	job.RejectedRows = result.Report.Count()

	if uploadOutput {
		bucket, object, err := gcsuploader.ParseGCSURI(job.OutputPath)
		if err != nil {
			return fmt.Errorf("Execute: output URI: %w", err)
		}
		if err := r.Storage.UploadFile(ctx, bucket, object, outputPath); err != nil {
			return fmt.Errorf("Execute: publishing output: %w", err)
		}
		log.Info().Str("gcs_uri", job.OutputPath).Msg("Feature table published")
	}

	if r.Warehouse != nil {
		rows := infraBQ.RowsFromResult(result, time.Now().UTC())
		if err := r.Warehouse.InsertFeatures(ctx, rows); err != nil {
			return fmt.Errorf("Execute: warehouse insert: %w", err)
		}
		log.Info().Int("rows", len(rows)).Msg("Feature table exported to warehouse")
	}

	return nil
}

// materialize returns a local path for the given dataset location,
// downloading it first when it is a gs:// URI.
func (r *Runner) materialize(ctx context.Context, location, destPath string) (string, error) {
	if !isGCSURI(location) {
		return location, nil
	}
	if r.Storage == nil {
		return "", fmt.Errorf("gs:// path %q requires a storage service", location)
	}
	if err := r.Storage.DownloadToFile(ctx, location, destPath); err != nil {
		return "", err
	}
	return destPath, nil
}

func isGCSURI(s string) bool {
	return strings.HasPrefix(s, "gs://")
}
