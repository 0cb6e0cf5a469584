package jobs

import (
	"context"
	"time"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeFeatureRun represents a feature-generation batch run.
	JobTypeFeatureRun JobType = "feature_run"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is being retried.
	JobStatusRetrying JobStatus = "retrying"
)

// FeatureRunJob represents one feature-generation batch over a dataset.
type FeatureRunJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// CustomersPath is the customer table CSV to load.
	CustomersPath string `json:"customers_path"`

	// TransactionsPath is the transaction ledger CSV to load.
	TransactionsPath string `json:"transactions_path"`

	// OutputPath is where the labeled feature table is written.
	OutputPath string `json:"output_path"`

	// ReferenceDate anchors all 12-month windows. When nil, the run uses
	// the maximum transaction timestamp in the ledger.
	ReferenceDate *time.Time `json:"reference_date,omitempty"`

	// HighValueThreshold and LowValueThreshold override the configured
	// value-band cutoffs for this run. Nil keeps the configured values.
	HighValueThreshold *float64 `json:"high_value_threshold,omitempty"`
	LowValueThreshold  *float64 `json:"low_value_threshold,omitempty"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// FeatureRows is the number of feature rows the run produced.
	FeatureRows int `json:"feature_rows,omitempty"`

	// RejectedRows is the number of ledger rows excluded as data errors.
	RejectedRows int `json:"rejected_rows,omitempty"`

	// RetryCount is the number of times this job has been retried.
	RetryCount int `json:"retry_count"`

	// MaxRetries is the maximum number of retries allowed.
	MaxRetries int `json:"max_retries"`
}

// Job is a generic interface for all job types.
type Job interface {
	// GetID returns the unique job identifier.
	GetID() string

	// GetType returns the job type.
	GetType() JobType

	// GetStatus returns the current job status.
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *FeatureRunJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *FeatureRunJob) GetType() JobType {
	return JobTypeFeatureRun
}

// GetStatus implements the Job interface.
func (j *FeatureRunJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue.
// This abstraction allows for different queue implementations (in-memory, Cloud Tasks, Pub/Sub).
type Publisher interface {
	// PublishFeatureRun publishes a feature-generation job.
	PublishFeatureRun(ctx context.Context, job *FeatureRunJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job.
// It should return an error if the job failed and should be retried.
type JobHandler func(ctx context.Context, job Job) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *FeatureRunJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*FeatureRunJob, error)

	// ListJobs retrieves jobs with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*FeatureRunJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
