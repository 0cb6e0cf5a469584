package inmemory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dvloznov/feature-pipeline/internal/jobs"
)

func TestStoreSaveAndGet(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	job := &jobs.FeatureRunJob{
		JobID:            "job-1",
		CustomersPath:    "data/customers.csv",
		TransactionsPath: "data/transactions.csv",
		OutputPath:       "data/customer_features.csv",
		Status:           jobs.JobStatusPending,
		CreatedAt:        time.Now(),
	}

	if err := store.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob() error = %v", err)
	}

	got, err := store.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if got.CustomersPath != job.CustomersPath {
		t.Errorf("CustomersPath = %s, want %s", got.CustomersPath, job.CustomersPath)
	}

	// The store hands out copies, not aliases.
	got.Status = jobs.JobStatusFailed
	again, err := store.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if again.Status != jobs.JobStatusPending {
		t.Error("mutating a returned job leaked into the store")
	}
}

func TestStoreSaveRequiresID(t *testing.T) {
	store := NewStore()
	if err := store.SaveJob(context.Background(), &jobs.FeatureRunJob{}); err == nil {
		t.Fatal("SaveJob() accepted a job without an ID")
	}
}

func TestStoreGetMissing(t *testing.T) {
	store := NewStore()
	if _, err := store.GetJob(context.Background(), "nope"); err == nil {
		t.Fatal("GetJob() error = nil for a missing job")
	}
}

func TestStoreListJobs(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	base := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	for i, status := range []jobs.JobStatus{
		jobs.JobStatusCompleted,
		jobs.JobStatusPending,
		jobs.JobStatusCompleted,
	} {
		job := &jobs.FeatureRunJob{
			JobID:     string(rune('a' + i)),
			Status:    status,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.SaveJob(ctx, job); err != nil {
			t.Fatalf("SaveJob() error = %v", err)
		}
	}

	completed, err := store.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusCompleted})
	if err != nil {
		t.Fatalf("ListJobs() error = %v", err)
	}
	if len(completed) != 2 {
		t.Fatalf("got %d completed jobs, want 2", len(completed))
	}
	// Newest first.
	if completed[0].JobID != "c" || completed[1].JobID != "a" {
		t.Errorf("order = %s, %s; want c, a", completed[0].JobID, completed[1].JobID)
	}

	limited, err := store.ListJobs(ctx, jobs.JobFilter{Limit: 1})
	if err != nil {
		t.Fatalf("ListJobs() error = %v", err)
	}
	if len(limited) != 1 || limited[0].JobID != "c" {
		t.Errorf("Limit=1 returned %d jobs", len(limited))
	}

	offset, err := store.ListJobs(ctx, jobs.JobFilter{Offset: 10})
	if err != nil {
		t.Fatalf("ListJobs() error = %v", err)
	}
	if len(offset) != 0 {
		t.Errorf("Offset past the end returned %d jobs, want 0", len(offset))
	}
}

func TestQueueProcessesJob(t *testing.T) {
	store := NewStore()
	queue := NewQueue(10, 1, store)
	defer queue.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan string, 1)
	handler := func(ctx context.Context, job jobs.Job) error {
		done <- job.GetID()
		return nil
	}

	if err := queue.Start(ctx, handler); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	job := &jobs.FeatureRunJob{JobID: "run-1"}
	if err := queue.PublishFeatureRun(ctx, job); err != nil {
		t.Fatalf("PublishFeatureRun() error = %v", err)
	}

	select {
	case id := <-done:
		if id != "run-1" {
			t.Errorf("handler got job %s, want run-1", id)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("handler was never invoked")
	}

	// The store eventually reflects completion.
	deadline := time.Now().Add(5 * time.Second)
	for {
		got, err := store.GetJob(ctx, "run-1")
		if err == nil && got.Status == jobs.JobStatusCompleted {
			if got.CompletedAt == nil {
				t.Error("completed job has no CompletedAt")
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job never completed, last status: %v", got)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestQueueAssignsDefaults(t *testing.T) {
	store := NewStore()
	queue := NewQueue(10, 1, store)
	defer queue.Close()

	job := &jobs.FeatureRunJob{}
	if err := queue.PublishFeatureRun(context.Background(), job); err != nil {
		t.Fatalf("PublishFeatureRun() error = %v", err)
	}

	if job.JobID == "" {
		t.Error("no job ID assigned")
	}
	if job.Status != jobs.JobStatusPending {
		t.Errorf("Status = %s, want pending", job.Status)
	}
	if job.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
	if job.MaxRetries == 0 {
		t.Error("MaxRetries not defaulted")
	}
}

func TestQueueRetriesFailedJob(t *testing.T) {
	store := NewStore()
	queue := NewQueue(10, 1, store)
	defer queue.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	attempts := 0
	handler := func(ctx context.Context, job jobs.Job) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 1 {
			return errors.New("transient failure")
		}
		return nil
	}

	if err := queue.Start(ctx, handler); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	job := &jobs.FeatureRunJob{JobID: "retry-1", MaxRetries: 2}
	if err := queue.PublishFeatureRun(ctx, job); err != nil {
		t.Fatalf("PublishFeatureRun() error = %v", err)
	}

	deadline := time.Now().Add(10 * time.Second)
	for {
		got, err := store.GetJob(ctx, "retry-1")
		if err == nil && got.Status == jobs.JobStatusCompleted {
			if got.RetryCount != 1 {
				t.Errorf("RetryCount = %d, want 1", got.RetryCount)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job never completed after retry, last: %+v", got)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestQueueRejectsAfterClose(t *testing.T) {
	queue := NewQueue(1, 1, NewStore())
	if err := queue.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	err := queue.PublishFeatureRun(context.Background(), &jobs.FeatureRunJob{JobID: "x"})
	if err == nil {
		t.Fatal("PublishFeatureRun() accepted a job after Close")
	}
}
