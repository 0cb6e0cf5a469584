// Package handlers implements the HTTP endpoints of the feature service:
// dataset staging, run management and feature queries.
package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/feature-pipeline/internal/api/middleware"
	"github.com/dvloznov/feature-pipeline/internal/bigquery"
	"github.com/dvloznov/feature-pipeline/internal/domain"
	"github.com/dvloznov/feature-pipeline/internal/jobs"
)

const dateFormat = "2006-01-02"

// RunsHandler handles feature-run endpoints.
type RunsHandler struct {
	store     jobs.JobStore
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(store jobs.JobStore, publisher jobs.Publisher, log zerolog.Logger) *RunsHandler {
	return &RunsHandler{
		store:     store,
		publisher: publisher,
		log:       log,
	}
}

// EnqueueRun handles POST /api/runs
func (h *RunsHandler) EnqueueRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomersPath      string   `json:"customers_path"`
		TransactionsPath   string   `json:"transactions_path"`
		OutputPath         string   `json:"output_path"`
		ReferenceDate      string   `json:"reference_date,omitempty"`
		HighValueThreshold *float64 `json:"high_value_threshold,omitempty"`
		LowValueThreshold  *float64 `json:"low_value_threshold,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.CustomersPath == "" || req.TransactionsPath == "" || req.OutputPath == "" {
		middleware.WriteError(w, http.StatusBadRequest, "customers_path, transactions_path and output_path are required")
		return
	}

	job := &jobs.FeatureRunJob{
		CustomersPath:      req.CustomersPath,
		TransactionsPath:   req.TransactionsPath,
		OutputPath:         req.OutputPath,
		HighValueThreshold: req.HighValueThreshold,
		LowValueThreshold:  req.LowValueThreshold,
	}

	if req.ReferenceDate != "" {
		ref, err := time.Parse(dateFormat, req.ReferenceDate)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid reference_date format, want YYYY-MM-DD")
			return
		}
		job.ReferenceDate = &ref
	}

	ctx := r.Context()

	if err := h.publisher.PublishFeatureRun(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue feature run")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue feature run")
		return
	}

	h.log.Info().
		Str("job_id", job.JobID).
		Str("transactions_path", job.TransactionsPath).
		Msg("Feature run enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// GetRun handles GET /api/runs/{id}
func (h *RunsHandler) GetRun(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get run")
		middleware.WriteError(w, http.StatusNotFound, "Run not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListRuns handles GET /api/runs
func (h *RunsHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	filter := jobs.JobFilter{
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	runs, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list runs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// DatasetsHandler handles dataset staging endpoints.
type DatasetsHandler struct {
	bucket string
	log    zerolog.Logger
}

// NewDatasetsHandler creates a new datasets handler.
func NewDatasetsHandler(bucket string, log zerolog.Logger) *DatasetsHandler {
	return &DatasetsHandler{
		bucket: bucket,
		log:    log,
	}
}

// UploadDataset handles POST /api/datasets/upload/{name}
// The request body is streamed into the staging bucket under a dated prefix.
func (h *DatasetsHandler) UploadDataset(w http.ResponseWriter, r *http.Request, name string) {
	if h.bucket == "" {
		middleware.WriteError(w, http.StatusServiceUnavailable, "No staging bucket configured")
		return
	}

	ctx := r.Context()

	objectName := fmt.Sprintf("datasets/%s/%s-%s", time.Now().Format("2006/01/02"), uuid.New().String(), name)
	gcsURI := fmt.Sprintf("gs://%s/%s", h.bucket, objectName)

	client, err := storage.NewClient(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create storage client")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upload dataset")
		return
	}
	defer client.Close()

	wc := client.Bucket(h.bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = "text/csv"

	written, err := io.Copy(wc, r.Body)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to write to GCS")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upload dataset")
		return
	}

	if err := wc.Close(); err != nil {
		h.log.Error().Err(err).Msg("Failed to close GCS writer")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upload dataset")
		return
	}

	h.log.Info().
		Str("gcs_uri", gcsURI).
		Int64("bytes", written).
		Msg("Dataset uploaded")

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"gcs_uri": gcsURI,
		"status":  "uploaded",
	})
}

// FeaturesHandler handles feature-table query endpoints backed by the warehouse.
type FeaturesHandler struct {
	repo bigquery.FeatureRepository
	log  zerolog.Logger
}

// NewFeaturesHandler creates a new features handler.
func NewFeaturesHandler(repo bigquery.FeatureRepository, log zerolog.Logger) *FeaturesHandler {
	return &FeaturesHandler{
		repo: repo,
		log:  log,
	}
}

// ListFeaturesBySegment handles GET /api/features?segment=...&reference_date=YYYY-MM-DD
func (h *FeaturesHandler) ListFeaturesBySegment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	segment := query.Get("segment")
	if segment == "" {
		middleware.WriteError(w, http.StatusBadRequest, "segment is required")
		return
	}
	if !validSegment(segment) {
		middleware.WriteError(w, http.StatusBadRequest, "Unknown segment")
		return
	}

	referenceDate, err := parseReferenceDate(query.Get("reference_date"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.repo.QueryFeaturesBySegment(ctx, segment, referenceDate)
	if err != nil {
		h.log.Error().Err(err).Str("segment", segment).Msg("Failed to query features")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query features")
		return
	}

	if rows == nil {
		rows = []*bigquery.FeatureRow{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"features": rows,
		"count":    len(rows),
	})
}

// SegmentCounts handles GET /api/segments?reference_date=YYYY-MM-DD
func (h *FeaturesHandler) SegmentCounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	referenceDate, err := parseReferenceDate(r.URL.Query().Get("reference_date"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	counts, err := h.repo.QuerySegmentCounts(ctx, referenceDate)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query segment counts")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query segment counts")
		return
	}

	// Every segment label appears in the response, zero when absent.
	segments := make(map[string]int64, len(domain.Segments))
	for _, s := range domain.Segments {
		segments[string(s)] = counts[string(s)]
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reference_date": referenceDate.Format(dateFormat),
		"segments":       segments,
	})
}

func parseReferenceDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("reference_date is required")
	}
	ref, err := time.Parse(dateFormat, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reference_date format, want YYYY-MM-DD")
	}
	return ref, nil
}

func validSegment(s string) bool {
	for _, seg := range domain.Segments {
		if string(seg) == s {
			return true
		}
	}
	return false
}
