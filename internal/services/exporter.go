package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/staffdesk/staffdesk/internal/models"
)

// xlsxContentType is the MIME type recorded on uploaded export artifacts.
const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// JobStore owns the lifecycle writes for export job records.
type JobStore interface {
	// Claim transitions a pending job to processing and returns its record.
	// It returns (nil, nil) when the job is already claimed or terminal, so
	// a redelivered creation event becomes a no-op instead of a re-run.
	Claim(ctx context.Context, jobID string) (*models.ExportJob, error)
	// Complete records the terminal success state. The write only applies
	// while the job is still processing.
	Complete(ctx context.Context, jobID, downloadURL string, employeeCount int) error
	// Fail records the terminal error state under the same condition.
	Fail(ctx context.Context, jobID, message string) error
}

// EmployeeSource resolves the employee records matching a job's filters.
// Records come back as raw field maps so the exporter preserves whatever
// fields the documents carry.
type EmployeeSource interface {
	Export(ctx context.Context, filters models.ExportFilters) ([]map[string]interface{}, error)
}

// ArtifactStore uploads generated artifacts and issues download URLs.
type ArtifactStore interface {
	Upload(ctx context.Context, objectName, localPath, contentType string, metadata map[string]string) error
	SignedURL(objectName string) (string, error)
}

// ExporterFunction holds the dependencies for the export job pipeline.
type ExporterFunction struct {
	jobs      JobStore
	employees EmployeeSource
	artifacts ArtifactStore
}

// NewExporter creates an ExporterFunction from explicit store handles.
func NewExporter(jobs JobStore, employees EmployeeSource, artifacts ArtifactStore) *ExporterFunction {
	return &ExporterFunction{
		jobs:      jobs,
		employees: employees,
		artifacts: artifacts,
	}
}

// Process runs the full pipeline for one job creation event. Export
// failures are recorded on the job record and not returned; the only error
// that propagates is a failure to write job state itself, since at that
// point there is nothing left to record.
func (f *ExporterFunction) Process(ctx context.Context, jobID string) error {
	logCtx := slog.With("jobId", jobID)

	job, err := f.jobs.Claim(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to claim job %s: %w", jobID, err)
	}
	if job == nil {
		logCtx.Info("Job already claimed or terminal. Skipping duplicate delivery.")
		return nil
	}
	logCtx.Info("Claimed export job.", "userId", job.UserID)

	if exportErr := f.export(ctx, logCtx, jobID, job); exportErr != nil {
		logCtx.Error("Export failed. Recording error on job record.", "error", exportErr)
		message := exportErr.Error()
		if message == "" {
			message = "export failed"
		}
		if err := f.jobs.Fail(ctx, jobID, message); err != nil {
			logCtx.Error("CRITICAL: Failed to record job failure.", "updateError", err)
			return fmt.Errorf("failed to record failure for job %s: %w", jobID, err)
		}
	}
	return nil
}

// export performs steps 2-8 of the pipeline; any error here becomes the
// job's terminal error message.
func (f *ExporterFunction) export(ctx context.Context, logCtx *slog.Logger, jobID string, job *models.ExportJob) error {
	records, err := f.employees.Export(ctx, job.Filters)
	if err != nil {
		return fmt.Errorf("failed to query employees: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no employees matched the export filters")
	}
	logCtx.Info("Resolved employee records.", "count", len(records))

	rows := make([]map[string]interface{}, 0, len(records))
	for _, record := range records {
		rows = append(rows, FlattenRecord(record))
	}

	tempDir, err := os.MkdirTemp("", "employee-export-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	localPath := filepath.Join(tempDir, fmt.Sprintf("employees_%d.xlsx", time.Now().UnixNano()))
	if err := WriteWorkbook(localPath, rows); err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}

	objectName := fmt.Sprintf("exports/employees_%s.xlsx", jobID)
	metadata := map[string]string{
		"userId": job.UserID,
		"jobId":  jobID,
	}
	if err := f.artifacts.Upload(ctx, objectName, localPath, xlsxContentType, metadata); err != nil {
		return fmt.Errorf("failed to upload artifact: %w", err)
	}

	downloadURL, err := f.artifacts.SignedURL(objectName)
	if err != nil {
		return fmt.Errorf("failed to sign download url: %w", err)
	}

	if err := f.jobs.Complete(ctx, jobID, downloadURL, len(rows)); err != nil {
		return fmt.Errorf("failed to mark job complete: %w", err)
	}
	logCtx.Info("Export complete.", "employeeCount", len(rows), "gcsObject", objectName)
	return nil
}
