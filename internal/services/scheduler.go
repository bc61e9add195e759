package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/staffdesk/staffdesk/internal/models"
)

// schedulerUserID owns job records created by the recurring export.
const schedulerUserID = "scheduler"

// JobCreator creates new export job records.
type JobCreator interface {
	CreateJob(ctx context.Context, job models.ExportJob) (string, error)
}

// SchedulerFunction creates the recurring full-directory export job. The
// export worker picks the record up through the same creation trigger as
// client-requested jobs.
type SchedulerFunction struct {
	jobs JobCreator
}

// NewScheduler creates a SchedulerFunction from an explicit store handle.
func NewScheduler(jobs JobCreator) *SchedulerFunction {
	return &SchedulerFunction{jobs: jobs}
}

// Process creates one pending export job with no filters.
func (f *SchedulerFunction) Process(ctx context.Context) (string, error) {
	job := models.ExportJob{
		Status: models.JobPending,
		UserID: schedulerUserID,
	}
	jobID, err := f.jobs.CreateJob(ctx, job)
	if err != nil {
		return "", fmt.Errorf("failed to create scheduled export job: %w", err)
	}
	slog.Info("Created scheduled export job.", "jobId", jobID)
	return jobID, nil
}
