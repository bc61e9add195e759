package gcp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/staffdesk/staffdesk/internal/models"
)

// NewFirestoreClient creates and returns a new Firestore client for the given project ID.
// It centralizes client creation for all services.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// ExportJobStore is the Firestore-backed job store for the export worker
// and the scheduler.
type ExportJobStore struct {
	client     *firestore.Client
	collection string
}

// NewExportJobStore wraps a Firestore client for one job collection.
func NewExportJobStore(client *firestore.Client, collection string) *ExportJobStore {
	return &ExportJobStore{client: client, collection: collection}
}

// Claim moves a pending job to processing inside a transaction and returns
// its record. A job that is no longer pending returns (nil, nil): the
// trigger platform delivers at least once, and a second delivery must not
// re-run the pipeline or overwrite terminal fields.
func (s *ExportJobStore) Claim(ctx context.Context, jobID string) (*models.ExportJob, error) {
	ref := s.client.Collection(s.collection).Doc(jobID)

	var job models.ExportJob
	claimed := false
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return fmt.Errorf("failed to read job: %w", err)
		}
		if err := snap.DataTo(&job); err != nil {
			return fmt.Errorf("failed to decode job: %w", err)
		}
		// A job created without an explicit status counts as pending.
		if job.Status != "" && job.Status != models.JobPending {
			claimed = false
			return nil
		}
		claimed = true
		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: models.JobProcessing},
		})
	})
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, nil
	}
	job.Status = models.JobProcessing
	return &job, nil
}

// Complete records the terminal success state. The write is conditional on
// the job still being in processing; a lost race leaves the earlier
// terminal write untouched.
func (s *ExportJobStore) Complete(ctx context.Context, jobID, downloadURL string, employeeCount int) error {
	return s.finish(ctx, jobID, []firestore.Update{
		{Path: "status", Value: models.JobComplete},
		{Path: "downloadUrl", Value: downloadURL},
		{Path: "employeeCount", Value: employeeCount},
		{Path: "exportedAt", Value: firestore.ServerTimestamp},
	})
}

// Fail records the terminal error state under the same condition.
func (s *ExportJobStore) Fail(ctx context.Context, jobID, message string) error {
	return s.finish(ctx, jobID, []firestore.Update{
		{Path: "status", Value: models.JobError},
		{Path: "error", Value: message},
	})
}

func (s *ExportJobStore) finish(ctx context.Context, jobID string, updates []firestore.Update) error {
	ref := s.client.Collection(s.collection).Doc(jobID)
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return fmt.Errorf("failed to read job: %w", err)
		}
		status, err := snap.DataAt("status")
		if err != nil {
			return fmt.Errorf("failed to read job status: %w", err)
		}
		if status != models.JobProcessing {
			slog.Warn("Job is not processing. Leaving existing terminal state.", "jobId", jobID, "status", status)
			return nil
		}
		return tx.Update(ref, updates)
	})
}

// CreateJob creates a new pending job record and returns its document ID.
func (s *ExportJobStore) CreateJob(ctx context.Context, job models.ExportJob) (string, error) {
	if job.Status == "" {
		job.Status = models.JobPending
	}
	job.CreatedAt = time.Now()
	ref, _, err := s.client.Collection(s.collection).Add(ctx, job)
	if err != nil {
		return "", fmt.Errorf("failed to create job record: %w", err)
	}
	return ref.ID, nil
}
