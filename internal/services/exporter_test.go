package services

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/staffdesk/staffdesk/internal/models"
)

type fakeJobStore struct {
	job            models.ExportJob
	claims         int
	completed      bool
	completedURL   string
	completedCount int
	failed         bool
	failMessage    string
}

func (s *fakeJobStore) Claim(ctx context.Context, jobID string) (*models.ExportJob, error) {
	s.claims++
	if s.job.Status != "" && s.job.Status != models.JobPending {
		return nil, nil
	}
	s.job.Status = models.JobProcessing
	job := s.job
	return &job, nil
}

func (s *fakeJobStore) Complete(ctx context.Context, jobID, downloadURL string, employeeCount int) error {
	s.job.Status = models.JobComplete
	s.completed = true
	s.completedURL = downloadURL
	s.completedCount = employeeCount
	return nil
}

func (s *fakeJobStore) Fail(ctx context.Context, jobID, message string) error {
	s.job.Status = models.JobError
	s.failed = true
	s.failMessage = message
	return nil
}

// fakeEmployeeSource applies the documented store contract: clientName
// equality, startDate inclusive, endDate inclusive via the exclusive bound
// one day later.
type fakeEmployeeSource struct {
	records []map[string]interface{}
}

func (s *fakeEmployeeSource) Export(ctx context.Context, f models.ExportFilters) ([]map[string]interface{}, error) {
	var out []map[string]interface{}
	for _, rec := range s.records {
		if f.ClientName != "" && rec["clientName"] != f.ClientName {
			continue
		}
		joined, _ := rec["joiningDate"].(time.Time)
		if f.StartDate != nil && joined.Before(*f.StartDate) {
			continue
		}
		if upper := f.JoiningDateUpperBound(); upper != nil && !joined.Before(*upper) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

type upload struct {
	objectName  string
	contentType string
	metadata    map[string]string
	localPath   string
	fileExisted bool
}

type fakeArtifacts struct {
	uploads []upload
}

func (a *fakeArtifacts) Upload(ctx context.Context, objectName, localPath, contentType string, metadata map[string]string) error {
	_, statErr := os.Stat(localPath)
	a.uploads = append(a.uploads, upload{
		objectName:  objectName,
		contentType: contentType,
		metadata:    metadata,
		localPath:   localPath,
		fileExisted: statErr == nil,
	})
	return nil
}

func (a *fakeArtifacts) SignedURL(objectName string) (string, error) {
	return "https://storage.example.com/" + objectName + "?sig=abc", nil
}

func employeeRecord(name, client string, joined time.Time) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"clientName":  client,
		"joiningDate": joined,
		"status":      models.StatusActive,
		"photoUrl":    "https://cdn.example.com/" + name + ".jpg",
		"createdAt":   time.Now(),
	}
}

func TestExportNoMatchesFailsJob(t *testing.T) {
	jobs := &fakeJobStore{job: models.ExportJob{Status: models.JobPending, UserID: "u1"}}
	artifacts := &fakeArtifacts{}
	exporter := NewExporter(jobs, &fakeEmployeeSource{}, artifacts)

	if err := exporter.Process(context.Background(), "job-1"); err != nil {
		t.Fatalf("process: %v", err)
	}
	if !jobs.failed {
		t.Fatalf("expected job to be marked failed")
	}
	if jobs.failMessage == "" {
		t.Fatalf("expected a non-empty error message")
	}
	if jobs.completed {
		t.Fatalf("job must not be marked complete")
	}
	if len(artifacts.uploads) != 0 {
		t.Fatalf("no artifact may be created for an empty result set, got %d uploads", len(artifacts.uploads))
	}
}

func TestExportClientFilterScenario(t *testing.T) {
	joined := time.Date(2023, 4, 10, 0, 0, 0, 0, time.UTC)
	source := &fakeEmployeeSource{records: []map[string]interface{}{
		employeeRecord("Asha", "TCS", joined),
		employeeRecord("Ravi", "TCS", joined),
		employeeRecord("Meena", "Wipro", joined),
	}}
	jobs := &fakeJobStore{job: models.ExportJob{
		Status:  models.JobPending,
		UserID:  "admin-1",
		Filters: models.ExportFilters{ClientName: "TCS"},
	}}
	artifacts := &fakeArtifacts{}
	exporter := NewExporter(jobs, source, artifacts)

	if err := exporter.Process(context.Background(), "job-2"); err != nil {
		t.Fatalf("process: %v", err)
	}
	if !jobs.completed {
		t.Fatalf("expected job to complete, failed=%v message=%q", jobs.failed, jobs.failMessage)
	}
	if jobs.completedCount != 2 {
		t.Fatalf("expected employeeCount 2, got %d", jobs.completedCount)
	}
	if jobs.completedURL == "" {
		t.Fatalf("expected a signed download URL")
	}

	if len(artifacts.uploads) != 1 {
		t.Fatalf("expected exactly one upload, got %d", len(artifacts.uploads))
	}
	up := artifacts.uploads[0]
	if !up.fileExisted {
		t.Fatalf("artifact file did not exist at upload time")
	}
	if up.contentType != xlsxContentType {
		t.Fatalf("unexpected content type %q", up.contentType)
	}
	if up.metadata["jobId"] != "job-2" || up.metadata["userId"] != "admin-1" {
		t.Fatalf("unexpected metadata %v", up.metadata)
	}
	if !strings.HasPrefix(up.objectName, "exports/") {
		t.Fatalf("artifact must live under the exports/ prefix, got %q", up.objectName)
	}

	// The temp file is cleaned up on every exit path.
	if _, err := os.Stat(up.localPath); !os.IsNotExist(err) {
		t.Fatalf("temp artifact %s was not cleaned up", up.localPath)
	}
}

func TestExportEndDateIsInclusive(t *testing.T) {
	endDate := time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)
	source := &fakeEmployeeSource{records: []map[string]interface{}{
		employeeRecord("OnTheBoundary", "TCS", endDate),
		employeeRecord("DayAfter", "TCS", endDate.AddDate(0, 0, 1)),
	}}
	jobs := &fakeJobStore{job: models.ExportJob{
		Status:  models.JobPending,
		Filters: models.ExportFilters{EndDate: &endDate},
	}}
	exporter := NewExporter(jobs, source, &fakeArtifacts{})

	if err := exporter.Process(context.Background(), "job-3"); err != nil {
		t.Fatalf("process: %v", err)
	}
	if !jobs.completed {
		t.Fatalf("expected job to complete, message=%q", jobs.failMessage)
	}
	if jobs.completedCount != 1 {
		t.Fatalf("expected only the boundary employee, got %d", jobs.completedCount)
	}
}

func TestJoiningDateUpperBound(t *testing.T) {
	end := time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)
	f := models.ExportFilters{EndDate: &end}
	upper := f.JoiningDateUpperBound()
	if upper == nil {
		t.Fatalf("expected an upper bound")
	}
	if want := end.AddDate(0, 0, 1); !upper.Equal(want) {
		t.Fatalf("upper bound = %v, want %v", upper, want)
	}
	if (models.ExportFilters{}).JoiningDateUpperBound() != nil {
		t.Fatalf("no end date must mean no upper bound")
	}
}

func TestDuplicateDeliveryIsSkipped(t *testing.T) {
	joined := time.Date(2023, 4, 10, 0, 0, 0, 0, time.UTC)
	source := &fakeEmployeeSource{records: []map[string]interface{}{
		employeeRecord("Asha", "TCS", joined),
	}}
	jobs := &fakeJobStore{job: models.ExportJob{Status: models.JobPending}}
	artifacts := &fakeArtifacts{}
	exporter := NewExporter(jobs, source, artifacts)

	if err := exporter.Process(context.Background(), "job-4"); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := exporter.Process(context.Background(), "job-4"); err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if jobs.claims != 2 {
		t.Fatalf("expected two claim attempts, got %d", jobs.claims)
	}
	if len(artifacts.uploads) != 1 {
		t.Fatalf("duplicate delivery must not re-run the export, got %d uploads", len(artifacts.uploads))
	}
	if jobs.job.Status != models.JobComplete {
		t.Fatalf("terminal state was overwritten: %q", jobs.job.Status)
	}
}

func TestSchedulerCreatesPendingJob(t *testing.T) {
	jobs := &recordingJobCreator{}
	scheduler := NewScheduler(jobs)

	jobID, err := scheduler.Process(context.Background())
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if jobID == "" {
		t.Fatalf("expected a job ID")
	}
	if jobs.created.Status != models.JobPending {
		t.Fatalf("expected a pending job, got %q", jobs.created.Status)
	}
	if jobs.created.UserID != "scheduler" {
		t.Fatalf("expected the scheduler owner, got %q", jobs.created.UserID)
	}
	if jobs.created.Filters.ClientName != "" || jobs.created.Filters.StartDate != nil {
		t.Fatalf("scheduled export must not carry filters")
	}
}

type recordingJobCreator struct {
	created models.ExportJob
}

func (c *recordingJobCreator) CreateJob(ctx context.Context, job models.ExportJob) (string, error) {
	c.created = job
	return "scheduled-job-1", nil
}
