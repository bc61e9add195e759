package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/staffdesk/staffdesk/internal/gcp"
	"github.com/staffdesk/staffdesk/internal/services"
)

var (
	exporterInstance *services.ExporterFunction
	once             sync.Once
	initErr          error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Register the CloudEvent function. The framework routes the Firestore
	// document-created event here.
	functions.CloudEvent("OnExportJobCreated", onExportJobCreated)
}

// main is required by the Go Functions Framework.
func main() {}

// firestoreEvent is the slice of the Firestore event payload we need: the
// full resource name of the created document.
type firestoreEvent struct {
	Value struct {
		Name string `json:"name"`
	} `json:"value"`
}

func newExporter(ctx context.Context) (*services.ExporterFunction, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	exportBucket := gcp.GetEnv("EXPORT_BUCKET", "")
	if exportBucket == "" {
		return nil, fmt.Errorf("EXPORT_BUCKET environment variable must be set")
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	jobs := gcp.NewExportJobStore(firestoreClient, gcp.GetEnv("EXPORT_JOBS_COLLECTION", "exportJobs"))
	employees := gcp.NewEmployeeCollection(firestoreClient, gcp.GetEnv("EMPLOYEES_COLLECTION", "employees"))
	artifacts := gcp.NewArtifactBucket(storageClient, exportBucket)
	return services.NewExporter(jobs, employees, artifacts), nil
}

// onExportJobCreated is the Cloud Function entry point for job creation events.
func onExportJobCreated(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		exporterInstance, initErr = newExporter(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var event firestoreEvent
	if err := json.Unmarshal(e.Data(), &event); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	jobID := path.Base(event.Value.Name)
	if jobID == "" || jobID == "." {
		slog.Error("Event carried no document name", "data", string(e.Data()))
		return fmt.Errorf("event carried no document name")
	}

	return exporterInstance.Process(ctx, jobID)
}
