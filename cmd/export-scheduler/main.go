package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/staffdesk/staffdesk/internal/gcp"
	"github.com/staffdesk/staffdesk/internal/models"
	"github.com/staffdesk/staffdesk/internal/services"
)

var (
	schedulerInstance *services.SchedulerFunction
	once              sync.Once
	initErr           error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("HandleScheduledExport", handleScheduledExport)
}

func main() {}

func newScheduler(ctx context.Context) (*services.SchedulerFunction, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	firestoreClient, err := gcp.NewFirestoreClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	jobs := gcp.NewExportJobStore(firestoreClient, gcp.GetEnv("EXPORT_JOBS_COLLECTION", "exportJobs"))
	return services.NewScheduler(jobs), nil
}

// handleScheduledExport is the Cloud Scheduler target. Authentication is
// the platform's concern (OIDC on the scheduler job); the handler just
// creates the job record.
func handleScheduledExport(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		schedulerInstance, initErr = newScheduler(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical: Scheduler initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	jobID, err := schedulerInstance.Process(r.Context())
	if err != nil {
		slog.Error("Failed to create scheduled export job", "error", err)
		http.Error(w, "Internal Server Error: failed to create job", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	res := models.ScheduledExportResponse{Status: "success", JobID: jobID}
	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.Error("Failed to write response", "error", err, "jobId", jobID)
	}
}
