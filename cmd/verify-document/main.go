package main

import (
	"context"
	"encoding/json"
	"errors"
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
	verifierInstance *services.VerifierFunction
	once             sync.Once
	initErr          error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("HandleVerifyDocument", handleVerifyDocument)
}

func main() {}

func newVerifier(ctx context.Context) (*services.VerifierFunction, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	vertexClient, err := gcp.NewVertexClient(ctx, projectID, gcp.GetEnv("VERTEX_AI_REGION", "us-central1"))
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex client: %w", err)
	}
	return services.NewVerifier(vertexClient.DocumentVerifierModel, gcp.VerifierUserPrompt), nil
}

// handleVerifyDocument is the HTTP handler for document verification.
func handleVerifyDocument(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		verifierInstance, initErr = newVerifier(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical: Verifier initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.VerifyDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Could not decode request body", "error", err)
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}

	res, err := verifierInstance.Process(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidArgument):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrClassifierFailure):
			http.Error(w, err.Error(), http.StatusBadGateway)
		default:
			http.Error(w, "Internal Server Error: verification failed", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.Error("Failed to write response", "error", err, "documentType", req.DocumentType)
	}
}
