package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/staffdesk/staffdesk/internal/gcp"
	"github.com/staffdesk/staffdesk/internal/models"
	"github.com/staffdesk/staffdesk/internal/services"
)

var (
	adminInstance *services.AdminFunction
	identity      *gcp.Identity
	once          sync.Once
	initErr       error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("HandleAdminClaims", handleAdminClaims)
}

func main() {}

// handleAdminClaims routes the two admin-claim operations.
func handleAdminClaims(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		identity, initErr = gcp.NewIdentity(context.Background())
		if initErr == nil {
			adminInstance = services.NewAdmin(identity)
		}
	})
	if initErr != nil {
		slog.Error("Critical: Admin API initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	caller, err := callerClaims(r)
	if err != nil {
		writeError(w, err)
		return
	}

	switch {
	case strings.HasSuffix(r.URL.Path, "/createStateAdmin"):
		var req models.CreateStateAdminRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
			return
		}
		res, err := adminInstance.CreateStateAdmin(r.Context(), caller, req)
		writeResult(w, res, err)
	case strings.HasSuffix(r.URL.Path, "/setSuperAdmin"):
		var req models.SetSuperAdminRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
			return
		}
		res, err := adminInstance.SetSuperAdmin(r.Context(), caller, req)
		writeResult(w, res, err)
	default:
		http.Error(w, "Not Found", http.StatusNotFound)
	}
}

// callerClaims verifies the bearer ID token and returns the caller's claims.
func callerClaims(r *http.Request) (map[string]interface{}, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, services.ErrPermissionDenied
	}
	return identity.VerifyToken(r.Context(), token)
}

func writeResult(w http.ResponseWriter, res *models.AdminClaimResponse, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

// writeError maps the service error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrPermissionDenied):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, services.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrAlreadyExists):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		slog.Error("Unexpected error handling admin claim operation", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
