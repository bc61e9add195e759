package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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
	directoryInstance *services.DirectoryFunction
	identity          *gcp.Identity
	once              sync.Once
	initErr           error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("HandleDirectory", handleDirectory)
}

func main() {}

func newDirectory(ctx context.Context) (*services.DirectoryFunction, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	firestoreClient, err := gcp.NewFirestoreClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	employees := gcp.NewEmployeeCollection(firestoreClient, gcp.GetEnv("EMPLOYEES_COLLECTION", "employees"))
	attendance := gcp.NewAttendanceCollection(firestoreClient, gcp.GetEnv("ATTENDANCE_COLLECTION", "attendance"))
	return services.NewDirectory(employees, attendance), nil
}

// handleDirectory routes employee CRUD and attendance logging.
func handleDirectory(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		identity, initErr = gcp.NewIdentity(context.Background())
		if initErr == nil {
			directoryInstance, initErr = newDirectory(context.Background())
		}
	})
	if initErr != nil {
		slog.Error("Critical: Directory API initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	caller, err := callerClaims(r)
	if err != nil {
		writeError(w, err)
		return
	}

	switch {
	case strings.HasSuffix(r.URL.Path, "/attendance/checkin") && r.Method == http.MethodPost:
		handleAttendance(w, r, directoryInstance.CheckIn)
	case strings.HasSuffix(r.URL.Path, "/attendance/checkout") && r.Method == http.MethodPost:
		handleAttendance(w, r, directoryInstance.CheckOut)
	default:
		handleEmployees(w, r, caller)
	}
}

func handleEmployees(w http.ResponseWriter, r *http.Request, caller map[string]interface{}) {
	id := employeeID(r.URL.Path)

	switch {
	case r.Method == http.MethodPost && id == "":
		var e models.Employee
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
			return
		}
		newID, err := directoryInstance.CreateEmployee(r.Context(), caller, e)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]string{"id": newID})
	case r.Method == http.MethodGet && id == "":
		records, err := directoryInstance.ListEmployees(r.Context(), r.URL.Query().Get("clientName"), r.URL.Query().Get("status"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, records)
	case r.Method == http.MethodGet:
		e, err := directoryInstance.GetEmployee(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, e)
	case r.Method == http.MethodPut:
		var e models.Employee
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
			return
		}
		if err := directoryInstance.UpdateEmployee(r.Context(), caller, id, e); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]string{"status": "success"})
	case r.Method == http.MethodDelete:
		if err := directoryInstance.RemoveEmployee(r.Context(), caller, id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]string{"status": "success"})
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func handleAttendance(w http.ResponseWriter, r *http.Request, log func(context.Context, string) error) {
	var req models.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}
	if err := log(r.Context(), req.EmployeeID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "success"})
}

// employeeID extracts the trailing document ID from /employees/{id} paths.
func employeeID(urlPath string) string {
	trimmed := strings.Trim(urlPath, "/")
	parts := strings.Split(trimmed, "/")
	last := parts[len(parts)-1]
	if last == "employees" || last == "" {
		return ""
	}
	return last
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

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
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
		slog.Error("Unexpected error handling directory request", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
