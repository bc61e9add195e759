package gcp

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/staffdesk/staffdesk/internal/models"
	"github.com/staffdesk/staffdesk/internal/services"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// EmployeeCollection is the Firestore-backed employee store. It serves both
// the directory API and the export worker's filtered queries.
type EmployeeCollection struct {
	client     *firestore.Client
	collection string
}

// NewEmployeeCollection wraps a Firestore client for one employee collection.
func NewEmployeeCollection(client *firestore.Client, collection string) *EmployeeCollection {
	return &EmployeeCollection{client: client, collection: collection}
}

// Export returns the raw field maps of employees matching the filters.
// Date bounds follow the job contract: startDate inclusive, endDate made
// inclusive by querying strictly below the next calendar day.
func (s *EmployeeCollection) Export(ctx context.Context, filters models.ExportFilters) ([]map[string]interface{}, error) {
	q := s.client.Collection(s.collection).Query
	if filters.ClientName != "" {
		q = q.Where("clientName", "==", filters.ClientName)
	}
	if filters.StartDate != nil {
		q = q.Where("joiningDate", ">=", *filters.StartDate)
	}
	if upper := filters.JoiningDateUpperBound(); upper != nil {
		q = q.Where("joiningDate", "<", *upper)
	}

	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	records := make([]map[string]interface{}, 0, len(docs))
	for _, doc := range docs {
		records = append(records, doc.Data())
	}
	return records, nil
}

// Create adds a new employee document and returns its ID.
func (s *EmployeeCollection) Create(ctx context.Context, e models.Employee) (string, error) {
	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now
	ref, _, err := s.client.Collection(s.collection).Add(ctx, e)
	if err != nil {
		return "", fmt.Errorf("failed to add employee document: %w", err)
	}
	return ref.ID, nil
}

// Get reads one employee document by ID.
func (s *EmployeeCollection) Get(ctx context.Context, id string) (*models.Employee, error) {
	snap, err := s.client.Collection(s.collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("employee %s: %w", id, services.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read employee %s: %w", id, err)
	}
	var e models.Employee
	if err := snap.DataTo(&e); err != nil {
		return nil, fmt.Errorf("failed to decode employee %s: %w", id, err)
	}
	return &e, nil
}

// List returns employees, optionally narrowed by clientName and status.
func (s *EmployeeCollection) List(ctx context.Context, clientName, statusFilter string) ([]models.EmployeeRecord, error) {
	q := s.client.Collection(s.collection).Query
	if clientName != "" {
		q = q.Where("clientName", "==", clientName)
	}
	if statusFilter != "" {
		q = q.Where("status", "==", statusFilter)
	}

	var records []models.EmployeeRecord
	it := q.Documents(ctx)
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list employees: %w", err)
		}
		var e models.Employee
		if err := snap.DataTo(&e); err != nil {
			return nil, fmt.Errorf("failed to decode employee %s: %w", snap.Ref.ID, err)
		}
		records = append(records, models.EmployeeRecord{ID: snap.Ref.ID, Employee: e})
	}
	return records, nil
}

// Update replaces the profile fields of an existing employee. The original
// creation timestamp is preserved.
func (s *EmployeeCollection) Update(ctx context.Context, id string, e models.Employee) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = time.Now()
	if _, err := s.client.Collection(s.collection).Doc(id).Set(ctx, e); err != nil {
		return fmt.Errorf("failed to update employee %s: %w", id, err)
	}
	return nil
}

// MarkExited sets the Exited status and exit date; the record is retained.
func (s *EmployeeCollection) MarkExited(ctx context.Context, id string, at time.Time) error {
	_, err := s.client.Collection(s.collection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: models.StatusExited},
		{Path: "exitDate", Value: at},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("employee %s: %w", id, services.ErrNotFound)
		}
		return fmt.Errorf("failed to mark employee %s exited: %w", id, err)
	}
	return nil
}

// AttendanceCollection is the Firestore-backed attendance log. The document
// ID "<employeeId>_<date>" makes a day's entry unique by construction.
type AttendanceCollection struct {
	client     *firestore.Client
	collection string
}

// NewAttendanceCollection wraps a Firestore client for one attendance collection.
func NewAttendanceCollection(client *firestore.Client, collection string) *AttendanceCollection {
	return &AttendanceCollection{client: client, collection: collection}
}

func attendanceDocID(employeeID string, at time.Time) string {
	return fmt.Sprintf("%s_%s", employeeID, at.Format("2006-01-02"))
}

// CheckIn creates the day's entry. A second check-in the same day fails
// with ErrAlreadyExists.
func (s *AttendanceCollection) CheckIn(ctx context.Context, employeeID string, at time.Time) error {
	entry := models.AttendanceEntry{
		EmployeeID: employeeID,
		Date:       at.Format("2006-01-02"),
		CheckIn:    at,
		CreatedAt:  time.Now(),
	}
	_, err := s.client.Collection(s.collection).Doc(attendanceDocID(employeeID, at)).Create(ctx, entry)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("employee %s already checked in: %w", employeeID, services.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to record check-in for %s: %w", employeeID, err)
	}
	return nil
}

// CheckOut closes the day's entry. A check-out without a prior check-in
// fails with ErrNotFound.
func (s *AttendanceCollection) CheckOut(ctx context.Context, employeeID string, at time.Time) error {
	_, err := s.client.Collection(s.collection).Doc(attendanceDocID(employeeID, at)).Update(ctx, []firestore.Update{
		{Path: "checkOut", Value: at},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("no check-in found for employee %s today: %w", employeeID, services.ErrNotFound)
		}
		return fmt.Errorf("failed to record check-out for %s: %w", employeeID, err)
	}
	return nil
}
