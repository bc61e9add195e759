package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/staffdesk/staffdesk/internal/models"
)

// EmployeeStore owns the employee collection. Records are never hard
// deleted; removal marks the employee Exited.
type EmployeeStore interface {
	Create(ctx context.Context, e models.Employee) (string, error)
	Get(ctx context.Context, id string) (*models.Employee, error)
	List(ctx context.Context, clientName, status string) ([]models.EmployeeRecord, error)
	Update(ctx context.Context, id string, e models.Employee) error
	MarkExited(ctx context.Context, id string, at time.Time) error
}

// AttendanceLog records one check-in/check-out pair per employee per day.
type AttendanceLog interface {
	// CheckIn creates the day's entry; wraps ErrAlreadyExists when the
	// employee already checked in that day.
	CheckIn(ctx context.Context, employeeID string, at time.Time) error
	// CheckOut closes the day's entry; wraps ErrNotFound when there is no
	// entry to close.
	CheckOut(ctx context.Context, employeeID string, at time.Time) error
}

// DirectoryFunction holds the dependencies for employee CRUD and attendance.
type DirectoryFunction struct {
	employees  EmployeeStore
	attendance AttendanceLog
	now        func() time.Time
}

// NewDirectory creates a DirectoryFunction from explicit store handles.
func NewDirectory(employees EmployeeStore, attendance AttendanceLog) *DirectoryFunction {
	return &DirectoryFunction{
		employees:  employees,
		attendance: attendance,
		now:        time.Now,
	}
}

// requireAdmin gates mutating routes to state and super admins.
func requireAdmin(claims map[string]interface{}) error {
	if IsSuperAdmin(claims) {
		return nil
	}
	if role, ok := claims["role"].(string); ok && (role == RoleStateAdmin || role == RoleSuperAdmin) {
		return nil
	}
	return fmt.Errorf("caller lacks an admin role: %w", ErrPermissionDenied)
}

// CreateEmployee enrolls a new employee record.
func (f *DirectoryFunction) CreateEmployee(ctx context.Context, caller map[string]interface{}, e models.Employee) (string, error) {
	if err := requireAdmin(caller); err != nil {
		return "", err
	}
	if e.Name == "" || e.ClientName == "" || e.JoiningDate.IsZero() {
		return "", fmt.Errorf("name, clientName and joiningDate are required: %w", ErrInvalidArgument)
	}
	if e.Status == "" {
		e.Status = models.StatusActive
	}

	id, err := f.employees.Create(ctx, e)
	if err != nil {
		return "", fmt.Errorf("failed to create employee: %w", err)
	}
	slog.Info("Enrolled employee.", "employeeId", id, "clientName", e.ClientName)
	return id, nil
}

// GetEmployee returns one employee record by ID.
func (f *DirectoryFunction) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	if id == "" {
		return nil, fmt.Errorf("employee id is required: %w", ErrInvalidArgument)
	}
	return f.employees.Get(ctx, id)
}

// ListEmployees returns records filtered by optional clientName and status.
func (f *DirectoryFunction) ListEmployees(ctx context.Context, clientName, status string) ([]models.EmployeeRecord, error) {
	return f.employees.List(ctx, clientName, status)
}

// UpdateEmployee replaces the mutable profile fields of a record.
func (f *DirectoryFunction) UpdateEmployee(ctx context.Context, caller map[string]interface{}, id string, e models.Employee) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("employee id is required: %w", ErrInvalidArgument)
	}
	if err := f.employees.Update(ctx, id, e); err != nil {
		return err
	}
	slog.Info("Updated employee.", "employeeId", id)
	return nil
}

// RemoveEmployee marks an employee Exited with the current time as exit
// date. The record itself is retained.
func (f *DirectoryFunction) RemoveEmployee(ctx context.Context, caller map[string]interface{}, id string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("employee id is required: %w", ErrInvalidArgument)
	}
	if err := f.employees.MarkExited(ctx, id, f.now()); err != nil {
		return err
	}
	slog.Info("Marked employee exited.", "employeeId", id)
	return nil
}

// CheckIn logs the start of an employee's day. Attendance is self-service:
// any authenticated caller may log it, unlike the role-gated CRUD routes.
func (f *DirectoryFunction) CheckIn(ctx context.Context, employeeID string) error {
	if employeeID == "" {
		return fmt.Errorf("employeeId is required: %w", ErrInvalidArgument)
	}
	if _, err := f.employees.Get(ctx, employeeID); err != nil {
		return err
	}
	return f.attendance.CheckIn(ctx, employeeID, f.now())
}

// CheckOut logs the end of an employee's day.
func (f *DirectoryFunction) CheckOut(ctx context.Context, employeeID string) error {
	if employeeID == "" {
		return fmt.Errorf("employeeId is required: %w", ErrInvalidArgument)
	}
	return f.attendance.CheckOut(ctx, employeeID, f.now())
}
