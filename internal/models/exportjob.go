package models

import "time"

// Export job statuses. A job is created pending, claimed to processing by
// the export worker, and ends complete or error. Terminal states are final;
// there is no transition back to processing.
const (
	JobPending    = "pending"
	JobProcessing = "processing"
	JobComplete   = "complete"
	JobError      = "error"
)

// ExportFilters narrows the set of employees included in an export.
// All fields are optional; an empty filter set exports the full directory.
type ExportFilters struct {
	ClientName string     `firestore:"clientName,omitempty" json:"clientName,omitempty"`
	StartDate  *time.Time `firestore:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate    *time.Time `firestore:"endDate,omitempty" json:"endDate,omitempty"`
}

// JoiningDateUpperBound returns the exclusive upper bound for the
// joiningDate range query. EndDate names the last day to include, so the
// bound is the start of the following calendar day.
func (f ExportFilters) JoiningDateUpperBound() *time.Time {
	if f.EndDate == nil {
		return nil
	}
	upper := f.EndDate.AddDate(0, 0, 1)
	return &upper
}

// ExportJob is the unit of work for one spreadsheet export request.
// Created by a client (or the scheduler) with status pending; mutated only
// by the export worker afterwards.
type ExportJob struct {
	Filters       ExportFilters `firestore:"filters,omitempty" json:"filters,omitempty"`
	Status        string        `firestore:"status" json:"status"`
	DownloadURL   string        `firestore:"downloadUrl,omitempty" json:"downloadUrl,omitempty"`
	EmployeeCount int           `firestore:"employeeCount,omitempty" json:"employeeCount,omitempty"`
	Error         string        `firestore:"error,omitempty" json:"error,omitempty"`
	ExportedAt    time.Time     `firestore:"exportedAt,omitempty" json:"exportedAt,omitempty"`
	UserID        string        `firestore:"userId,omitempty" json:"userId,omitempty"`
	CreatedAt     time.Time     `firestore:"createdAt,omitempty" json:"createdAt,omitempty"`
}
