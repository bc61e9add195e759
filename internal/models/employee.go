package models

import "time"

// Employee status values. "delete" in the directory API marks an employee
// Exited rather than removing the document.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
	StatusOnLeave  = "OnLeave"
	StatusExited   = "Exited"
)

// Employee is the main record for one worker in Firestore.
// The document ID is assigned by the store and never changes.
//
// Whether Status == Exited must always co-occur with a set ExitDate is an
// open product question; nothing here enforces the pairing.
type Employee struct {
	Name              string     `firestore:"name,omitempty" json:"name"`
	Phone             string     `firestore:"phone,omitempty" json:"phone"`
	Email             string     `firestore:"email,omitempty" json:"email,omitempty"`
	AadhaarNumber     string     `firestore:"aadhaarNumber,omitempty" json:"aadhaarNumber,omitempty"`
	PANNumber         string     `firestore:"panNumber,omitempty" json:"panNumber,omitempty"`
	BankAccountNumber string     `firestore:"bankAccountNumber,omitempty" json:"bankAccountNumber,omitempty"`
	IFSCCode          string     `firestore:"ifscCode,omitempty" json:"ifscCode,omitempty"`
	ClientName        string     `firestore:"clientName,omitempty" json:"clientName"`
	Designation       string     `firestore:"designation,omitempty" json:"designation,omitempty"`
	JoiningDate       time.Time  `firestore:"joiningDate,omitempty" json:"joiningDate"`
	ExitDate          *time.Time `firestore:"exitDate,omitempty" json:"exitDate,omitempty"`
	Status            string     `firestore:"status,omitempty" json:"status"`
	PhotoURL          string     `firestore:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	AadhaarURL        string     `firestore:"aadhaarUrl,omitempty" json:"aadhaarUrl,omitempty"`
	PANURL            string     `firestore:"panUrl,omitempty" json:"panUrl,omitempty"`
	CreatedAt         time.Time  `firestore:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt         time.Time  `firestore:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// EmployeeRecord pairs an employee with its store-assigned document ID for
// listing responses.
type EmployeeRecord struct {
	ID string `json:"id"`
	Employee
}

// AttendanceEntry is one employee's attendance for one calendar day.
// The document ID is "<employeeId>_<YYYY-MM-DD>" so a day has at most one entry.
type AttendanceEntry struct {
	EmployeeID string     `firestore:"employeeId" json:"employeeId"`
	Date       string     `firestore:"date" json:"date"`
	CheckIn    time.Time  `firestore:"checkIn" json:"checkIn"`
	CheckOut   *time.Time `firestore:"checkOut,omitempty" json:"checkOut,omitempty"`
	CreatedAt  time.Time  `firestore:"createdAt,omitempty" json:"createdAt,omitempty"`
}
