package models

// These structs define the JSON payloads for the HTTP functions.

// CreateStateAdminRequest is the input for the createStateAdmin operation.
type CreateStateAdminRequest struct {
	Email string `json:"email"`
	State string `json:"state"`
}

// SetSuperAdminRequest is the input for the setSuperAdmin operation.
type SetSuperAdminRequest struct {
	Email string `json:"email"`
}

// AdminClaimResponse is the output of both admin-claim operations.
type AdminClaimResponse struct {
	Status string `json:"status"`
	UID    string `json:"uid"`
}

// VerifyDocumentRequest is the input for the verify-document function.
// ImageData is the raw document bytes, base64-encoded by the JSON codec.
type VerifyDocumentRequest struct {
	ImageData    []byte `json:"imageData"`
	MIMEType     string `json:"mimeType"`
	DocumentType string `json:"documentType"`
}

// VerifyDocumentResponse is the classifier's verdict for one document.
type VerifyDocumentResponse struct {
	Match  bool   `json:"match"`
	Reason string `json:"reason"`
}

// CheckInRequest is the input for the attendance check-in/check-out routes.
type CheckInRequest struct {
	EmployeeID string `json:"employeeId"`
}

// ScheduledExportResponse reports the job record created by the scheduler.
type ScheduledExportResponse struct {
	Status string `json:"status"`
	JobID  string `json:"jobId"`
}
