package appointments

import "time"

// Status of one booking attempt.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Record is one submission to the scheduling backend.
type Record struct {
	ID                   string
	SessionID            string
	PatientName          string
	PatientEmail         string
	Symptoms             string
	LocalePreference     string
	AppointmentTime      time.Time
	Status               Status
	BackendAppointmentID string
	FailureReason        string
	CreatedAt            time.Time
}
