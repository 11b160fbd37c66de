// Package scheduling runs the five-question appointment interview: it asks
// for name, email, symptoms, preferred time and an optional language, checks
// each answer, submits the request and reports the outcome into the chat.
package scheduling

import (
	"context"
	"time"
)

// Phase is the controller's lifecycle state.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseAwaitingUser Phase = "awaiting_user"
	PhaseScheduling   Phase = "scheduling"
	PhaseCompleted    Phase = "completed"
)

// Slot names one field of the interview.
type Slot string

const (
	SlotNone     Slot = ""
	SlotName     Slot = "name"
	SlotEmail    Slot = "email"
	SlotSymptoms Slot = "symptoms"
	SlotTime     Slot = "time"
	SlotLocale   Slot = "locale"
)

// SlotOrder is the fixed order questions are asked in.
var SlotOrder = []Slot{SlotName, SlotEmail, SlotSymptoms, SlotTime, SlotLocale}

// CollectedData is the form assembled across turns.
type CollectedData struct {
	PatientName   string
	PatientEmail  string
	Symptoms      string
	PreferredTime time.Time
	// LocalePreference is empty when the patient skipped the question.
	LocalePreference string
}

// Action is a labeled link attached to an agent message.
type Action struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Message is one outbound agent message.
type Message struct {
	Text    string   `json:"text"`
	Actions []Action `json:"actions,omitempty"`
}

// Identity is what the host already knows about the patient.
type Identity struct {
	Name  string
	Email string
}

// AppointmentRequest is sent to the scheduling backend.
type AppointmentRequest struct {
	PatientName        string `json:"patientName"`
	PatientEmail       string `json:"patientEmail"`
	AppointmentTimeISO string `json:"appointmentTimeISO"`
	Symptoms           string `json:"symptoms,omitempty"`
	LocalePreference   string `json:"localePreference,omitempty"`
}

// Confirmation is the backend's success response.
type Confirmation struct {
	AppointmentID string `json:"appointment_id"`
	DoxyLink      string `json:"doxy_link"`
	CalendarLink  string `json:"calendar_link"`
	Message       string `json:"message"`
}

// Submitter books the appointment. Any error is reported to the patient as
// one generic failure.
type Submitter interface {
	Submit(ctx context.Context, req AppointmentRequest) (*Confirmation, error)
}

// TimeResolver turns the patient's answer to the time question into an instant.
type TimeResolver interface {
	Resolve(text string) (time.Time, bool)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, req AppointmentRequest) (*Confirmation, error)

func (f SubmitterFunc) Submit(ctx context.Context, req AppointmentRequest) (*Confirmation, error) {
	return f(ctx, req)
}
