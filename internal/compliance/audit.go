// Package compliance keeps the audit trail of scheduling attempts. Events
// name the interview slots that were filled, never the patient's answers.
package compliance

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// AuditEventType represents the type of audited event.
type AuditEventType string

const (
	// EventAppointmentRequested is logged when the backend confirms a booking.
	EventAppointmentRequested AuditEventType = "scheduling.appointment_requested"
	// EventAppointmentFailed is logged when the backend call fails.
	EventAppointmentFailed AuditEventType = "scheduling.appointment_failed"
)

// AuditEvent represents an immutable audit record.
type AuditEvent struct {
	ID            string          `json:"id"`
	EventType     AuditEventType  `json:"event_type"`
	SessionID     string          `json:"session_id"`
	AppointmentID string          `json:"appointment_id,omitempty"`
	Locale        string          `json:"locale,omitempty"`
	Slots         []string        `json:"slots,omitempty"`
	Details       json.RawMessage `json:"details,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// AuditDetails contains event-specific details.
type AuditDetails struct {
	AppointmentTime string `json:"appointment_time,omitempty"`
	FailureReason   string `json:"failure_reason,omitempty"`
}

// AuditService writes scheduling_audit_events rows. A nil service, or one
// without a database, accepts and drops every event.
type AuditService struct {
	db *sql.DB
}

// NewAuditService creates a new audit service.
func NewAuditService(db *sql.DB) *AuditService {
	return &AuditService{db: db}
}

// LogEvent records an audit event.
func (s *AuditService) LogEvent(ctx context.Context, event AuditEvent) error {
	if s == nil || s.db == nil {
		return nil
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	details := event.Details
	if len(details) == 0 {
		details = json.RawMessage(`{}`)
	}
	slots := event.Slots
	if slots == nil {
		slots = []string{}
	}

	query := `
		INSERT INTO scheduling_audit_events (
			id, event_type, session_id, appointment_id, locale,
			slots, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		event.SessionID,
		nullString(event.AppointmentID),
		nullString(event.Locale),
		pq.Array(slots),
		[]byte(details),
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("compliance: failed to log audit event: %w", err)
	}
	return nil
}

// LogAppointmentRequested logs a confirmed booking.
func (s *AuditService) LogAppointmentRequested(ctx context.Context, sessionID, appointmentID, locale string, slots []string, appointmentTime time.Time) error {
	detailsJSON, _ := json.Marshal(AuditDetails{AppointmentTime: appointmentTime.UTC().Format(time.RFC3339)})

	return s.LogEvent(ctx, AuditEvent{
		EventType:     EventAppointmentRequested,
		SessionID:     sessionID,
		AppointmentID: appointmentID,
		Locale:        locale,
		Slots:         slots,
		Details:       detailsJSON,
	})
}

// LogAppointmentFailed logs a failed backend call. reason must not carry
// patient answers.
func (s *AuditService) LogAppointmentFailed(ctx context.Context, sessionID, locale string, slots []string, reason string) error {
	detailsJSON, _ := json.Marshal(AuditDetails{FailureReason: reason})

	return s.LogEvent(ctx, AuditEvent{
		EventType: EventAppointmentFailed,
		SessionID: sessionID,
		Locale:    locale,
		Slots:     slots,
		Details:   detailsJSON,
	})
}

// QueryEvents retrieves audit events with filters, newest first.
func (s *AuditService) QueryEvents(ctx context.Context, filter AuditFilter) ([]AuditEvent, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := `
		SELECT id, event_type, session_id, appointment_id, locale,
			   slots, details, created_at
		FROM scheduling_audit_events
		WHERE 1 = 1
	`
	var args []any
	argIdx := 1

	if filter.SessionID != "" {
		query += fmt.Sprintf(" AND session_id = $%d", argIdx)
		args = append(args, filter.SessionID)
		argIdx++
	}
	if filter.EventType != "" {
		query += fmt.Sprintf(" AND event_type = $%d", argIdx)
		args = append(args, filter.EventType)
		argIdx++
	}
	if !filter.StartTime.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, filter.StartTime)
		argIdx++
	}
	if !filter.EndTime.IsZero() {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, filter.EndTime)
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("compliance: failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []AuditEvent
	for rows.Next() {
		var e AuditEvent
		var appointmentID, locale sql.NullString
		var details []byte
		if err := rows.Scan(
			&e.ID, &e.EventType, &e.SessionID, &appointmentID, &locale,
			pq.Array(&e.Slots), &details, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("compliance: failed to scan audit event: %w", err)
		}
		e.AppointmentID = appointmentID.String
		e.Locale = locale.String
		e.Details = json.RawMessage(details)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("compliance: failed to read audit events: %w", err)
	}
	return events, nil
}

// AuditFilter specifies criteria for querying audit events.
type AuditFilter struct {
	SessionID string
	EventType AuditEventType
	StartTime time.Time
	EndTime   time.Time
	Limit     int
	Offset    int
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
