package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores attempts in appointment_requests.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithDB(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const recordColumns = `id, session_id, patient_name, patient_email, symptoms, locale_preference,
	appointment_time, status, backend_appointment_id, failure_reason, created_at`

// Create inserts rec and fills in its ID and creation time.
func (r *PostgresRepository) Create(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	query := `
		INSERT INTO appointment_requests (
			id, session_id, patient_name, patient_email, symptoms, locale_preference,
			appointment_time, status, backend_appointment_id, failure_reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`
	if err := r.db.QueryRow(ctx, query,
		rec.ID,
		rec.SessionID,
		rec.PatientName,
		rec.PatientEmail,
		rec.Symptoms,
		rec.LocalePreference,
		rec.AppointmentTime,
		string(rec.Status),
		rec.BackendAppointmentID,
		rec.FailureReason,
	).Scan(&rec.CreatedAt); err != nil {
		return fmt.Errorf("appointments: insert failed: %w", err)
	}
	return nil
}

// GetByID loads one record.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM appointment_requests WHERE id = $1`
	rec, err := scanRecord(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("appointments: select failed: %w", err)
	}
	return rec, nil
}

// ListBySession returns the session's attempts, oldest first.
func (r *PostgresRepository) ListBySession(ctx context.Context, sessionID string) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM appointment_requests WHERE session_id = $1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	return out, nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	var status string
	if err := row.Scan(
		&rec.ID,
		&rec.SessionID,
		&rec.PatientName,
		&rec.PatientEmail,
		&rec.Symptoms,
		&rec.LocalePreference,
		&rec.AppointmentTime,
		&status,
		&rec.BackendAppointmentID,
		&rec.FailureReason,
		&rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	rec.Status = Status(status)
	return &rec, nil
}
