package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepository(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	first := &Record{SessionID: "s1", Status: StatusFailed, CreatedAt: time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)}
	second := &Record{SessionID: "s1", Status: StatusConfirmed, CreatedAt: time.Date(2025, 1, 6, 10, 5, 0, 0, time.UTC)}
	other := &Record{SessionID: "s2", Status: StatusConfirmed}
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, other))

	assert.NotEmpty(t, first.ID)
	assert.False(t, other.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got.Status)

	_, err = repo.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, ErrRecordNotFound))

	list, err := repo.ListBySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
}

var recordColumnNames = []string{
	"id", "session_id", "patient_name", "patient_email", "symptoms", "locale_preference",
	"appointment_time", "status", "backend_appointment_id", "failure_reason", "created_at",
}

func TestPostgresRepository(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithDB(mock)
	ctx := context.Background()
	apptTime := time.Date(2025, 1, 13, 9, 0, 0, 0, time.UTC)
	created := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)

	rec := &Record{
		ID:                   "rec-1",
		SessionID:            "sess-1",
		PatientName:          "Ana Lima",
		PatientEmail:         "ana@example.com",
		Symptoms:             "cough",
		AppointmentTime:      apptTime,
		Status:               StatusConfirmed,
		BackendAppointmentID: "apt_1",
	}
	mock.ExpectQuery("INSERT INTO appointment_requests").
		WithArgs("rec-1", "sess-1", "Ana Lima", "ana@example.com", "cough", "", apptTime, "confirmed", "apt_1", "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))
	require.NoError(t, repo.Create(ctx, rec))
	assert.Equal(t, created, rec.CreatedAt)

	mock.ExpectQuery("SELECT (.+) FROM appointment_requests WHERE id").
		WithArgs("rec-1").
		WillReturnRows(pgxmock.NewRows(recordColumnNames).
			AddRow("rec-1", "sess-1", "Ana Lima", "ana@example.com", "cough", "", apptTime, "confirmed", "apt_1", "", created))
	got, err := repo.GetByID(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, *rec, *got)

	mock.ExpectQuery("SELECT (.+) FROM appointment_requests WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)
	_, err = repo.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, ErrRecordNotFound))

	mock.ExpectQuery("SELECT (.+) FROM appointment_requests WHERE session_id").
		WithArgs("sess-1").
		WillReturnRows(pgxmock.NewRows(recordColumnNames).
			AddRow("rec-0", "sess-1", "Ana Lima", "ana@example.com", "cough", "", apptTime, "failed", "", "backend_status", created.Add(-time.Minute)).
			AddRow("rec-1", "sess-1", "Ana Lima", "ana@example.com", "cough", "", apptTime, "confirmed", "apt_1", "", created))
	list, err := repo.ListBySession(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, StatusFailed, list[0].Status)
	assert.Equal(t, "backend_status", list[0].FailureReason)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresRepositoryInsertError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO appointment_requests").WillReturnError(errors.New("unique violation"))

	err = newPostgresRepositoryWithDB(mock).Create(context.Background(), &Record{SessionID: "s"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "appointments: insert failed")
}
