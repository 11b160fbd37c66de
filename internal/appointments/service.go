package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/patient-scheduler/internal/notify"
	"github.com/wolfman30/patient-scheduler/internal/scheduling"
	"github.com/wolfman30/patient-scheduler/pkg/logging"
)

var appointmentsTracer = otel.Tracer("scheduler.internal.appointments")

// Booker creates appointments with the scheduling backend.
type Booker interface {
	CreateAppointment(ctx context.Context, req scheduling.AppointmentRequest) (*scheduling.Confirmation, error)
}

// Auditor records booking outcomes.
type Auditor interface {
	LogAppointmentRequested(ctx context.Context, sessionID, appointmentID, locale string, slots []string, appointmentTime time.Time) error
	LogAppointmentFailed(ctx context.Context, sessionID, locale string, slots []string, reason string) error
}

// Mailer sends the patient's confirmation email.
type Mailer interface {
	SendAppointmentConfirmation(ctx context.Context, c notify.AppointmentConfirmation) error
}

// Service submits interviews to the backend and records what happened.
// Only the backend call decides the outcome; record, audit and email
// failures are logged.
type Service struct {
	booker Booker
	repo   Repository
	audit  Auditor
	mailer Mailer
	logger *logging.Logger
}

// NewService constructs the submission service. repo, audit and mailer are optional.
func NewService(booker Booker, repo Repository, audit Auditor, mailer Mailer, logger *logging.Logger) *Service {
	if booker == nil {
		panic("appointments: booker required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{booker: booker, repo: repo, audit: audit, mailer: mailer, logger: logger}
}

var _ scheduling.Submitter = (*Service)(nil)

// Submit books req. The session ID and language code are taken from ctx;
// the patient's locale answer is stored on the record only.
func (s *Service) Submit(ctx context.Context, req scheduling.AppointmentRequest) (*scheduling.Confirmation, error) {
	sessionID := SessionIDFromContext(ctx)
	localeCode := LocaleFromContext(ctx)
	ctx, span := appointmentsTracer.Start(ctx, "appointments.submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("scheduler.session_id", sessionID),
		attribute.Bool("scheduler.locale_preference", req.LocalePreference != ""),
	)

	appointmentTime, err := time.Parse(time.RFC3339Nano, req.AppointmentTimeISO)
	if err != nil {
		err = fmt.Errorf("appointments: invalid appointment time: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		return nil, err
	}

	conf, err := s.booker.CreateAppointment(ctx, req)
	if err == nil && conf == nil {
		err = fmt.Errorf("%w: empty confirmation", ErrMalformedResponse)
	}

	rec := &Record{
		SessionID:        sessionID,
		PatientName:      req.PatientName,
		PatientEmail:     req.PatientEmail,
		Symptoms:         req.Symptoms,
		LocalePreference: req.LocalePreference,
		AppointmentTime:  appointmentTime,
	}
	slots := filledSlots(req)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "booking failed")
		rec.Status = StatusFailed
		rec.FailureReason = failureReason(err)
		s.record(ctx, rec)
		if s.audit != nil {
			if auditErr := s.audit.LogAppointmentFailed(ctx, sessionID, localeCode, slots, rec.FailureReason); auditErr != nil {
				s.logger.Error("audit appointment failure", "session_id", sessionID, "error", auditErr)
			}
		}
		s.logger.Warn("appointment booking failed", "session_id", sessionID, "reason", rec.FailureReason)
		return nil, err
	}

	span.SetAttributes(attribute.String("scheduler.appointment_id", conf.AppointmentID))
	rec.Status = StatusConfirmed
	rec.BackendAppointmentID = conf.AppointmentID
	s.record(ctx, rec)
	if s.audit != nil {
		if auditErr := s.audit.LogAppointmentRequested(ctx, sessionID, conf.AppointmentID, localeCode, slots, appointmentTime); auditErr != nil {
			s.logger.Error("audit appointment request", "session_id", sessionID, "error", auditErr)
		}
	}
	if s.mailer != nil {
		if mailErr := s.mailer.SendAppointmentConfirmation(ctx, notify.AppointmentConfirmation{
			PatientName:     req.PatientName,
			PatientEmail:    req.PatientEmail,
			Locale:          localeCode,
			AppointmentID:   conf.AppointmentID,
			AppointmentTime: appointmentTime,
			JoinLink:        conf.DoxyLink,
			CalendarLink:    conf.CalendarLink,
		}); mailErr != nil {
			s.logger.Error("send confirmation email", "session_id", sessionID, "error", mailErr)
		}
	}

	s.logger.Info("appointment booked", "session_id", sessionID, "appointment_id", conf.AppointmentID, "record_id", rec.ID)
	return conf, nil
}

func (s *Service) record(ctx context.Context, rec *Record) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		s.logger.Error("record appointment attempt", "session_id", rec.SessionID, "error", err)
	}
}

// filledSlots names the interview answers present in req.
func filledSlots(req scheduling.AppointmentRequest) []string {
	slots := []string{string(scheduling.SlotName), string(scheduling.SlotEmail)}
	if req.Symptoms != "" {
		slots = append(slots, string(scheduling.SlotSymptoms))
	}
	slots = append(slots, string(scheduling.SlotTime))
	if req.LocalePreference != "" {
		slots = append(slots, string(scheduling.SlotLocale))
	}
	return slots
}

// failureReason is a category safe to persist; backend bodies may echo
// patient answers.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrBackendStatus):
		return "backend_status"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "transport"
	}
}
