package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfman30/patient-scheduler/internal/locale"
	"github.com/wolfman30/patient-scheduler/internal/templates"
	"github.com/wolfman30/patient-scheduler/pkg/logging"
)

// AppointmentConfirmation is what the patient's confirmation email reports.
type AppointmentConfirmation struct {
	PatientName     string
	PatientEmail    string
	Locale          string
	AppointmentID   string
	AppointmentTime time.Time
	JoinLink        string
	CalendarLink    string
}

type emailCopy struct {
	Subject string
	Body    string
}

var confirmationCopy = map[string]emailCopy{
	locale.English: {
		Subject: "Your appointment on {{.Time}}",
		Body: `Hello {{.Name}},

Your appointment is booked for {{.Time}}.
{{if .JoinLink}}
Join your consultation: {{.JoinLink}}{{end}}{{if .CalendarLink}}
Add it to your calendar: {{.CalendarLink}}{{end}}

Reference: {{.AppointmentID}}

{{.Signature}}`,
	},
	locale.French: {
		Subject: "Votre rendez-vous du {{.Time}}",
		Body: `Bonjour {{.Name}},

Votre rendez-vous est réservé pour le {{.Time}}.
{{if .JoinLink}}
Rejoindre la consultation : {{.JoinLink}}{{end}}{{if .CalendarLink}}
Ajouter au calendrier : {{.CalendarLink}}{{end}}

Référence : {{.AppointmentID}}

{{.Signature}}`,
	},
}

type confirmationData struct {
	Name          string
	Time          string
	JoinLink      string
	CalendarLink  string
	AppointmentID string
	Signature     string
}

// ConfirmationMailer renders and sends appointment confirmation emails in
// the patient's language.
type ConfirmationMailer struct {
	sender   EmailSender
	catalog  *locale.Catalog
	renderer *templates.Renderer
	location *time.Location
	logger   *logging.Logger
}

// NewConfirmationMailer builds a mailer. A nil catalog selects the built-in
// English default and a nil location selects time.Local.
func NewConfirmationMailer(sender EmailSender, catalog *locale.Catalog, location *time.Location, logger *logging.Logger) *ConfirmationMailer {
	if catalog == nil {
		catalog = locale.NewCatalog(locale.English)
	}
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ConfirmationMailer{
		sender:   sender,
		catalog:  catalog,
		renderer: &templates.Renderer{},
		location: location,
		logger:   logger,
	}
}

// Build renders the email for c without sending it.
func (m *ConfirmationMailer) Build(c AppointmentConfirmation) (EmailMessage, error) {
	code := m.catalog.Normalize(c.Locale)
	lc := m.catalog.Lookup(code)
	texts, ok := confirmationCopy[code]
	if !ok {
		texts = confirmationCopy[locale.English]
	}

	data := confirmationData{
		Name:          c.PatientName,
		Time:          c.AppointmentTime.In(m.location).Format(lc.TimeLayout),
		JoinLink:      c.JoinLink,
		CalendarLink:  c.CalendarLink,
		AppointmentID: c.AppointmentID,
		Signature:     lc.Signature,
	}
	subject, err := m.renderer.Render(code+".confirmation_subject", texts.Subject, data)
	if err != nil {
		return EmailMessage{}, fmt.Errorf("notify: render subject: %w", err)
	}
	body, err := m.renderer.Render(code+".confirmation_body", texts.Body, data)
	if err != nil {
		return EmailMessage{}, fmt.Errorf("notify: render body: %w", err)
	}
	return EmailMessage{
		To:      c.PatientEmail,
		ToName:  c.PatientName,
		Subject: subject,
		Body:    body,
	}, nil
}

// SendAppointmentConfirmation renders and sends the email. A mailer without
// a sender does nothing.
func (m *ConfirmationMailer) SendAppointmentConfirmation(ctx context.Context, c AppointmentConfirmation) error {
	if m == nil || m.sender == nil {
		return nil
	}
	if c.PatientEmail == "" {
		return fmt.Errorf("notify: recipient email required")
	}
	msg, err := m.Build(c)
	if err != nil {
		return err
	}
	if err := m.sender.Send(ctx, msg); err != nil {
		return err
	}
	m.logger.Info("appointment confirmation emailed", "appointment_id", c.AppointmentID, "locale", m.catalog.Normalize(c.Locale))
	return nil
}
