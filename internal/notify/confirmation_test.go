package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/patient-scheduler/internal/locale"
	"github.com/wolfman30/patient-scheduler/pkg/logging"
)

func sampleConfirmation(code string) AppointmentConfirmation {
	return AppointmentConfirmation{
		PatientName:     "Ana Lima",
		PatientEmail:    "ana@example.com",
		Locale:          code,
		AppointmentID:   "apt_123",
		AppointmentTime: time.Date(2025, 1, 7, 15, 0, 0, 0, time.UTC),
		JoinLink:        "https://doxy.me/dr-lee",
		CalendarLink:    "https://calendar.example.com/apt_123.ics",
	}
}

func TestConfirmationMailerBuildEnglish(t *testing.T) {
	m := NewConfirmationMailer(nil, locale.NewCatalog(locale.English), time.UTC, logging.Discard())

	msg, err := m.Build(sampleConfirmation("en"))
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", msg.To)
	assert.Equal(t, "Ana Lima", msg.ToName)
	assert.Equal(t, "Your appointment on Tuesday, January 7 at 3:00 PM", msg.Subject)
	assert.Contains(t, msg.Body, "Hello Ana Lima,")
	assert.Contains(t, msg.Body, "Join your consultation: https://doxy.me/dr-lee")
	assert.Contains(t, msg.Body, "Add it to your calendar: https://calendar.example.com/apt_123.ics")
	assert.Contains(t, msg.Body, "Reference: apt_123")
	assert.True(t, strings.HasSuffix(msg.Body, "The Care Coordination Team"))
}

func TestConfirmationMailerBuildFrenchInLocation(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	m := NewConfirmationMailer(nil, locale.NewCatalog(locale.English), paris, logging.Discard())

	c := sampleConfirmation("fr-CA")
	c.JoinLink = ""
	msg, err := m.Build(c)
	require.NoError(t, err)

	assert.Equal(t, "Votre rendez-vous du 07/01/2025 à 16:00", msg.Subject)
	assert.NotContains(t, msg.Body, "Rejoindre")
	assert.Contains(t, msg.Body, "Ajouter au calendrier : https://calendar.example.com/apt_123.ics")
}

func TestConfirmationMailerSend(t *testing.T) {
	stub := NewStubEmailSender(logging.Discard())
	m := NewConfirmationMailer(stub, nil, time.UTC, logging.Discard())

	require.NoError(t, m.SendAppointmentConfirmation(context.Background(), sampleConfirmation("en")))

	sent := stub.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "ana@example.com", sent[0].To)
}

type failingSender struct{}

func (failingSender) Send(context.Context, EmailMessage) error { return errors.New("smtp down") }

func TestConfirmationMailerSendErrors(t *testing.T) {
	m := NewConfirmationMailer(failingSender{}, nil, time.UTC, logging.Discard())
	assert.Error(t, m.SendAppointmentConfirmation(context.Background(), sampleConfirmation("en")))

	c := sampleConfirmation("en")
	c.PatientEmail = ""
	assert.Error(t, m.SendAppointmentConfirmation(context.Background(), c))
}

func TestConfirmationMailerWithoutSenderIsNoop(t *testing.T) {
	var nilMailer *ConfirmationMailer
	assert.NoError(t, nilMailer.SendAppointmentConfirmation(context.Background(), sampleConfirmation("en")))
	assert.NoError(t, NewConfirmationMailer(nil, nil, nil, nil).SendAppointmentConfirmation(context.Background(), sampleConfirmation("en")))
}
