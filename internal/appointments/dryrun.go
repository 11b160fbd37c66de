package appointments

import (
	"context"

	"github.com/google/uuid"

	"github.com/wolfman30/patient-scheduler/internal/scheduling"
)

// DryRunBooker confirms every request locally. It stands in for the backend
// in development and in the terminal client.
type DryRunBooker struct{}

func (DryRunBooker) CreateAppointment(ctx context.Context, req scheduling.AppointmentRequest) (*scheduling.Confirmation, error) {
	id := uuid.NewString()
	return &scheduling.Confirmation{
		AppointmentID: id,
		DoxyLink:      "https://doxy.me/dry-run/" + id,
		CalendarLink:  "https://calendar.invalid/" + id + ".ics",
		Message:       "dry run: appointment not booked",
	}, nil
}
