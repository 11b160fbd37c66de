package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/patient-scheduler/internal/scheduling"
)

func sampleRequest() scheduling.AppointmentRequest {
	return scheduling.AppointmentRequest{
		PatientName:        "Ana Lima",
		PatientEmail:       "ana@example.com",
		AppointmentTimeISO: "2025-01-13T09:00:00.000Z",
		Symptoms:           "persistent cough",
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(ClientConfig{BaseURL: "  "})
	assert.Error(t, err)

	c, err := NewClient(ClientConfig{BaseURL: "https://sched.example.com/api/"})
	require.NoError(t, err)
	assert.Equal(t, "https://sched.example.com/api", c.baseURL)
	assert.Equal(t, 15*time.Second, c.httpClient.Timeout)
}

func TestClientCreateAppointment(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/appointments", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"appointment_id":"apt_1","doxy_link":"https://doxy.me/a","calendar_link":"https://cal/a.ics","message":"ok"}`))
	}))
	defer srv.Close()

	c, err := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "secret"})
	require.NoError(t, err)

	conf, err := c.CreateAppointment(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, &scheduling.Confirmation{
		AppointmentID: "apt_1",
		DoxyLink:      "https://doxy.me/a",
		CalendarLink:  "https://cal/a.ics",
		Message:       "ok",
	}, conf)

	assert.Equal(t, map[string]any{
		"patientName":        "Ana Lima",
		"patientEmail":       "ana@example.com",
		"appointmentTimeISO": "2025-01-13T09:00:00.000Z",
		"symptoms":           "persistent cough",
	}, got)
}

func TestClientOmitsAuthorizationWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"appointment_id":"apt_1","doxy_link":"https://doxy.me/a","calendar_link":"https://cal/a.ics"}`))
	}))
	defer srv.Close()

	c, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = c.CreateAppointment(context.Background(), sampleRequest())
	assert.NoError(t, err)
}

func TestClientFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusBadGateway, `upstream down`, ErrBackendStatus},
		{"conflict", http.StatusConflict, `{"error":"slot taken"}`, ErrBackendStatus},
		{"not json", http.StatusOK, `<html>`, ErrMalformedResponse},
		{"no links", http.StatusOK, `{"appointment_id":"apt_1"}`, ErrMalformedResponse},
		{"missing calendar link", http.StatusOK, `{"appointment_id":"apt_1","doxy_link":"https://doxy.me/a"}`, ErrMalformedResponse},
		{"missing doxy link", http.StatusOK, `{"appointment_id":"apt_1","calendar_link":"https://cal/a.ics"}`, ErrMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := NewClient(ClientConfig{BaseURL: srv.URL})
			require.NoError(t, err)
			conf, err := c.CreateAppointment(context.Background(), sampleRequest())
			assert.Nil(t, conf)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewClient(ClientConfig{BaseURL: url, Timeout: time.Second})
	require.NoError(t, err)
	_, err = c.CreateAppointment(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "appointments: request failed")
}

func TestDryRunBooker(t *testing.T) {
	conf, err := DryRunBooker{}.CreateAppointment(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, conf.AppointmentID)
	assert.Contains(t, conf.DoxyLink, conf.AppointmentID)
	assert.Contains(t, conf.CalendarLink, conf.AppointmentID)
}

func TestSessionIDContext(t *testing.T) {
	ctx := ContextWithSessionID(context.Background(), "sess-1")
	assert.Equal(t, "sess-1", SessionIDFromContext(ctx))
	assert.Empty(t, SessionIDFromContext(context.Background()))
}
