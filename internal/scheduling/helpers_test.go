package scheduling

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wolfman30/patient-scheduler/internal/locale"
	"github.com/wolfman30/patient-scheduler/internal/temporal"
	"github.com/wolfman30/patient-scheduler/pkg/logging"
)

// 2025-01-06 is a Monday.
var mondayMorning = time.Date(2025, time.January, 6, 10, 0, 0, 0, time.UTC)

type fakeTimer struct {
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// fakeScheduler hands out timers that only run when the test fires them.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{delay: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) pending() []*fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// fireAll runs every pending timer.
func (s *fakeScheduler) fireAll() {
	for _, t := range s.pending() {
		t.fired = true
		t.f()
	}
}

// fireEvenStopped runs every timer ever created, simulating a late fire
// that raced Stop.
func (s *fakeScheduler) fireEvenStopped() {
	s.mu.Lock()
	timers := append([]*fakeTimer(nil), s.timers...)
	s.mu.Unlock()
	for _, t := range timers {
		t.f()
	}
}

type recorder struct {
	mu       sync.Mutex
	messages []Message
	phases   []Phase
}

func (r *recorder) emit(msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *recorder) phase(p Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, p)
}

func (r *recorder) texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.messages))
	for i, m := range r.messages {
		out[i] = m.Text
	}
	return out
}

func (r *recorder) last() Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return Message{}
	}
	return r.messages[len(r.messages)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func (r *recorder) phaseLog() []Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Phase(nil), r.phases...)
}

type stubSubmitter struct {
	mu    sync.Mutex
	calls []AppointmentRequest
	conf  *Confirmation
	err   error
	gate  chan struct{}
}

func (s *stubSubmitter) Submit(ctx context.Context, req AppointmentRequest) (*Confirmation, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	gate := s.gate
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return s.conf, s.err
}

func (s *stubSubmitter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *stubSubmitter) lastCall() AppointmentRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

func confirmed() *Confirmation {
	return &Confirmation{
		AppointmentID: "apt_123",
		DoxyLink:      "https://doxy.me/dr-lee",
		CalendarLink:  "https://calendar.example.com/apt_123.ics",
		Message:       "Appointment booked",
	}
}

type harness struct {
	ctrl      *Controller
	rec       *recorder
	submitter *stubSubmitter
	scheduler *fakeScheduler
	copy      locale.Copy
}

type harnessOption func(*Config)

func withIdentity(id Identity) harnessOption {
	return func(c *Config) { c.Identity = id }
}

func withLocale(code string) harnessOption {
	return func(c *Config) { c.Locale = code }
}

func newHarness(t *testing.T, sub *stubSubmitter, opts ...harnessOption) *harness {
	t.Helper()
	rec := &recorder{}
	sched := &fakeScheduler{}
	catalog := locale.NewCatalog(locale.English)
	cfg := Config{
		SessionID:     "sess-1",
		Emit:          rec.emit,
		OnPhaseChange: rec.phase,
		Resolver:      temporal.NewResolver(time.UTC, func() time.Time { return mondayMorning }),
		Submitter:     sub,
		Catalog:       catalog,
		Location:      time.UTC,
		Scheduler:     sched,
		Logger:        logging.Discard(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	ctrl, err := NewController(cfg)
	require.NoError(t, err)
	t.Cleanup(ctrl.Close)
	return &harness{ctrl: ctrl, rec: rec, submitter: sub, scheduler: sched, copy: catalog.Lookup(cfg.Locale)}
}

func (h *harness) say(t *testing.T, text string) {
	t.Helper()
	require.True(t, h.ctrl.HandleUserInput(context.Background(), text), "input %q was not accepted", text)
}
