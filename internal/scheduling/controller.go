package scheduling

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/patient-scheduler/internal/locale"
	"github.com/wolfman30/patient-scheduler/internal/observability/metrics"
	"github.com/wolfman30/patient-scheduler/internal/temporal"
	"github.com/wolfman30/patient-scheduler/internal/templates"
	"github.com/wolfman30/patient-scheduler/pkg/logging"
)

// DefaultResetDelay is how long a finished interview stays in the completed
// phase before returning to idle.
const DefaultResetDelay = 500 * time.Millisecond

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Config wires a Controller. Emit, Resolver and Submitter are required.
type Config struct {
	SessionID string
	Locale    string
	Identity  Identity

	// Emit receives every agent message in order. It is never called with
	// the controller's lock held.
	Emit func(Message)
	// OnPhaseChange, when set, is told about every phase transition.
	OnPhaseChange func(Phase)

	Resolver  TimeResolver
	Submitter Submitter

	Catalog  *locale.Catalog
	Renderer *templates.Renderer
	// Location renders the appointment time in the confirming message.
	Location *time.Location

	ResetDelay time.Duration
	Scheduler  Scheduler
	Metrics    *metrics.SchedulingMetrics
	Logger     *logging.Logger
}

// Controller drives one session's interview. All methods are safe for
// concurrent use; HandleUserInput blocks for the duration of a submission.
type Controller struct {
	sessionID string
	locale    string
	copy      locale.Copy
	identity  Identity

	emit          func(Message)
	onPhaseChange func(Phase)
	resolver      TimeResolver
	submitter     Submitter
	renderer      *templates.Renderer
	location      *time.Location
	resetDelay    time.Duration
	scheduler     Scheduler
	metrics       *metrics.SchedulingMetrics
	logger        *logging.Logger

	mu          sync.Mutex
	phase       Phase
	data        CollectedData
	question    Slot
	localeAsked bool
	generation  uint64
	resetTimer  Timer
	closed      bool
}

// NewController validates cfg and returns an idle controller.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Emit == nil {
		return nil, fmt.Errorf("%w: emit callback", ErrMissingDependency)
	}
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("%w: time resolver", ErrMissingDependency)
	}
	if cfg.Submitter == nil {
		return nil, fmt.Errorf("%w: submitter", ErrMissingDependency)
	}
	catalog := cfg.Catalog
	if catalog == nil {
		catalog = locale.NewCatalog(cfg.Locale)
	}
	renderer := cfg.Renderer
	if renderer == nil {
		renderer = &templates.Renderer{}
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	delay := cfg.ResetDelay
	if delay <= 0 {
		delay = DefaultResetDelay
	}
	scheduler := cfg.Scheduler
	if scheduler == nil {
		scheduler = ClockScheduler{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	code := catalog.Normalize(cfg.Locale)

	return &Controller{
		sessionID:     cfg.SessionID,
		locale:        code,
		copy:          catalog.Lookup(code),
		identity:      cfg.Identity,
		emit:          cfg.Emit,
		onPhaseChange: cfg.OnPhaseChange,
		resolver:      cfg.Resolver,
		submitter:     cfg.Submitter,
		renderer:      renderer,
		location:      loc,
		resetDelay:    delay,
		scheduler:     scheduler,
		metrics:       cfg.Metrics,
		logger:        logger.With("session_id", cfg.SessionID, "locale", code),
		phase:         PhaseIdle,
	}, nil
}

// Locale is the normalized language code of this controller's copy.
func (c *Controller) Locale() string {
	return c.locale
}

// Phase returns the current lifecycle state.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Data returns a snapshot of the answers collected so far.
func (c *Controller) Data() CollectedData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data
}

// IsActive reports whether the interview owns the conversation.
func (c *Controller) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && (c.phase == PhaseAwaitingUser || c.phase == PhaseScheduling)
}

// IsAwaitingInput reports whether a question is pending and no submission is in flight.
func (c *Controller) IsAwaitingInput() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && c.phase == PhaseAwaitingUser && c.question != SlotNone
}

// Start begins a new interview. It does nothing while one is in progress.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.closed || c.phase == PhaseAwaitingUser || c.phase == PhaseScheduling {
		c.mu.Unlock()
		return
	}
	c.cancelResetLocked()
	c.generation++
	c.data = CollectedData{}
	c.localeAsked = false
	c.question = SlotNone

	prefilled := false
	if name := strings.TrimSpace(c.identity.Name); name != "" {
		c.data.PatientName = name
		prefilled = true
	}
	if email := strings.TrimSpace(c.identity.Email); emailPattern.MatchString(email) {
		c.data.PatientEmail = email
		prefilled = true
	}

	var fx effects
	c.setPhaseLocked(&fx, PhaseAwaitingUser)
	fx.say(c, Message{Text: c.copy.Greeting})
	if prefilled {
		fx.say(c, Message{Text: c.renderLocked("identity_ack", c.copy.IdentityAck)})
	}
	req, submit := c.advanceLocked(&fx)
	gen := c.generation
	c.mu.Unlock()

	c.metrics.ObserveSessionStarted(c.locale)
	c.logger.Info("scheduling interview started", "prefilled", prefilled)
	fx.flush()
	if submit {
		c.submit(context.Background(), req, gen)
	}
}

// HandleUserInput offers one patient utterance to the interview. It returns
// false when the interview is not running and the host should route the
// text elsewhere. While a submission is in flight the input is swallowed.
func (c *Controller) HandleUserInput(ctx context.Context, text string) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	switch c.phase {
	case PhaseScheduling:
		c.mu.Unlock()
		return true
	case PhaseAwaitingUser:
	default:
		c.mu.Unlock()
		return false
	}

	var fx effects
	slot := c.question
	if slot != SlotNone && !c.acceptLocked(&fx, slot, strings.TrimSpace(text)) {
		c.mu.Unlock()
		c.metrics.ObserveValidationFailure(string(slot))
		c.logger.Debug("scheduling answer rejected", "slot", string(slot))
		fx.flush()
		return true
	}
	c.question = SlotNone
	req, submit := c.advanceLocked(&fx)
	gen := c.generation
	c.mu.Unlock()

	fx.flush()
	if submit {
		c.submit(ctx, req, gen)
	}
	return true
}

// Close cancels any pending reset and detaches the controller. Later calls
// are no-ops and a submission still in flight completes without emitting.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.generation++
	c.cancelResetLocked()
}

// acceptLocked validates value for slot and stores it. On rejection it
// queues the slot's error copy and leaves the data untouched.
func (c *Controller) acceptLocked(fx *effects, slot Slot, value string) bool {
	switch slot {
	case SlotName:
		if value == "" {
			fx.say(c, Message{Text: c.copy.InvalidName})
			return false
		}
		c.data.PatientName = value
	case SlotEmail:
		if !emailPattern.MatchString(value) {
			fx.say(c, Message{Text: c.copy.InvalidEmail})
			return false
		}
		c.data.PatientEmail = value
	case SlotSymptoms:
		if value == "" {
			fx.say(c, Message{Text: c.copy.InvalidSymptoms})
			return false
		}
		c.data.Symptoms = value
	case SlotTime:
		t, ok := c.resolver.Resolve(value)
		// The zero instant marks the slot as unfilled.
		if !ok || t.IsZero() {
			fx.say(c, Message{Text: c.copy.InvalidTime})
			return false
		}
		c.data.PreferredTime = t
	case SlotLocale:
		if c.copy.IsSkipWord(value) {
			c.data.LocalePreference = ""
		} else {
			c.data.LocalePreference = value
		}
	}
	return true
}

// advanceLocked asks the first unfilled question, or prepares the
// submission once every slot has been handled.
func (c *Controller) advanceLocked(fx *effects) (AppointmentRequest, bool) {
	switch {
	case c.data.PatientName == "":
		c.askLocked(fx, SlotName, c.copy.AskName)
	case c.data.PatientEmail == "":
		c.askLocked(fx, SlotEmail, c.copy.AskEmail)
	case c.data.Symptoms == "":
		c.askLocked(fx, SlotSymptoms, c.copy.AskSymptoms)
	case c.data.PreferredTime.IsZero():
		c.askLocked(fx, SlotTime, c.copy.AskTime)
	case !c.localeAsked:
		c.localeAsked = true
		c.askLocked(fx, SlotLocale, c.copy.AskLocale)
	default:
		return c.beginSubmissionLocked(fx)
	}
	return AppointmentRequest{}, false
}

func (c *Controller) askLocked(fx *effects, slot Slot, text string) {
	c.question = slot
	c.setPhaseLocked(fx, PhaseAwaitingUser)
	fx.say(c, Message{Text: text})
}

func (c *Controller) beginSubmissionLocked(fx *effects) (AppointmentRequest, bool) {
	c.question = SlotNone
	if c.data.PatientName == "" || c.data.PatientEmail == "" || c.data.PreferredTime.IsZero() {
		c.logger.Warn("scheduling submission aborted: required slot missing")
		c.clearLocked()
		c.setPhaseLocked(fx, PhaseIdle)
		return AppointmentRequest{}, false
	}

	c.setPhaseLocked(fx, PhaseScheduling)
	fx.say(c, Message{Text: c.renderLocked("confirming", c.copy.Confirming)})

	return AppointmentRequest{
		PatientName:        c.data.PatientName,
		PatientEmail:       c.data.PatientEmail,
		AppointmentTimeISO: temporal.FormatISO(c.data.PreferredTime),
		Symptoms:           c.data.Symptoms,
		LocalePreference:   c.data.LocalePreference,
	}, true
}

func (c *Controller) submit(ctx context.Context, req AppointmentRequest, gen uint64) {
	if ctx == nil {
		ctx = context.Background()
	}
	started := time.Now()
	conf, err := c.callSubmitter(ctx, req)
	if err == nil && conf == nil {
		err = errNoConfirmation
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	c.metrics.ObserveSubmission(outcome, time.Since(started).Seconds())

	c.mu.Lock()
	if c.closed || c.generation != gen {
		c.mu.Unlock()
		c.logger.Info("scheduling submission finished after controller was reset", "outcome", outcome)
		return
	}

	var fx effects
	if err != nil {
		c.logger.Error("scheduling submission failed", "error", err)
		fx.say(c, Message{Text: c.copy.Failure + "\n\n" + c.copy.Signature})
	} else {
		c.logger.Info("scheduling submission confirmed", "appointment_id", conf.AppointmentID)
		fx.say(c, c.successMessage(conf))
	}
	c.setPhaseLocked(&fx, PhaseCompleted)
	c.resetTimer = c.scheduler.AfterFunc(c.resetDelay, func() { c.reset(gen) })
	c.mu.Unlock()

	fx.flush()
}

func (c *Controller) callSubmitter(ctx context.Context, req AppointmentRequest) (conf *Confirmation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scheduling: submitter panic: %v", r)
		}
	}()
	return c.submitter.Submit(ctx, req)
}

func (c *Controller) successMessage(conf *Confirmation) Message {
	msg := Message{Text: c.copy.Success + "\n\n" + c.copy.Signature}
	if link := strings.TrimSpace(conf.DoxyLink); link != "" {
		msg.Actions = append(msg.Actions, Action{Label: c.copy.JoinLabel, URL: link})
	}
	if link := strings.TrimSpace(conf.CalendarLink); link != "" {
		msg.Actions = append(msg.Actions, Action{Label: c.copy.CalendarLabel, URL: link})
	}
	return msg
}

// reset returns a completed interview to idle. A timer from an earlier
// attempt, or one firing after Close, finds a different generation and
// does nothing.
func (c *Controller) reset(gen uint64) {
	c.mu.Lock()
	if c.closed || c.generation != gen || c.phase != PhaseCompleted {
		c.mu.Unlock()
		return
	}
	c.resetTimer = nil
	c.clearLocked()
	var fx effects
	c.setPhaseLocked(&fx, PhaseIdle)
	c.mu.Unlock()

	fx.flush()
}

func (c *Controller) clearLocked() {
	c.data = CollectedData{}
	c.localeAsked = false
	c.question = SlotNone
}

func (c *Controller) cancelResetLocked() {
	if c.resetTimer != nil {
		c.resetTimer.Stop()
		c.resetTimer = nil
	}
}

func (c *Controller) setPhaseLocked(fx *effects, p Phase) {
	if c.phase == p {
		return
	}
	c.phase = p
	if cb := c.onPhaseChange; cb != nil {
		fx.queue = append(fx.queue, func() { cb(p) })
	}
}

type copyData struct {
	Name  string
	Email string
	Time  string
}

// renderLocked fills a copy template from the collected data. A broken
// template falls back to its raw text.
func (c *Controller) renderLocked(name, tmpl string) string {
	data := copyData{Name: c.data.PatientName, Email: c.data.PatientEmail}
	if !c.data.PreferredTime.IsZero() {
		data.Time = c.data.PreferredTime.In(c.location).Format(c.copy.TimeLayout)
	}
	out, err := c.renderer.Render(c.locale+"."+name, tmpl, data)
	if err != nil {
		c.logger.Error("render scheduling copy", "template", name, "error", err)
		return tmpl
	}
	return out
}

// effects collects callbacks produced under the lock so they run, in
// order, after it is released.
type effects struct {
	queue []func()
}

func (fx *effects) say(c *Controller, msg Message) {
	emit := c.emit
	fx.queue = append(fx.queue, func() { emit(msg) })
}

func (fx *effects) flush() {
	for _, f := range fx.queue {
		f()
	}
}
