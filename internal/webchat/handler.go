// Package webchat hosts browser chat sessions: it routes each patient
// message to the scheduling interview while one is running and to the
// general chat backend otherwise.
package webchat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/patient-scheduler/internal/appointments"
	"github.com/wolfman30/patient-scheduler/internal/chatbackend"
	"github.com/wolfman30/patient-scheduler/internal/observability/metrics"
	"github.com/wolfman30/patient-scheduler/internal/scheduling"
	"github.com/wolfman30/patient-scheduler/internal/transcript"
	"github.com/wolfman30/patient-scheduler/pkg/logging"
	"golang.org/x/net/websocket"
)

// DefaultIdleTTL is how long a disconnected session is kept.
const DefaultIdleTTL = 30 * time.Minute

const (
	historyLimit    = 100
	wsHistoryLimit  = 50
	genericErrorMsg = "Sorry, something went wrong. Please try again."
)

// Config wires a Handler.
type Config struct {
	Factory    *scheduling.Factory
	Backend    chatbackend.Backend
	Transcript transcript.Store
	// Identity extracts the known patient from the request context.
	Identity func(context.Context) scheduling.Identity
	Metrics  *metrics.SchedulingMetrics
	IdleTTL  time.Duration
	Logger   *logging.Logger
}

// Handler manages web chat sessions over WebSocket and plain HTTP.
type Handler struct {
	factory    *scheduling.Factory
	backend    chatbackend.Backend
	transcript transcript.Store
	identity   func(context.Context) scheduling.Identity
	metrics    *metrics.SchedulingMetrics
	idleTTL    time.Duration
	logger     *logging.Logger
	now        func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
}

// InboundMessage is what the widget sends over the socket.
type InboundMessage struct {
	Type string `json:"type"` // "start", "message", "ping"
	Text string `json:"text,omitempty"`
}

// OutboundMessage is what the widget receives.
type OutboundMessage struct {
	Type          string              `json:"type"` // "session", "message", "history", "pong", "error"
	Role          string              `json:"role,omitempty"`
	Text          string              `json:"text,omitempty"`
	Actions       []scheduling.Action `json:"actions,omitempty"`
	AwaitingInput bool                `json:"awaiting_input"`
	SessionID     string              `json:"session_id,omitempty"`
	Locale        string              `json:"locale,omitempty"`
	Timestamp     string              `json:"timestamp,omitempty"`
	Messages      []HistoryMessage    `json:"messages,omitempty"`
}

// HistoryMessage is one transcript entry as the widget renders it.
type HistoryMessage struct {
	Role      string              `json:"role"`
	Text      string              `json:"text"`
	Actions   []scheduling.Action `json:"actions,omitempty"`
	Timestamp string              `json:"timestamp"`
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Lang      string `json:"lang"`
	Text      string `json:"text"`
}

type chatResponse struct {
	SessionID     string            `json:"session_id"`
	Locale        string            `json:"locale"`
	Messages      []OutboundMessage `json:"messages"`
	AwaitingInput bool              `json:"awaiting_input"`
}

// NewHandler creates a web chat handler. A nil backend leaves non-interview
// messages unanswered.
func NewHandler(cfg Config) (*Handler, error) {
	if cfg.Factory == nil {
		return nil, errors.New("webchat: controller factory required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	identity := cfg.Identity
	if identity == nil {
		identity = func(context.Context) scheduling.Identity { return scheduling.Identity{} }
	}
	ttl := cfg.IdleTTL
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	return &Handler{
		factory:    cfg.Factory,
		backend:    cfg.Backend,
		transcript: cfg.Transcript,
		identity:   identity,
		metrics:    cfg.Metrics,
		idleTTL:    ttl,
		logger:     logger,
		now:        time.Now,
		sessions:   make(map[string]*session),
	}, nil
}

// start begins the interview in s. Caller holds s.turn.
func (h *Handler) start(s *session) {
	s.touch(h.now())
	s.controller.Start()
}

// handleText runs one patient turn. Caller holds s.turn.
func (h *Handler) handleText(ctx context.Context, s *session, text string) {
	now := h.now()
	s.touch(now)
	h.record(s.id, patientEntry(text, now))

	ctx = appointments.ContextWithSessionID(ctx, s.id)
	ctx = appointments.ContextWithLocale(ctx, s.locale)
	if s.controller.HandleUserInput(ctx, text) {
		return
	}
	if h.backend == nil {
		h.metrics.ObserveFallback("unavailable")
		return
	}

	reply, err := h.backend.Forward(ctx, chatbackend.Utterance{
		SessionID:  s.id,
		Locale:     s.locale,
		Text:       text,
		ReceivedAt: now.UTC(),
	})
	switch {
	case err != nil:
		h.metrics.ObserveFallback("error")
		h.logger.Error("webchat: fallback backend failed", "session_id", s.id, "error", err)
		h.send(s, OutboundMessage{Type: "error", Text: genericErrorMsg})
	case strings.TrimSpace(reply) == "":
		h.metrics.ObserveFallback("queued")
	default:
		h.metrics.ObserveFallback("replied")
		h.deliverFallback(s, reply)
	}
}

// HandleWebSocket upgrades to WebSocket and handles real-time messaging.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	ctx := r.Context()
	s, err := h.openSession(ctx, r.URL.Query().Get("session"), r.URL.Query().Get("lang"))
	if err != nil {
		h.logger.Error("webchat: open session failed", "error", err)
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: genericErrorMsg})
		return
	}

	_ = websocket.JSON.Send(conn, OutboundMessage{
		Type:          "session",
		SessionID:     s.id,
		Locale:        s.locale,
		AwaitingInput: s.controller.IsAwaitingInput(),
	})
	if h.transcript != nil {
		if entries, err := h.transcript.List(ctx, s.id, wsHistoryLimit); err == nil && len(entries) > 0 {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "history", Messages: historyFrom(entries)})
		}
	}

	s.attach(conn, h.now())
	defer s.detach(conn, h.now())
	h.logger.Info("webchat: connection opened", "session_id", s.id)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", s.id, "error", err)
			return
		}

		switch msg.Type {
		case "ping":
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
		case "start":
			s.turn.Lock()
			h.start(s)
			s.turn.Unlock()
		case "message":
			text := strings.TrimSpace(msg.Text)
			if text == "" {
				continue
			}
			s.turn.Lock()
			h.handleText(ctx, s, text)
			s.turn.Unlock()
		default:
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "unsupported message type"})
		}
	}
}

// HandleStart is the HTTP entry point that begins the interview.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}
	s, err := h.openSession(r.Context(), strings.TrimSpace(req.SessionID), req.Lang)
	if err != nil {
		h.logger.Error("webchat: open session failed", "error", err)
		http.Error(w, "failed to open session", http.StatusInternalServerError)
		return
	}

	s.turn.Lock()
	s.beginCapture()
	h.start(s)
	out := s.endCapture()
	s.turn.Unlock()

	h.writeChat(w, s, out)
}

// HandleMessage is the HTTP fallback for sending messages. The response
// carries every message produced during the turn.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}
	s, err := h.openSession(r.Context(), strings.TrimSpace(req.SessionID), req.Lang)
	if err != nil {
		h.logger.Error("webchat: open session failed", "error", err)
		http.Error(w, "failed to open session", http.StatusInternalServerError)
		return
	}

	s.turn.Lock()
	s.beginCapture()
	h.handleText(r.Context(), s, text)
	out := s.endCapture()
	s.turn.Unlock()

	h.writeChat(w, s, out)
}

// HandleHistory returns chat history for a session.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session"))
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	history := []HistoryMessage{}
	if h.transcript != nil {
		entries, err := h.transcript.List(r.Context(), sessionID, historyLimit)
		if err != nil {
			h.logger.Error("webchat: failed to load history", "session_id", sessionID, "error", err)
			http.Error(w, "failed to load history", http.StatusInternalServerError)
			return
		}
		history = historyFrom(entries)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"session_id": sessionID, "messages": history})
}

func (h *Handler) writeChat(w http.ResponseWriter, s *session, out []OutboundMessage) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(chatResponse{
		SessionID:     s.id,
		Locale:        s.locale,
		Messages:      out,
		AwaitingInput: s.controller.IsAwaitingInput(),
	})
}
