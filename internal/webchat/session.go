package webchat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/patient-scheduler/internal/scheduling"
	"golang.org/x/net/websocket"
)

// session is one chat session and its interview controller.
type session struct {
	id         string
	locale     string
	controller *scheduling.Controller

	// turn serializes patient turns so each HTTP call sees only its own output.
	turn sync.Mutex

	mu        sync.Mutex
	conn      *websocket.Conn
	capturing bool
	outbox    []OutboundMessage
	lastSeen  time.Time
}

func (s *session) beginCapture() {
	s.mu.Lock()
	s.capturing = true
	s.outbox = nil
	s.mu.Unlock()
}

func (s *session) endCapture() []OutboundMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.outbox
	s.capturing = false
	s.outbox = nil
	if out == nil {
		out = []OutboundMessage{}
	}
	return out
}

// push records msg for the current capture and returns the socket to send it on.
func (s *session) push(msg OutboundMessage) *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.capturing {
		s.outbox = append(s.outbox, msg)
	}
	return s.conn
}

func (s *session) attach(conn *websocket.Conn, now time.Time) {
	s.mu.Lock()
	s.conn = conn
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *session) detach(conn *websocket.Conn, now time.Time) {
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
	}
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn == nil && s.lastSeen.Before(cutoff)
}

// openSession returns the session for id, creating it and its controller on
// first use. An empty id starts a new session.
func (h *Handler) openSession(ctx context.Context, id, lang string) (*session, error) {
	now := h.now()
	h.mu.Lock()
	defer h.mu.Unlock()

	if id != "" {
		if s, ok := h.sessions[id]; ok {
			s.touch(now)
			return s, nil
		}
	} else {
		id = uuid.NewString()
	}

	code := lang
	if code == "" {
		code = h.factory.Catalog().Default()
	}
	s := &session{id: id, locale: h.factory.Catalog().Normalize(code), lastSeen: now}
	controller, err := h.factory.New(scheduling.Session{
		ID:       id,
		Locale:   s.locale,
		Identity: h.identity(ctx),
		Emit:     func(msg scheduling.Message) { h.deliver(s, msg) },
		OnPhaseChange: func(p scheduling.Phase) {
			h.logger.Debug("webchat: interview phase changed", "session_id", id, "phase", string(p))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("webchat: create controller: %w", err)
	}
	s.controller = controller
	h.sessions[id] = s
	h.logger.Info("webchat: session opened", "session_id", id, "locale", s.locale)
	return s, nil
}

func (h *Handler) lookupSession(id string) (*session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[id]
	return s, ok
}

// Sweep closes sessions with no open socket that have been idle since
// before now minus the idle TTL. It returns the number closed.
func (h *Handler) Sweep(now time.Time) int {
	cutoff := now.Add(-h.idleTTL)
	var idle []*session
	h.mu.Lock()
	for id, s := range h.sessions {
		if s.idleSince(cutoff) {
			idle = append(idle, s)
			delete(h.sessions, id)
		}
	}
	h.mu.Unlock()

	for _, s := range idle {
		s.controller.Close()
		h.logger.Debug("webchat: idle session closed", "session_id", s.id)
	}
	return len(idle)
}

// RunSweeper sweeps idle sessions until ctx is done.
func (h *Handler) RunSweeper(ctx context.Context) {
	interval := h.idleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := h.Sweep(h.now()); n > 0 {
				h.logger.Info("webchat: swept idle sessions", "count", n)
			}
		}
	}
}

// Shutdown closes every session's controller.
func (h *Handler) Shutdown() {
	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[string]*session)
	h.mu.Unlock()
	for _, s := range sessions {
		s.controller.Close()
	}
}
