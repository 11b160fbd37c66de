package webchat

import (
	"context"
	"time"

	"github.com/wolfman30/patient-scheduler/internal/scheduling"
	"github.com/wolfman30/patient-scheduler/internal/transcript"
	"golang.org/x/net/websocket"
)

// Transcript sources for agent messages.
const (
	sourceScheduler = "scheduler"
	sourceFallback  = "fallback"
)

const transcriptTimeout = 2 * time.Second

// deliver is the controller's emit callback for s.
func (h *Handler) deliver(s *session, msg scheduling.Message) {
	out := OutboundMessage{
		Type:          "message",
		Role:          transcript.RoleAgent,
		Text:          msg.Text,
		Actions:       msg.Actions,
		AwaitingInput: s.controller.IsAwaitingInput(),
		Timestamp:     h.now().UTC().Format(time.RFC3339),
	}
	h.record(s.id, agentEntry(msg.Text, msg.Actions, sourceScheduler, h.now()))
	h.send(s, out)
}

// deliverFallback pushes a general chat reply to s.
func (h *Handler) deliverFallback(s *session, text string) {
	h.record(s.id, agentEntry(text, nil, sourceFallback, h.now()))
	h.send(s, OutboundMessage{
		Type:      "message",
		Role:      transcript.RoleAgent,
		Text:      text,
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) send(s *session, out OutboundMessage) {
	if conn := s.push(out); conn != nil {
		if err := websocket.JSON.Send(conn, out); err != nil {
			h.logger.Debug("webchat: push failed", "session_id", s.id, "error", err)
		}
	}
}

func (h *Handler) record(sessionID string, entry transcript.Entry) {
	if h.transcript == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), transcriptTimeout)
	defer cancel()
	if err := h.transcript.Append(ctx, sessionID, entry); err != nil {
		h.logger.Warn("webchat: transcript append failed", "session_id", sessionID, "error", err)
	}
}

func patientEntry(text string, now time.Time) transcript.Entry {
	return transcript.Entry{Role: transcript.RolePatient, Text: text, Timestamp: now.UTC()}
}

func agentEntry(text string, actions []scheduling.Action, source string, now time.Time) transcript.Entry {
	entry := transcript.Entry{Role: transcript.RoleAgent, Text: text, Source: source, Timestamp: now.UTC()}
	for _, a := range actions {
		entry.Links = append(entry.Links, transcript.Link{Label: a.Label, URL: a.URL})
	}
	return entry
}

func historyFrom(entries []transcript.Entry) []HistoryMessage {
	history := make([]HistoryMessage, 0, len(entries))
	for _, e := range entries {
		hm := HistoryMessage{
			Role:      e.Role,
			Text:      e.Text,
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
		}
		for _, l := range e.Links {
			hm.Actions = append(hm.Actions, scheduling.Action{Label: l.Label, URL: l.URL})
		}
		history = append(history, hm)
	}
	return history
}
