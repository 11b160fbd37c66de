// Package transcript keeps the message history of web chat sessions.
package transcript

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionRequired is returned when a call has no session ID.
var ErrSessionRequired = errors.New("transcript: session ID required")

// Roles of transcript entries.
const (
	RolePatient = "patient"
	RoleAgent   = "agent"
)

// Link mirrors an action attached to an agent message.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Entry is one message in a session's transcript.
type Entry struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Links     []Link    `json:"links,omitempty"`
	Source    string    `json:"source,omitempty"` // "scheduler" or "fallback"
	Timestamp time.Time `json:"timestamp"`
}

// Store appends and lists transcript entries.
type Store interface {
	Append(ctx context.Context, sessionID string, entry Entry) error
	// List returns the last limit entries, oldest first. limit <= 0 returns all.
	List(ctx context.Context, sessionID string, limit int64) ([]Entry, error)
}

func prepare(sessionID string, entry *Entry) error {
	if sessionID == "" {
		return ErrSessionRequired
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	return nil
}

// MemoryStore is a bounded in-process Store for development and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	sessions    map[string][]Entry
	maxMessages int
}

// NewMemoryStore keeps at most maxMessages entries per session; <= 0 means no bound.
func NewMemoryStore(maxMessages int) *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]Entry), maxMessages: maxMessages}
}

func (s *MemoryStore) Append(ctx context.Context, sessionID string, entry Entry) error {
	if err := prepare(sessionID, &entry); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := append(s.sessions[sessionID], entry)
	if s.maxMessages > 0 && len(entries) > s.maxMessages {
		entries = append([]Entry(nil), entries[len(entries)-s.maxMessages:]...)
	}
	s.sessions[sessionID] = entries
	return nil
}

func (s *MemoryStore) List(ctx context.Context, sessionID string, limit int64) ([]Entry, error) {
	if sessionID == "" {
		return nil, ErrSessionRequired
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.sessions[sessionID]
	if limit > 0 && int64(len(entries)) > limit {
		entries = entries[int64(len(entries))-limit:]
	}
	return append([]Entry{}, entries...), nil
}

// Delete drops a session's transcript.
func (s *MemoryStore) Delete(ctx context.Context, sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}
