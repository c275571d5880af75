package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/query"
)

// DefaultMaxMessages bounds per-session history. The bound caps memory
// growth from long-lived sessions while keeping enough recent context for
// the model to resolve follow-up references to earlier queries.
const DefaultMaxMessages = 20

// Store holds conversation history keyed by opaque, caller-supplied session
// ids. Session count is unbounded except by Sweep; message count per
// session is bounded by maxMessages with FIFO trimming.
//
// Store is safe for concurrent use. Turns for the same session serialize on
// a per-session mutex; turns for different sessions do not contend beyond
// the map-level read lock. Sweep and Clear take the map write lock, which
// excludes in-flight appends entirely.
type Store struct {
	mu          sync.RWMutex
	sessions    map[string]*entry
	maxMessages int
	logger      *slog.Logger
}

// entry is the mutable state for one session.
type entry struct {
	mu           sync.Mutex
	messages     []Message
	lastActivity time.Time
}

// New creates a Store. maxMessages <= 0 selects DefaultMaxMessages; a nil
// logger falls back to slog.Default().
func New(maxMessages int, logger *slog.Logger) *Store {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		sessions:    make(map[string]*entry),
		maxMessages: maxMessages,
		logger:      logger,
	}
}

// Append adds a message to the session, creating the session lazily if it
// does not exist, and trims the oldest messages when the bound is exceeded.
func (s *Store) Append(sessionID string, role Role, content string, meta *Metadata) {
	msg := Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Metadata:  meta,
	}

	s.mu.RLock()
	e, ok := s.sessions[sessionID]
	if ok {
		e.append(msg, s.maxMessages)
		s.mu.RUnlock()
		s.logger.Debug("appended message", "session_id", sessionID, "role", role)
		return
	}
	s.mu.RUnlock()

	s.mu.Lock()
	e, ok = s.sessions[sessionID]
	if !ok {
		e = &entry{}
		s.sessions[sessionID] = e
	}
	e.append(msg, s.maxMessages)
	s.mu.Unlock()

	s.logger.Debug("appended message", "session_id", sessionID, "role", role)
}

// append adds msg under the entry lock and trims from the front when the
// bound is exceeded, keeping the most recent messages.
func (e *entry) append(msg Message, maxMessages int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.messages = append(e.messages, msg)
	if len(e.messages) > maxMessages {
		trimmed := make([]Message, maxMessages)
		copy(trimmed, e.messages[len(e.messages)-maxMessages:])
		e.messages = trimmed
	}
	e.lastActivity = msg.Timestamp
}

// History returns the most recent limit messages (all retained messages if
// limit <= 0), oldest first, with metadata stripped. This is the exact
// shape handed to the model as conversational context. Unknown sessions
// yield nil.
func (s *Store) History(sessionID string, limit int) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	msgs := e.messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	turns := make([]Turn, len(msgs))
	for i, m := range msgs {
		turns[i] = Turn{Role: m.Role, Content: m.Content}
	}
	return turns
}

// LastQuery returns the most recently executed SQL query in the session,
// scanning messages from newest to oldest. The second return is false when
// no stored message carries a query.
func (s *Store) LastQuery(sessionID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return "", false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for i := len(e.messages) - 1; i >= 0; i-- {
		if m := e.messages[i].Metadata; m != nil && m.Query != "" {
			return m.Query, true
		}
	}
	return "", false
}

// LastResults returns the most recent query result set in the session,
// scanning messages from newest to oldest. The returned slice is a copy;
// callers must treat the rows themselves as read-only.
func (s *Store) LastResults(sessionID string) ([]query.Row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for i := len(e.messages) - 1; i >= 0; i-- {
		if m := e.messages[i].Metadata; m != nil && len(m.Results) > 0 {
			results := make([]query.Row, len(m.Results))
			copy(results, m.Results)
			return results, true
		}
	}
	return nil, false
}

// Info returns a read-only snapshot of the session. Unknown sessions yield
// Info{Exists: false} with no other fields populated.
func (s *Store) Info(sessionID string) Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return Info{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	info := Info{
		Exists:       true,
		MessageCount: len(e.messages),
		LastActivity: e.lastActivity,
	}
	for _, m := range e.messages {
		if m.Metadata != nil && m.Metadata.Query != "" {
			info.HasQueryHistory = true
			break
		}
	}
	return info
}

// Clear removes the session entirely. Idempotent: clearing an unknown
// session is not an error.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	s.logger.Debug("cleared session", "session_id", sessionID)
}

// Sweep removes every session whose last activity is older than maxAge and
// returns the number of sessions removed. Intended to run periodically
// outside the request path; the write lock excludes in-flight appends, so a
// session touched during the sweep is never lost.
func (s *Store) Sweep(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if e.lastActivity.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Info("swept expired sessions", "removed", removed, "max_age", maxAge)
	}
	return removed
}
