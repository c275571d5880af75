// Package session maintains bounded, in-memory conversation history per
// session id. Sessions are created lazily on first append, trimmed FIFO to a
// configurable message bound, and purged by a periodic time-based sweep.
package session

import (
	"time"

	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/query"
)

// Role identifies the author of a message.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Metadata is the optional structured payload attached to assistant
// messages that resulted from a query.
type Metadata struct {
	Query   string
	Results []query.Row
}

// Message is one conversation turn. Messages are immutable once appended.
type Message struct {
	Role      Role
	Content   string
	Timestamp time.Time
	Metadata  *Metadata // nil except on assistant messages that ran a query
}

// Turn is the metadata-stripped message shape handed to the language model
// as conversational context.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Info is a read-only snapshot of a session's state.
type Info struct {
	Exists          bool
	MessageCount    int
	LastActivity    time.Time
	HasQueryHistory bool
}
