package audit

import "time"

// Event is an immutable, append-only audit record of console activity.
//
// Invariants:
// - Events are never updated or deleted.
// - Actor capture is best-effort; do not block call control on audit failures.

type Event struct {
	ID string `json:"id"`

	// Type indicates the business category of the audit record.
	Type EventType `json:"type"`

	// Actor is the authenticated agent causing the event.
	AgentID string `json:"agent_id,omitempty"`
	Role    string `json:"role,omitempty"`

	// Target identifiers.
	SessionID string `json:"session_id,omitempty"`
	RecordID  string `json:"record_id,omitempty"`

	// Command is the toolkit command name for command events.
	Command string `json:"command,omitempty"`
	// Accepted reports whether the toolkit took the command.
	Accepted bool `json:"accepted,omitempty"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type EventType string

const (
	EventTypeCommand       EventType = "command"
	EventTypeSessionAttach EventType = "session_attach"
	EventTypeSessionDetach EventType = "session_detach"
	EventTypeSessionReset  EventType = "session_reset"
)
