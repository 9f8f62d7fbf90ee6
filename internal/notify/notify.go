package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Severity classifies a user-visible notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is one toast shown to the agent.
type Notification struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
	At       time.Time `json:"at"`
}

// Notifier delivers user-visible notifications. Fire-and-forget: no
// acknowledgment is expected and a delivery failure must never affect
// engine state, so Notify returns nothing.
type Notifier interface {
	Notify(ctx context.Context, title, message string, severity Severity)
}

// LogNotifier writes notifications to the structured log. Used as the
// fallback sink when no broker is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, title, message string, severity Severity) {
	log := n.Logger
	if log == nil {
		log = slog.Default()
	}
	log.Info("notification", "title", title, "message", message, "severity", string(severity))
}

// MemoryNotifier collects notifications for tests.
type MemoryNotifier struct {
	mu   sync.Mutex
	Sent []Notification
}

func (n *MemoryNotifier) Notify(ctx context.Context, title, message string, severity Severity) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = append(n.Sent, Notification{Title: title, Message: message, Severity: severity})
}

func (n *MemoryNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Sent)
}
