package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.

type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// IMPORTANT:
// - Audit is internal-only. Do not expose these records through the session API.
// - Callers should treat audit logging as best-effort.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}
	if e.SessionID == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogCommand records a call-control command invocation and its outcome.
func (s *Service) LogCommand(ctx context.Context, sessionID, recordID, agentID, role, command string, accepted bool) error {
	return s.Append(ctx, Event{
		Type:      EventTypeCommand,
		SessionID: sessionID,
		RecordID:  recordID,
		AgentID:   agentID,
		Role:      role,
		Command:   command,
		Accepted:  accepted,
	})
}

// LogSession records a session lifecycle action (attach, detach, reset).
func (s *Service) LogSession(ctx context.Context, typ EventType, sessionID, recordID, agentID, role string) error {
	return s.Append(ctx, Event{
		Type:      typ,
		SessionID: sessionID,
		RecordID:  recordID,
		AgentID:   agentID,
		Role:      role,
	})
}
