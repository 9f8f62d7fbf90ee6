package console

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"call-console/internal/engine"
	"call-console/internal/notify"
	"call-console/internal/records"
	"call-console/internal/reporting"
	"call-console/internal/toolkit"
	"call-console/pkg/logger"
)

var ErrSessionNotFound = errors.New("console: session not found")

// Manager owns the live console sessions, one per attached record. A session
// is created at attach, mutated only by events and confirmed commands, and
// torn down at detach. Nothing survives a detach; reattaching to a live call
// recomputes state purely from subsequent events.
type Manager struct {
	store     records.Store
	commander toolkit.Commander
	notifier  notify.Notifier
	reporter  *reporting.Service
	log       *slog.Logger

	discoveryInterval time.Duration
	discoveryAttempts int

	baseCtx context.Context

	mu       sync.Mutex
	sessions map[string]*Session
}

type ManagerOptions struct {
	Store     records.Store
	Commander toolkit.Commander
	Notifier  notify.Notifier

	// Reporter, when set, receives one CallOutcome per ended call.
	Reporter *reporting.Service
	Logger   *slog.Logger

	DiscoveryInterval time.Duration
	DiscoveryAttempts int

	// BaseCtx bounds every session's background discovery; defaults to
	// context.Background().
	BaseCtx context.Context
}

func NewManager(opts ManagerOptions) (*Manager, error) {
	if opts.Store == nil {
		return nil, errors.New("console: record store is required")
	}
	if opts.Commander == nil {
		return nil, errors.New("console: toolkit commander is required")
	}
	m := &Manager{
		store:             opts.Store,
		commander:         opts.Commander,
		notifier:          opts.Notifier,
		reporter:          opts.Reporter,
		log:               opts.Logger,
		discoveryInterval: opts.DiscoveryInterval,
		discoveryAttempts: opts.DiscoveryAttempts,
		baseCtx:           opts.BaseCtx,
		sessions:          map[string]*Session{},
	}
	if m.notifier == nil {
		m.notifier = notify.LogNotifier{Logger: opts.Logger}
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	if m.baseCtx == nil {
		m.baseCtx = context.Background()
	}
	return m, nil
}

// Attach creates a session for a record. If the record's call had already
// ended before attach, the session starts in the ended state with controls
// suppressed and no discovery poll.
func (m *Manager) Attach(ctx context.Context, recordID string) (*Session, error) {
	rec, err := m.store.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	sessLog := logger.Component(m.log, "session").With("session_id", id, "record_id", recordID)

	eng := engine.New(engine.Options{Logger: sessLog})

	sessCtx, cancel := context.WithCancel(m.baseCtx)
	s := &Session{
		ID:        id,
		Record:    rec,
		eng:       eng,
		commander: m.commander,
		notifier:  m.notifier,
		reporter:  m.reporter,
		log:       sessLog,
		cancel:    cancel,
	}

	if rec.EndedAt != nil {
		eng.MarkEndedAtLoad(*rec.EndedAt)
	} else {
		d := toolkit.Discovery{
			Probe:       m.commander.HealthCheck,
			Interval:    m.discoveryInterval,
			MaxAttempts: m.discoveryAttempts,
			Logger:      sessLog,
			OnFound:     func() { eng.SetTelephonyAvailable(true) },
		}
		go d.Run(sessCtx)
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	sessLog.Info("session attached", "call_ref", rec.CallRef, "already_ended", rec.EndedAt != nil)
	return s, nil
}

// Get looks up a live session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Detach tears a session down: discovery stops, tickers are cancelled, and
// the session becomes unreachable.
func (m *Manager) Detach(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.close()
	s.log.Info("session detached")
	return nil
}

// Close detaches every live session. Used at process shutdown.
func (m *Manager) Close() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.sessions = map[string]*Session{}
	m.mu.Unlock()

	for _, s := range all {
		s.close()
	}
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
