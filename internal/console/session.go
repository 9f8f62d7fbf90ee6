package console

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"call-console/internal/debuglog"
	"call-console/internal/engine"
	"call-console/internal/notify"
	"call-console/internal/records"
	"call-console/internal/reporting"
	"call-console/internal/toolkit"
)

var (
	ErrToolkitUnavailable = errors.New("console: toolkit unavailable")
	ErrCallRefMissing     = errors.New("console: record has no call reference")
)

// Session is one console-widget lifetime: an attached record plus the state
// engine driving its call controls. Commands go out to the toolkit; state
// changes come back in as events, except for the locally confirmed end-call
// fallback.
type Session struct {
	ID     string
	Record records.Record

	eng       *engine.Engine
	commander toolkit.Commander
	notifier  notify.Notifier
	reporter  *reporting.Service
	log       *slog.Logger

	// mu serializes state-changing handlers so the before/after status
	// comparison around each apply is atomic. Without it, two duplicate
	// callended deliveries could both observe a pre-ended status and
	// report the same call twice.
	mu sync.Mutex

	cancelOnce sync.Once
	cancel     context.CancelFunc
}

// HandleEvent feeds one raw toolkit notification into the engine.
func (s *Session) HandleEvent(name string, detail any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.eng.Snapshot().Status
	s.eng.HandleRawEvent(name, detail)
	s.reportIfEnded(before)
}

// Snapshot returns the observable engine state plus the record header.
func (s *Session) Snapshot() engine.Snapshot { return s.eng.Snapshot() }

// DisplayLine is the record header shown above the controls.
func (s *Session) DisplayLine() string { return s.Record.DisplayLine() }

// Debug exposes the session's diagnostic ring buffer.
func (s *Session) Debug() *debuglog.Log { return s.eng.Debug() }

// ResetSession clears call state for a new call on the same record.
func (s *Session) ResetSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eng.ResetSession()
}

// CurrentHoldElapsed reports seconds in the open hold, 0 if none.
func (s *Session) CurrentHoldElapsed() int { return s.eng.CurrentHoldElapsed() }

// TotalHoldElapsed reports accumulated plus open hold seconds.
func (s *Session) TotalHoldElapsed() int { return s.eng.TotalHoldElapsed() }

// Hold asks the toolkit to put the call on hold. Local state changes only
// when the confirming event arrives.
func (s *Session) Hold(ctx context.Context) (bool, error) {
	return s.command(ctx, toolkit.CommandHold, s.commander.Hold)
}

// Resume asks the toolkit to take the call off hold.
func (s *Session) Resume(ctx context.Context) (bool, error) {
	return s.command(ctx, toolkit.CommandResume, s.commander.Resume)
}

// Mute asks the toolkit to mute the agent.
func (s *Session) Mute(ctx context.Context) (bool, error) {
	return s.command(ctx, toolkit.CommandMute, s.commander.Mute)
}

// Unmute asks the toolkit to unmute the agent.
func (s *Session) Unmute(ctx context.Context) (bool, error) {
	return s.command(ctx, toolkit.CommandUnmute, s.commander.Unmute)
}

// EndCall asks the toolkit to end the call. If the toolkit acknowledges
// synchronously (no confirming event forthcoming), the engine applies a
// local CallEnded rather than waiting forever for an event that will never
// arrive. This is the only optimistic state change in the design.
func (s *Session) EndCall(ctx context.Context) (bool, error) {
	res, err := s.invoke(ctx, toolkit.CommandEndCall, s.commander.EndCall)
	if err != nil {
		return false, err
	}
	if !res.Accepted {
		s.rejected(ctx, toolkit.CommandEndCall, res.Detail)
		return false, nil
	}
	if !res.EventWillFollow {
		s.mu.Lock()
		s.Debug().Append("endcall acknowledged synchronously, applying local call_ended")
		before := s.eng.Snapshot().Status
		s.eng.Apply(engine.IntentCallEnded)
		s.reportIfEnded(before)
		s.mu.Unlock()
	}
	return true, nil
}

// reportIfEnded records a call outcome on the transition into the ended
// state. Reporting is best-effort and never affects call state.
func (s *Session) reportIfEnded(before engine.CallStatus) {
	if s.reporter == nil || before == engine.StatusEnded {
		return
	}
	snap := s.eng.Snapshot()
	if snap.Status != engine.StatusEnded {
		return
	}
	o := reporting.CallOutcome{
		SessionID:        s.ID,
		RecordID:         s.Record.RecordID,
		Direction:        string(s.Record.Direction),
		DurationSeconds:  snap.DurationSeconds,
		HoldCount:        len(snap.HoldSessions),
		HoldTotalSeconds: snap.HoldTotalSeconds,
		HoldSeverity:     string(snap.HoldSeverity),
	}
	if snap.EndedAt != nil {
		o.EndedAt = *snap.EndedAt
	}
	if err := s.reporter.Record(context.Background(), o); err != nil {
		s.log.Warn("outcome report failed", "err", err)
	}
}

type commandFunc func(ctx context.Context, callRef string) (toolkit.CommandResult, error)

func (s *Session) command(ctx context.Context, name string, fn commandFunc) (bool, error) {
	res, err := s.invoke(ctx, name, fn)
	if err != nil {
		return false, err
	}
	if !res.Accepted {
		s.rejected(ctx, name, res.Detail)
		return false, nil
	}
	return true, nil
}

func (s *Session) invoke(ctx context.Context, name string, fn commandFunc) (toolkit.CommandResult, error) {
	if !s.eng.Snapshot().TelephonyAvailable {
		// Controls should be hidden in this state; debug-log only.
		s.Debug().Appendf("command %s refused: toolkit unavailable", name)
		return toolkit.CommandResult{}, ErrToolkitUnavailable
	}
	if s.Record.CallRef == "" {
		return toolkit.CommandResult{}, ErrCallRefMissing
	}

	res, err := fn(ctx, s.Record.CallRef)
	if err != nil {
		// Transport failure: non-fatal, user-visible, state unchanged.
		s.Debug().Appendf("command %s failed: %v", name, err)
		s.notifier.Notify(ctx, "Call control failed",
			"The "+name+" command could not reach the telephony toolkit.", notify.SeverityError)
		if errors.Is(err, toolkit.ErrUnreachable) {
			s.eng.SetTelephonyAvailable(false)
		}
		return toolkit.CommandResult{}, err
	}
	return res, nil
}

func (s *Session) rejected(ctx context.Context, name, detail string) {
	s.Debug().Appendf("command %s rejected: %s", name, detail)
	msg := "The toolkit rejected the " + name + " command."
	if detail != "" {
		msg += " " + detail
	}
	s.notifier.Notify(ctx, "Call control rejected", msg, notify.SeverityWarning)
}

// close tears the session down: discovery stops, tickers are cancelled.
func (s *Session) close() {
	s.cancelOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		s.eng.Close()
	})
}
