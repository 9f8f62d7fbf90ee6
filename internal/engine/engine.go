package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"call-console/internal/debuglog"
)

// Engine turns normalized intents into the authoritative CallSession state.
// It owns the status machine, the duration clock and the hold accumulator,
// and serializes every handler (event delivery, timer tick, command
// confirmation) behind one mutex so no two handlers run concurrently.
//
// Nothing here is fatal: malformed events are swallowed at the boundary and
// logged, duplicates are idempotent no-ops, and a misbehaving toolkit only
// degrades the session to "telephony unavailable".
type Engine struct {
	mu sync.Mutex

	now   func() time.Time
	log   *slog.Logger
	debug *debuglog.Log

	durationTick TickScheduler
	holdTick     TickScheduler

	sess CallSession

	// Display values recomputed on each tick and on transitions. The
	// duration value is retained (frozen) after finalize.
	durationSeconds    int
	displayHoldSeconds int
	holdSeverity       HoldSeverity
}

// Options configures an Engine. Zero values get production defaults; tests
// inject a fixed clock and manual schedulers.
type Options struct {
	Now    func() time.Time
	Logger *slog.Logger
	Debug  *debuglog.Log

	DurationTicker TickScheduler
	HoldTicker     TickScheduler
}

func New(opts Options) *Engine {
	e := &Engine{
		now:          opts.Now,
		log:          opts.Logger,
		debug:        opts.Debug,
		durationTick: opts.DurationTicker,
		holdTick:     opts.HoldTicker,
		sess:         CallSession{Status: StatusNoCall},
		holdSeverity: SeverityLow,
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if e.debug == nil {
		e.debug = debuglog.New()
	}
	if e.durationTick == nil {
		e.durationTick = NewIntervalScheduler(time.Second)
	}
	if e.holdTick == nil {
		e.holdTick = NewIntervalScheduler(time.Second)
	}
	return e
}

// HandleRawEvent is the single entry point for toolkit event delivery.
// The detail payload is logged, never parsed for control decisions. Any
// panic raised while applying is recovered here so a bad event cannot take
// the session down.
func (e *Engine) HandleRawEvent(name string, detail any) {
	defer func() {
		if r := recover(); r != nil {
			e.debug.Appendf("event %q handler panicked: %v", name, r)
			e.log.Error("event handler recovered", "event", name, "panic", fmt.Sprint(r))
		}
	}()

	e.mu.Lock()
	defer e.mu.Unlock()

	if detail != nil {
		e.debug.Appendf("event %q detail: %v", name, detail)
	}

	intent, ok := Normalize(name, e.sess.Hold.IsOnHold)
	if !ok {
		e.debug.Appendf("event %q unrecognized, ignored", name)
		return
	}
	e.applyLocked(intent, e.now())
}

// Apply feeds a canonical intent directly, bypassing normalization. Used for
// locally confirmed commands (the no-event end-call fallback) and by tests.
func (e *Engine) Apply(intent Intent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applyLocked(intent, e.now())
}

func (e *Engine) applyLocked(intent Intent, at time.Time) {
	// Ended is terminal until the session is reset for a new call.
	if e.sess.Status == StatusEnded && intent != IntentCallStarted {
		e.debug.Appendf("intent %s ignored: call already ended", intent)
		return
	}

	switch intent {
	case IntentCallStarted:
		if e.sess.Status != StatusNoCall {
			e.debug.Appendf("callstarted ignored in status %s", e.sess.Status)
			return
		}
		e.sess.Status = StatusIncoming
		e.sess.IsActive = true
		e.debug.Append("call started, awaiting connect")

	case IntentCallConnected:
		if e.sess.Status != StatusIncoming {
			e.debug.Appendf("callconnected ignored in status %s", e.sess.Status)
			return
		}
		connectedAt := at
		e.sess.Status = StatusConnected
		e.sess.ConnectedAt = &connectedAt
		// Fresh call: wipe any hold state carried over from a prior one.
		e.resetHoldLocked()
		e.durationSeconds = 0
		e.durationTick.Start(e.onDurationTick)
		e.debug.Appendf("call connected at %s", connectedAt.Format(time.RFC3339))

	case IntentCallEnded:
		if e.sess.Status != StatusIncoming && e.sess.Status != StatusConnected {
			e.debug.Appendf("callended ignored in status %s", e.sess.Status)
			return
		}
		e.finalizeLocked(at)

	case IntentHoldStart:
		e.holdStartLocked(at)

	case IntentHoldEnd:
		e.holdEndLocked(at)

	case IntentMute:
		e.sess.IsMuted = true
	case IntentUnmute:
		e.sess.IsMuted = false
	}
}

// finalizeLocked runs the CallEnded side effects: force-close an open hold
// as though HoldEnd arrived at this instant, freeze the duration clock, stop
// both tickers and mark the toolkit unavailable for this session.
func (e *Engine) finalizeLocked(at time.Time) {
	if e.sess.Hold.IsOnHold {
		e.closeHoldLocked(at)
	}
	e.holdTick.Stop()

	if e.sess.ConnectedAt != nil {
		e.durationSeconds = elapsedSeconds(*e.sess.ConnectedAt, at)
	}
	e.durationTick.Stop()

	endedAt := at
	e.sess.Status = StatusEnded
	e.sess.IsActive = false
	e.sess.EndedAt = &endedAt
	e.sess.TelephonyAvailable = false

	e.recomputeHoldDisplayLocked(at)
	e.debug.Appendf("call ended, duration %s, hold total %ds",
		FormatClock(e.durationSeconds), e.sess.Hold.TotalHoldSeconds)
}

// MarkEndedAtLoad seeds a session attached to a record whose call had
// already ended before we were listening. Status history is synthesized from
// the record's end timestamp; no clocks run.
func (e *Engine) MarkEndedAtLoad(endedAt time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess.Status != StatusNoCall {
		return
	}
	t := endedAt
	e.sess.Status = StatusEnded
	e.sess.IsActive = false
	e.sess.EndedAt = &t
	e.debug.Appendf("record already ended at %s, controls suppressed", t.Format(time.RFC3339))
}

// SetTelephonyAvailable flips toolkit reachability. Losing the toolkit hides
// controls but does not alter status history.
func (e *Engine) SetTelephonyAvailable(ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess.TelephonyAvailable == ok {
		return
	}
	e.sess.TelephonyAvailable = ok
	if ok {
		e.debug.Append("telephony toolkit available")
	} else {
		e.debug.Append("telephony toolkit unavailable")
	}
}

// ResetSession clears all call and hold state for a new call. Toolkit
// availability is about the environment, not the call, so it survives.
func (e *Engine) ResetSession() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.durationTick.Stop()
	e.holdTick.Stop()

	available := e.sess.TelephonyAvailable
	e.sess = CallSession{Status: StatusNoCall, TelephonyAvailable: available}
	e.durationSeconds = 0
	e.displayHoldSeconds = 0
	e.holdSeverity = SeverityLow
	e.debug.Append("session reset")
}

// Close cancels both tickers. Further events are still accepted but no
// background refresh runs; callers detach the event feed before Close.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.durationTick.Stop()
	e.holdTick.Stop()
}

func (e *Engine) onDurationTick(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.sess.IsActive || e.sess.ConnectedAt == nil {
		return
	}
	e.durationSeconds = elapsedSeconds(*e.sess.ConnectedAt, now)
}

func (e *Engine) onHoldTick(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recomputeHoldDisplayLocked(now)
}

// CurrentHoldElapsed reports seconds in the currently open hold, 0 if none.
func (e *Engine) CurrentHoldElapsed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess.Hold.CurrentHoldStart == nil {
		return 0
	}
	return elapsedSeconds(*e.sess.Hold.CurrentHoldStart, e.now())
}

// TotalHoldElapsed reports completed hold time plus the open hold, if any.
func (e *Engine) TotalHoldElapsed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := e.sess.Hold.TotalHoldSeconds
	if e.sess.Hold.CurrentHoldStart != nil {
		total += elapsedSeconds(*e.sess.Hold.CurrentHoldStart, e.now())
	}
	return total
}

// Snapshot is the read surface consumed by the UI layer.
type Snapshot struct {
	Status             CallStatus `json:"status"`
	IsActive           bool       `json:"is_active"`
	IsMuted            bool       `json:"is_muted"`
	TelephonyAvailable bool       `json:"telephony_available"`

	ConnectedAt *time.Time `json:"connected_at,omitempty"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`

	DurationSeconds   int    `json:"duration_seconds"`
	FormattedDuration string `json:"formatted_duration"`

	IsOnHold           bool          `json:"is_on_hold"`
	CurrentHoldSeconds int           `json:"current_hold_seconds"`
	HoldTotalSeconds   int           `json:"hold_total_seconds"`
	FormattedHoldTotal string        `json:"formatted_hold_total"`
	HoldSeverity       HoldSeverity  `json:"hold_severity"`
	HoldSessions       []HoldSession `json:"hold_sessions"`
}

// Snapshot returns a copy of the observable state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	current := 0
	if e.sess.Hold.CurrentHoldStart != nil {
		current = elapsedSeconds(*e.sess.Hold.CurrentHoldStart, e.now())
	}

	sessions := make([]HoldSession, len(e.sess.Hold.Sessions))
	copy(sessions, e.sess.Hold.Sessions)

	return Snapshot{
		Status:             e.sess.Status,
		IsActive:           e.sess.IsActive,
		IsMuted:            e.sess.IsMuted,
		TelephonyAvailable: e.sess.TelephonyAvailable,
		ConnectedAt:        e.sess.ConnectedAt,
		EndedAt:            e.sess.EndedAt,
		DurationSeconds:    e.durationSeconds,
		FormattedDuration:  FormatClock(e.durationSeconds),
		IsOnHold:           e.sess.Hold.IsOnHold,
		CurrentHoldSeconds: current,
		HoldTotalSeconds:   e.displayHoldSeconds,
		FormattedHoldTotal: FormatClock(e.displayHoldSeconds),
		HoldSeverity:       e.holdSeverity,
		HoldSessions:       sessions,
	}
}

// Debug exposes the session's diagnostic ring buffer.
func (e *Engine) Debug() *debuglog.Log { return e.debug }
