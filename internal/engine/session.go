package engine

import (
	"fmt"
	"time"
)

// CallStatus is the single authoritative lifecycle state of a call.
// Exactly one value is active at a time; it is independent of the hold
// flag (a call can be connected and on hold simultaneously).
type CallStatus string

const (
	StatusNoCall    CallStatus = "no_call"
	StatusIncoming  CallStatus = "incoming"
	StatusConnected CallStatus = "connected"
	StatusEnded     CallStatus = "ended"
)

// CallSession is the aggregate root for one console-session lifetime.
// It is mutated exclusively by normalized intents or by locally confirmed
// commands, and is never shared across sessions or persisted.
type CallSession struct {
	Status   CallStatus `json:"status"`
	IsActive bool       `json:"is_active"`

	// ConnectedAt is set only on the transition into Connected. It is never
	// backdated to queue/ring time reported by the toolkit.
	ConnectedAt *time.Time `json:"connected_at,omitempty"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`

	IsMuted bool `json:"is_muted"`

	// TelephonyAvailable reports whether the external toolkit is reachable.
	TelephonyAvailable bool `json:"telephony_available"`

	Hold HoldState `json:"hold"`
}

// HoldState is the hold-session bookkeeping owned by the accumulator.
//
// Invariants:
//   - IsOnHold == (CurrentHoldStart != nil); at most one session is open.
//   - TotalHoldSeconds only increases, except on a full reset for a new call.
//   - Session numbers are a gapless ascending sequence starting at 1.
type HoldState struct {
	IsOnHold         bool          `json:"is_on_hold"`
	CurrentHoldStart *time.Time    `json:"current_hold_start,omitempty"`
	TotalHoldSeconds int           `json:"total_hold_seconds"`
	Sessions         []HoldSession `json:"sessions"`
}

// HoldSession is one contiguous completed hold interval. Immutable once
// appended.
type HoldSession struct {
	SessionNumber   int       `json:"session_number"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationSeconds int       `json:"duration_seconds"`
}

// HoldSeverity is a coarse display classification of accumulated hold time.
type HoldSeverity string

const (
	SeverityLow    HoldSeverity = "low"
	SeverityMedium HoldSeverity = "medium"
	SeverityHigh   HoldSeverity = "high"
)

// SeverityFor classifies a displayed hold total in seconds.
func SeverityFor(totalSeconds int) HoldSeverity {
	switch {
	case totalSeconds <= 30:
		return SeverityLow
	case totalSeconds <= 120:
		return SeverityMedium
	default:
		return SeverityHigh
	}
}

// FormatClock renders seconds as MM:SS, rolling to H:MM:SS past an hour.
func FormatClock(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// elapsedSeconds truncates toward zero; a tick mid-second reports the last
// whole second.
func elapsedSeconds(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from) / time.Second)
}
