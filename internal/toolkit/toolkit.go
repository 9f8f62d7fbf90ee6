package toolkit

import (
	"context"
	"encoding/json"
	"time"
)

// Commander is the toolkit-agnostic command surface used by the console.
//
// Rules:
//   - No toolkit wire details outside this package.
//   - The console never assumes a command succeeded until the confirming
//     event arrives, except for results that declare no event will follow.
//   - A rejection is non-fatal; it surfaces as a user-visible notification
//     and leaves local state unchanged.
type Commander interface {
	Name() string
	HealthCheck(ctx context.Context) error

	Hold(ctx context.Context, callRef string) (CommandResult, error)
	Resume(ctx context.Context, callRef string) (CommandResult, error)
	Mute(ctx context.Context, callRef string) (CommandResult, error)
	Unmute(ctx context.Context, callRef string) (CommandResult, error)
	EndCall(ctx context.Context, callRef string) (CommandResult, error)
}

// CommandResult is the toolkit's answer to a control command.
type CommandResult struct {
	Accepted bool `json:"accepted"`

	// EventWillFollow reports whether the toolkit will confirm this command
	// with an event. When false the toolkit acknowledged synchronously and
	// no event is ever coming, so the caller applies the local fallback.
	EventWillFollow bool `json:"event_will_follow"`

	Detail string `json:"detail,omitempty"`
}

// Command names against the toolkit wire.
const (
	CommandHold    = "hold"
	CommandResume  = "resume"
	CommandMute    = "mute"
	CommandUnmute  = "unmute"
	CommandEndCall = "endcall"
)

// RawEvent is one named toolkit notification as delivered. Detail is a
// loosely-typed payload the engine logs but never parses for state.
type RawEvent struct {
	Name       string          `json:"name"`
	Detail     json.RawMessage `json:"detail,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}
