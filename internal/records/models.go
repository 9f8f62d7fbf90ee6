package records

import (
	"fmt"
	"strings"
	"time"
)

// Record is the slice of a call record the console reads. The console never
// writes records; the engine's own state lives and dies with the session.
//
// Direction and the number fields feed display formatting only. EndedAt is
// consulted once, at attach, to detect a call that had already ended before
// the console was listening.
type Record struct {
	RecordID string `json:"record_id" db:"record_id"`

	Direction Direction `json:"direction" db:"direction"`

	FromNumber string `json:"from_number" db:"from_number"`
	ToNumber   string `json:"to_number" db:"to_number"`

	// CallRef is the toolkit's reference for the live call, used to address
	// control commands.
	CallRef string `json:"call_ref" db:"call_ref"`

	EndedAt *time.Time `json:"ended_at,omitempty" db:"ended_at"`
}

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// DisplayLine renders the record header the UI shows above the controls.
func (r Record) DisplayLine() string {
	switch r.Direction {
	case DirectionInbound:
		return fmt.Sprintf("Incoming call from %s", displayNumber(r.FromNumber))
	case DirectionOutbound:
		return fmt.Sprintf("Outgoing call to %s", displayNumber(r.ToNumber))
	default:
		return fmt.Sprintf("Call with %s", displayNumber(r.FromNumber))
	}
}

func displayNumber(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "anonymous") {
		return "unknown number"
	}
	return s
}
