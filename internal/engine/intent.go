package engine

import "strings"

// Intent is a canonical, disambiguated signal derived from a raw toolkit
// event name.
type Intent string

const (
	IntentHoldStart     Intent = "hold_start"
	IntentHoldEnd       Intent = "hold_end"
	IntentMute          Intent = "mute"
	IntentUnmute        Intent = "unmute"
	IntentCallStarted   Intent = "call_started"
	IntentCallConnected Intent = "call_connected"
	IntentCallEnded     Intent = "call_ended"
)

// Raw toolkit event names as delivered on the wire.
const (
	EventHold          = "hold"
	EventResume        = "resume"
	EventMute          = "mute"
	EventUnmute        = "unmute"
	EventCallStarted   = "callstarted"
	EventCallConnected = "callconnected"
	EventCallEnded     = "callended"
	EventHangup        = "hangup"
)

// Normalize maps a raw toolkit event name to an intent. The detail payload
// carries no directional information, so it takes no part in the decision.
//
// The toolkit emits "resume" both when entering and when leaving hold; the
// current hold flag is the only way to tell the two apart. If currently on
// hold, resume means leave it; otherwise it means enter it. This is a
// heuristic around an unreliable upstream signal, not a protocol decode.
func Normalize(rawEventName string, onHold bool) (Intent, bool) {
	switch strings.ToLower(strings.TrimSpace(rawEventName)) {
	case EventHold:
		return IntentHoldStart, true
	case EventResume:
		if onHold {
			return IntentHoldEnd, true
		}
		return IntentHoldStart, true
	case EventMute:
		return IntentMute, true
	case EventUnmute:
		return IntentUnmute, true
	case EventCallStarted:
		return IntentCallStarted, true
	case EventCallConnected:
		return IntentCallConnected, true
	case EventCallEnded, EventHangup:
		return IntentCallEnded, true
	default:
		return "", false
	}
}
