package engine

import "time"

// Hold accumulator. All helpers assume e.mu is held.

func (e *Engine) holdStartLocked(at time.Time) {
	if e.sess.Status != StatusConnected {
		e.debug.Appendf("hold ignored in status %s", e.sess.Status)
		return
	}
	if e.sess.Hold.IsOnHold {
		// Duplicate hold signal; the open session stands.
		e.debug.Append("hold ignored: already on hold")
		return
	}

	start := at
	e.sess.Hold.IsOnHold = true
	e.sess.Hold.CurrentHoldStart = &start
	e.holdTick.Start(e.onHoldTick)
	e.recomputeHoldDisplayLocked(at)
	e.debug.Appendf("hold %d started", len(e.sess.Hold.Sessions)+1)
}

func (e *Engine) holdEndLocked(at time.Time) {
	if !e.sess.Hold.IsOnHold {
		e.debug.Append("resume ignored: not on hold")
		return
	}
	e.closeHoldLocked(at)
	e.holdTick.Stop()
	e.recomputeHoldDisplayLocked(at)
}

// closeHoldLocked finishes the open hold interval and folds it into the
// total. Caller decides whether the display tick keeps running.
func (e *Engine) closeHoldLocked(at time.Time) {
	start := *e.sess.Hold.CurrentHoldStart
	duration := elapsedSeconds(start, at)

	s := HoldSession{
		SessionNumber:   len(e.sess.Hold.Sessions) + 1,
		StartTime:       start,
		EndTime:         at,
		DurationSeconds: duration,
	}
	e.sess.Hold.Sessions = append(e.sess.Hold.Sessions, s)
	e.sess.Hold.TotalHoldSeconds += duration
	e.sess.Hold.CurrentHoldStart = nil
	e.sess.Hold.IsOnHold = false

	e.debug.Appendf("hold %d ended after %ds (total %ds)",
		s.SessionNumber, duration, e.sess.Hold.TotalHoldSeconds)
}

func (e *Engine) resetHoldLocked() {
	e.holdTick.Stop()
	e.sess.Hold = HoldState{}
	e.displayHoldSeconds = 0
	e.holdSeverity = SeverityLow
}

// recomputeHoldDisplayLocked refreshes the displayed total, counting the
// open hold up to now, and re-derives the severity tier.
func (e *Engine) recomputeHoldDisplayLocked(now time.Time) {
	total := e.sess.Hold.TotalHoldSeconds
	if e.sess.Hold.CurrentHoldStart != nil {
		total += elapsedSeconds(*e.sess.Hold.CurrentHoldStart, now)
	}
	e.displayHoldSeconds = total
	e.holdSeverity = SeverityFor(total)
}
