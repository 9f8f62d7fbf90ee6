package toolkit

import (
	"context"
	"log/slog"
	"time"
)

// Discovery probes the toolkit on a fixed interval until it answers, the
// attempt budget runs out, or the session is torn down. It never loops
// unbounded: a toolkit that stays silent leaves the console in the
// controls-hidden state rather than keeping a background task alive.
type Discovery struct {
	Probe       func(ctx context.Context) error
	Interval    time.Duration
	MaxAttempts int
	Logger      *slog.Logger

	// OnFound fires once, on the first successful probe.
	OnFound func()
}

const (
	defaultDiscoveryInterval = 2 * time.Second
	defaultDiscoveryAttempts = 15
)

// Run blocks until the toolkit is found, attempts are exhausted, or ctx is
// cancelled. Callers run it in its own goroutine per session.
func (d Discovery) Run(ctx context.Context) {
	if d.Probe == nil {
		return
	}
	interval := d.Interval
	if interval <= 0 {
		interval = defaultDiscoveryInterval
	}
	attempts := d.MaxAttempts
	if attempts <= 0 {
		attempts = defaultDiscoveryAttempts
	}
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := d.Probe(ctx); err == nil {
			log.Debug("toolkit discovered", "attempt", attempt)
			if d.OnFound != nil {
				d.OnFound()
			}
			return
		} else {
			log.Debug("toolkit probe failed", "attempt", attempt, "err", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
	log.Warn("toolkit not found, giving up", "attempts", attempts)
}
