package engine

import (
	"sync"
	"time"
)

// TickScheduler is the scheduled-task seam for the two 1 Hz display
// refreshers. Implementations must tolerate re-entrant Start (second call is
// a no-op while running) and stop exactly once per run on Stop.
type TickScheduler interface {
	// Start begins periodic callbacks. Returns false if already running.
	Start(fn func(now time.Time)) bool
	Stop()
}

// intervalScheduler drives a callback from a time.Ticker goroutine.
type intervalScheduler struct {
	interval time.Duration

	mu      sync.Mutex
	done    chan struct{}
	running bool
}

// NewIntervalScheduler returns a real-time scheduler at the given cadence.
func NewIntervalScheduler(interval time.Duration) TickScheduler {
	if interval <= 0 {
		interval = time.Second
	}
	return &intervalScheduler{interval: interval}
}

func (s *intervalScheduler) Start(fn func(now time.Time)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	s.done = make(chan struct{})

	go func(done chan struct{}) {
		t := time.NewTicker(s.interval)
		defer t.Stop()
		for {
			select {
			case now := <-t.C:
				fn(now)
			case <-done:
				return
			}
		}
	}(s.done)
	return true
}

func (s *intervalScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.done)
}
