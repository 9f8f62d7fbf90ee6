package debuglog

import (
	"fmt"
	"sync"
	"time"
)

// DefaultCap is how many entries a log retains before dropping the oldest.
const DefaultCap = 50

// Log is a bounded, newest-first ring of timestamped diagnostic lines.
//
// It is a side channel only: nothing in the engine may branch on its
// contents, and a full or failed append must never surface to callers.
type Log struct {
	mu      sync.Mutex
	cap     int
	clock   func() time.Time
	entries []Entry
}

type Entry struct {
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}

func New() *Log {
	return &Log{cap: DefaultCap, clock: time.Now}
}

// NewWithClock is for tests that need deterministic timestamps.
func NewWithClock(capacity int, clock func() time.Time) *Log {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	if clock == nil {
		clock = time.Now
	}
	return &Log{cap: capacity, clock: clock}
}

// Append records a line, newest first, dropping the oldest past capacity.
func (l *Log) Append(message string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	e := Entry{At: l.clock(), Message: message}
	l.entries = append([]Entry{e}, l.entries...)
	if len(l.entries) > l.cap {
		l.entries = l.entries[:l.cap]
	}
}

// Appendf is Append with fmt.Sprintf formatting.
func (l *Log) Appendf(format string, args ...any) {
	l.Append(fmt.Sprintf(format, args...))
}

// Entries returns a copy of the retained entries, newest first.
func (l *Log) Entries() []Entry {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len reports how many entries are retained.
func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
