package debuglog

import (
	"testing"
	"time"
)

func TestAppendNewestFirst(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	l := NewWithClock(10, func() time.Time { return now })

	l.Append("first")
	l.Append("second")

	got := l.Entries()
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Message != "second" || got[1].Message != "first" {
		t.Fatalf("expected newest first, got %q then %q", got[0].Message, got[1].Message)
	}
	if !got[0].At.Equal(now) {
		t.Fatalf("expected clock timestamp, got %v", got[0].At)
	}
}

func TestTruncatesAtCapacity(t *testing.T) {
	l := NewWithClock(3, nil)

	l.Append("a")
	l.Append("b")
	l.Append("c")
	l.Append("d")

	got := l.Entries()
	if len(got) != 3 {
		t.Fatalf("expected capacity 3, got %d", len(got))
	}
	if got[0].Message != "d" {
		t.Fatalf("expected newest retained, got %q", got[0].Message)
	}
	if got[2].Message != "b" {
		t.Fatalf("expected oldest entry dropped, got %q", got[2].Message)
	}
}

func TestNilLogIsSafe(t *testing.T) {
	var l *Log
	l.Append("ignored")
	l.Appendf("ignored %d", 1)
	if l.Len() != 0 {
		t.Fatalf("expected 0")
	}
	if l.Entries() != nil {
		t.Fatalf("expected nil entries")
	}
}

func TestAppendf(t *testing.T) {
	l := New()
	l.Appendf("event %s ignored (%s)", "hold", "already on hold")
	got := l.Entries()
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if got[0].Message != "event hold ignored (already on hold)" {
		t.Fatalf("unexpected message %q", got[0].Message)
	}
}
