package records

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDisplayLine(t *testing.T) {
	in := Record{Direction: DirectionInbound, FromNumber: "+15551234567"}
	if got := in.DisplayLine(); got != "Incoming call from +15551234567" {
		t.Fatalf("unexpected line %q", got)
	}

	out := Record{Direction: DirectionOutbound, ToNumber: "+15557654321"}
	if got := out.DisplayLine(); got != "Outgoing call to +15557654321" {
		t.Fatalf("unexpected line %q", got)
	}

	anon := Record{Direction: DirectionInbound, FromNumber: "anonymous"}
	if got := anon.DisplayLine(); got != "Incoming call from unknown number" {
		t.Fatalf("unexpected line %q", got)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	endedAt := time.Unix(1700000000, 0).UTC()
	s.Put(Record{RecordID: "r1", Direction: DirectionInbound, FromNumber: "+1", CallRef: "c1", EndedAt: &endedAt})

	got, err := s.Get(context.Background(), "r1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.CallRef != "c1" || got.EndedAt == nil || !got.EndedAt.Equal(endedAt) {
		t.Fatalf("unexpected record %+v", got)
	}

	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Get(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty id")
	}
}
