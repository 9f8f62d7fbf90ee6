package toolkit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDiscoveryStopsOnFirstSuccess(t *testing.T) {
	probes := 0
	found := 0
	d := Discovery{
		Probe: func(ctx context.Context) error {
			probes++
			if probes < 3 {
				return errors.New("not yet")
			}
			return nil
		},
		Interval:    time.Millisecond,
		MaxAttempts: 10,
		OnFound:     func() { found++ },
	}

	d.Run(context.Background())

	if probes != 3 {
		t.Fatalf("expected polling to stop at success, got %d probes", probes)
	}
	if found != 1 {
		t.Fatalf("expected OnFound exactly once, got %d", found)
	}
}

func TestDiscoveryGivesUpAfterBudget(t *testing.T) {
	probes := 0
	d := Discovery{
		Probe:       func(ctx context.Context) error { probes++; return errors.New("down") },
		Interval:    time.Millisecond,
		MaxAttempts: 4,
		OnFound:     func() { t.Fatalf("must not report found") },
	}

	d.Run(context.Background())

	if probes != 4 {
		t.Fatalf("expected exactly 4 attempts, got %d", probes)
	}
}

func TestDiscoveryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	probes := 0
	d := Discovery{
		Probe: func(ctx context.Context) error {
			probes++
			cancel() // teardown mid-poll
			return errors.New("down")
		},
		Interval:    time.Hour, // would hang without cancellation
		MaxAttempts: 100,
	}

	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected Run to return on cancel")
	}
	if probes != 1 {
		t.Fatalf("expected 1 probe before cancel, got %d", probes)
	}
}

func TestDiscoveryNilProbeReturns(t *testing.T) {
	Discovery{}.Run(context.Background())
}
