package reporting

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo keeps recorded outcomes in process memory. The console's
// reporting view covers the current server lifetime only.

type MemoryRepo struct {
	mu       sync.Mutex
	outcomes []CallOutcome
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Append(ctx context.Context, o CallOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, from, to time.Time) ([]CallOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CallOutcome, 0)
	for _, o := range r.outcomes {
		if !o.EndedAt.IsZero() {
			if o.EndedAt.Before(from) || !o.EndedAt.Before(to) {
				continue
			}
		}
		out = append(out, o)
	}
	return out, nil
}
