package reporting

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts outcome storage for reporting.
//
// Implementations should treat outcomes as immutable once appended.

type Repository interface {
	Append(ctx context.Context, o CallOutcome) error
	List(ctx context.Context, from, to time.Time) ([]CallOutcome, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

// Record stores one finished call. Callers treat this as best-effort;
// a failed append never blocks call teardown.
func (s *Service) Record(ctx context.Context, o CallOutcome) error {
	if s == nil || s.repo == nil {
		return errors.New("reporting: repository not configured")
	}
	if o.SessionID == "" {
		return ErrInvalidRequest
	}
	if o.EndedAt.IsZero() {
		o.EndedAt = time.Now().UTC()
	}
	return s.repo.Append(ctx, o)
}

func (s *Service) Summary(ctx context.Context, req SummaryRequest) (Summary, error) {
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return Summary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return Summary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.List(ctx, req.Range.From, req.Range.To)
	if err != nil {
		return Summary{}, err
	}

	var out Summary
	for _, o := range rows {
		out.TotalCalls++
		out.TotalDurationSeconds += o.DurationSeconds
		if o.HoldCount > 0 {
			out.CallsWithHolds++
			out.TotalHoldSeconds += o.HoldTotalSeconds
		}
		switch o.HoldSeverity {
		case "high":
			out.HighSeverityHoldCalls++
		case "medium":
			out.MediumSeverityHoldCalls++
		}
	}
	if out.TotalCalls > 0 {
		out.AverageDurationSeconds = out.TotalDurationSeconds / out.TotalCalls
	}
	if out.CallsWithHolds > 0 {
		out.AverageHoldSeconds = out.TotalHoldSeconds / out.CallsWithHolds
	}
	return out, nil
}
