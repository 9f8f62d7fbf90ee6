package reporting

import "time"

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// CallOutcome is one finished call as observed by a console session.
// Outcomes are recorded when a call reaches its ended state and are
// never updated afterwards.

type CallOutcome struct {
	SessionID string `json:"session_id"`
	RecordID  string `json:"record_id"`
	Direction string `json:"direction,omitempty"`

	DurationSeconds  int    `json:"duration_seconds"`
	HoldCount        int    `json:"hold_count"`
	HoldTotalSeconds int    `json:"hold_total_seconds"`
	HoldSeverity     string `json:"hold_severity,omitempty"`

	EndedAt time.Time `json:"ended_at"`
}

// SummaryRequest requests aggregated call metrics over a time range.

type SummaryRequest struct {
	Range TimeRange `json:"range"`
}

type Summary struct {
	TotalCalls             int `json:"total_calls"`
	TotalDurationSeconds   int `json:"total_duration_seconds"`
	AverageDurationSeconds int `json:"average_duration_seconds"`

	CallsWithHolds          int `json:"calls_with_holds"`
	TotalHoldSeconds        int `json:"total_hold_seconds"`
	AverageHoldSeconds      int `json:"average_hold_seconds"`
	HighSeverityHoldCalls   int `json:"high_severity_hold_calls"`
	MediumSeverityHoldCalls int `json:"medium_severity_hold_calls"`
}
