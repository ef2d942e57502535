package models

import (
	dErrors "meterai/pkg/domain-errors"
)

// Status is the lifecycle stage of a stamp token. The lifecycle is forward
// only: Available → Paid → Bound, one step at a time, never reversed.
type Status string

const (
	StatusAvailable Status = "available"
	StatusPaid      Status = "paid"
	StatusBound     Status = "bound"
)

// validStatuses is the single source of truth for valid statuses.
var validStatuses = map[Status]bool{
	StatusAvailable: true,
	StatusPaid:      true,
	StatusBound:     true,
}

func (s Status) IsValid() bool {
	return validStatuses[s]
}

// CanTransitionTo enforces the single forward path. Bound is terminal.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusAvailable:
		return next == StatusPaid
	case StatusPaid:
		return next == StatusBound
	default:
		return false
	}
}

// ParseStatus constructs a Status from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseStatus(s string) (Status, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "status cannot be empty")
	}
	status := Status(s)
	if !status.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unsupported status %q", s)
	}
	return status, nil
}

// Statuses enumerates every lifecycle stage in order. Used by counters and
// the stats endpoint so the set is defined exactly once.
func Statuses() []Status {
	return []Status{StatusAvailable, StatusPaid, StatusBound}
}
