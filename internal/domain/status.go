package domain

import (
	"errors"
	"fmt"
)

// Status is the lifecycle state of a single test case within a run.
type Status string

const (
	StatusNotRun  Status = "not-run"
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
)

// ErrInvalidTransition is returned when a status change skips or reverses a lifecycle step.
var ErrInvalidTransition = errors.New("invalid status transition")

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusPassed || s == StatusFailed
}

// Transition returns the next status, or an error if moving from s to next is not allowed.
// Allowed: not-run -> running, running -> passed, running -> failed.
func (s Status) Transition(next Status) (Status, error) {
	switch {
	case s == StatusNotRun && next == StatusRunning:
	case s == StatusRunning && (next == StatusPassed || next == StatusFailed):
	default:
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
	}
	return next, nil
}
