package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrValidation marks bad input shape or range. Never retried.
	ErrValidation = errors.New("validation error")
	// ErrInvalidCycleHours is a validation error for cycle hours outside [0, 70].
	ErrInvalidCycleHours = errors.New("invalid cycle hours")
	// ErrLocationUnresolvable marks a distance lookup failure. Callers may retry.
	ErrLocationUnresolvable = errors.New("location unresolvable")
	// ErrUnsplittableLeg marks a route the scheduler cannot plan automatically.
	ErrUnsplittableLeg = errors.New("route not automatically plannable")
	// ErrComplianceViolation means the validator rejected a generated schedule.
	ErrComplianceViolation = errors.New("compliance violation detected")
)

// ValidationError describes one rejected input field.
type ValidationError struct {
	Field  string
	Reason string
	kind   error
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NewInvalidCycleHoursError reports cycle hours outside the allowed range.
func NewInvalidCycleHoursError(hours float64) *ValidationError {
	return &ValidationError{
		Field:  "current_cycle_hours",
		Reason: fmt.Sprintf("must be between 0 and 70, got %v", hours),
		kind:   ErrInvalidCycleHours,
	}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() []error {
	if e.kind != nil {
		return []error{ErrValidation, e.kind}
	}
	return []error{ErrValidation}
}

// LocationUnresolvableError wraps a distance provider failure for one origin/destination pair.
type LocationUnresolvableError struct {
	Origin      string
	Destination string
	Err         error
}

func (e *LocationUnresolvableError) Error() string {
	return fmt.Sprintf("could not resolve %q -> %q: %v", e.Origin, e.Destination, e.Err)
}

func (e *LocationUnresolvableError) Unwrap() []error {
	return []error{ErrLocationUnresolvable, e.Err}
}

// UnsplittableLegError reports the leg the scheduler could not fit into the HOS rules.
// LegIndex is -1 when the trip cannot start at all.
type UnsplittableLegError struct {
	LegIndex    int
	Origin      string
	Destination string
	Reason      string
}

func (e *UnsplittableLegError) Error() string {
	if e.LegIndex < 0 {
		return fmt.Sprintf("%v: %s", ErrUnsplittableLeg, e.Reason)
	}
	return fmt.Sprintf("%v: leg %d %q -> %q: %s", ErrUnsplittableLeg, e.LegIndex+1, e.Origin, e.Destination, e.Reason)
}

func (e *UnsplittableLegError) Unwrap() error { return ErrUnsplittableLeg }

// Rule names an HOS limit checked by the compliance validator.
type Rule string

const (
	RuleContinuity   Rule = "continuity"
	RuleBreak        Rule = "30_minute_break"
	RuleDrivingLimit Rule = "11_hour_driving"
	RuleDutyWindow   Rule = "14_hour_window"
	RuleCycleLimit   Rule = "70_hour_cycle"
)

// Violation is one broken rule at a point in the interval sequence.
type Violation struct {
	Rule     Rule
	At       time.Time
	Interval int
	Detail   string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s at %s (interval %d): %s", v.Rule, v.At.Format(time.RFC3339), v.Interval, v.Detail)
}

// ComplianceViolationError carries the validator verdict for a non-compliant schedule.
// It signals a scheduler defect and is fatal to the request.
type ComplianceViolationError struct {
	Violations []Violation
}

func (e *ComplianceViolationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("%v: %s", ErrComplianceViolation, strings.Join(parts, "; "))
}

func (e *ComplianceViolationError) Unwrap() error { return ErrComplianceViolation }
