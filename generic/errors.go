/*
errors.go - Centralized error types for the attendance engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers distinguish "could not compute" (malformed input) from
  "computed, zero impact" by checking these with errors.Is / errors.As.

ERROR CATEGORIES:
  1. Input errors - Malformed punch times, inverted periods, bad policy
  2. Lookup errors - Worker or document not found
  3. Shift errors - A shift whose boundaries are out of order

USAGE:
    res, err := productivity.Calculate(worker, records, from, to, opts)
    var recErr *generic.MalformedRecordError
    if errors.As(err, &recErr) {
        // point the admin at recErr.Index
    }

SEE ALSO:
  - clock.go: Returns ParseError
  - productivity/calculator.go: Wraps ParseError into MalformedRecordError
  - api/handlers.go: Maps IsClientError / IsNotFound to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMalformedTime is returned when a wall-clock string cannot be parsed.
	ErrMalformedTime = errors.New("malformed time")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidShift is returned when a shift's boundaries are out of order.
	ErrInvalidShift = errors.New("invalid shift")

	// ErrInvalidPolicy is returned when a policy document fails validation.
	ErrInvalidPolicy = errors.New("invalid policy")

	// ErrInvalidInput is returned when an API request body fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrWorkerNotFound is returned when a referenced worker doesn't exist.
	ErrWorkerNotFound = errors.New("worker not found")

	// ErrEntityNotFound is returned when any other referenced record doesn't exist.
	ErrEntityNotFound = errors.New("entity not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ParseError reports a time string that could not be parsed.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed time %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrMalformedTime
}

// MalformedRecordError identifies the attendance record that stopped a
// calculation. Index is the position in the caller's input slice.
type MalformedRecordError struct {
	Index int
	Date  string
	Time  string
	Err   error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("attendance record %d (date %q, time %q): %v", e.Index, e.Date, e.Time, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// ShiftError names the shift and the boundary that is out of order.
type ShiftError struct {
	Shift  ShiftName
	Reason string
}

func (e *ShiftError) Error() string {
	return fmt.Sprintf("shift %q: %s", e.Shift, e.Reason)
}

func (e *ShiftError) Unwrap() error {
	return ErrInvalidShift
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMalformedTime) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidShift) ||
		errors.Is(err, ErrInvalidPolicy) ||
		errors.Is(err, ErrInvalidInput)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWorkerNotFound) ||
		errors.Is(err, ErrEntityNotFound)
}
