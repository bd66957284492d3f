/*
errors.go - Error types for the APR calculation

PURPOSE:
  All error types in one place. Callers match with errors.Is against the
  sentinels; the structured errors carry the offending values.

ERROR CATEGORIES:
  1. Input errors     - missing dates, empty advances, non-positive amounts
  2. Frequency errors - periods per year outside {2, 4, 12, 24, 52}
  3. Guard errors     - first due date implausibly far before the advance
  4. Solver errors    - iteration cap reached without converging

NOT AN ERROR:
  A flat present-value curve (A2 == A1) makes the solver return 0, and a
  negative result triggers one restart from a smaller guess. Both are part
  of normal operation and never reach the caller as errors.
*/
package regz

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is returned for malformed dates, amounts or empty collections.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidFrequency is returned when periods per year is not supported.
	ErrInvalidFrequency = errors.New("invalid payment frequency")

	// ErrLoopBound is returned when the first due date is more than
	// MaxDueDateLead days before the earliest advance.
	ErrLoopBound = errors.New("first due date too early compared to earliest advance")

	// ErrNoConvergence is returned when the secant iteration hits its cap or
	// the present value overflows.
	ErrNoConvergence = errors.New("apr did not converge")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InputError names the field that failed validation.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// FrequencyError reports the rejected periods-per-year value.
type FrequencyError struct {
	Frequency Frequency
}

func (e *FrequencyError) Error() string {
	return fmt.Sprintf("periods per year of %d isn't an accepted option", int(e.Frequency))
}

func (e *FrequencyError) Unwrap() error {
	return ErrInvalidFrequency
}

// LoopBoundError provides the dates the guard rejected.
type LoopBoundError struct {
	EarliestAdvance Date
	FirstPaymentDue Date
	GapDays         int
}

func (e *LoopBoundError) Error() string {
	return fmt.Sprintf("first due date %s is %d days before earliest advance %s (max %d)",
		e.FirstPaymentDue, e.GapDays, e.EarliestAdvance, MaxDueDateLead)
}

func (e *LoopBoundError) Unwrap() error {
	return ErrLoopBound
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to the caller's loan data.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidFrequency) ||
		errors.Is(err, ErrLoopBound)
}

func invalid(field, format string, args ...any) error {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
