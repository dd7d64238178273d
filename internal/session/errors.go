package session

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors shared across services. Tool handlers map these onto
// the MCP error envelope; none are retried automatically.
var (
	// ErrNotFound indicates a missing session, option, or thought.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState indicates an operation on a completed or
	// otherwise inactive session.
	ErrInvalidState = errors.New("session is not active")

	// ErrNoEvaluations indicates analysis was requested before any
	// option was evaluated.
	ErrNoEvaluations = errors.New("no evaluations to analyze")

	// ErrConfidenceTooLow indicates a recommendation was gated by the
	// caller's minimum-confidence threshold.
	ErrConfidenceTooLow = errors.New("confidence below threshold")

	// ErrThoughtLimit indicates the session's thought cap was reached.
	ErrThoughtLimit = errors.New("thought limit reached")
)

// ValidationError accumulates every input violation found in one call,
// so callers see the complete list in a single round trip.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// Add records a violation.
func (e *ValidationError) Add(format string, args ...any) {
	e.Violations = append(e.Violations, fmt.Sprintf(format, args...))
}

// OrNil returns the error if any violations were recorded, nil otherwise.
func (e *ValidationError) OrNil() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}

// RateLimitError is advisory: the caller should back off and retry
// after the hinted delay. Nothing is queued on the server side.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter.Round(time.Millisecond))
}
