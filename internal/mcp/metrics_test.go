package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/decisiond/internal/session"
)

func TestCategorizeError(t *testing.T) {
	verr := &session.ValidationError{}
	verr.Add("weight out of range")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", verr, "validation_failed"},
		{"rate limited", &session.RateLimitError{RetryAfter: time.Second}, "rate_limited"},
		{"not found", fmt.Errorf("session x: %w", session.ErrNotFound), "not_found"},
		{"invalid state", session.ErrInvalidState, "invalid_state"},
		{"no evaluations", session.ErrNoEvaluations, "insufficient_data"},
		{"confidence", fmt.Errorf("gated: %w", session.ErrConfidenceTooLow), "confidence_too_low"},
		{"thought limit", session.ErrThoughtLimit, "thought_limit"},
		{"unknown", errors.New("disk on fire"), "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, categorizeError(tt.err))
		})
	}
}

func TestMetrics_TrackCompletes(t *testing.T) {
	m := NewMetrics(nil)

	// With the default noop meter provider this must still be safe to
	// call and to finish with or without an error.
	finish := m.Track(context.Background(), "start_decision")
	require.NotNil(t, finish)
	finish(nil)

	finish = m.Track(context.Background(), "evaluate_option")
	finish(session.ErrNotFound)
}
