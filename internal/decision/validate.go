package decision

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/fyrsmithlabs/decisiond/internal/session"
)

const (
	// weightSumTolerance bounds how far Σweights may drift from 1.0
	// before the validator warns.
	weightSumTolerance = 0.1

	// shortReasoningLen is the minimum reasoning length before a
	// warning is raised.
	shortReasoningLen = 10

	errorPenalty   = 0.2
	warningPenalty = 0.05
)

// ValidateLogic runs every logic rule over the session snapshot and
// accumulates all findings rather than failing fast. Pure read.
func (s *service) ValidateLogic(ctx context.Context, req *ValidateLogicRequest) (*LogicReport, error) {
	ctx, span := s.tracer.Start(ctx, "decision.validate_logic")
	defer span.End()

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	d, err := s.load(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	report := validateLogic(d, req.StrictMode, s.config.SessionTTL)

	span.SetAttributes(
		attribute.String("session_id", d.ID),
		attribute.Bool("is_valid", report.IsValid),
		attribute.Float64("consistency", report.Consistency),
	)
	return report, nil
}

// validateLogic is the pure rule set behind ValidateLogic. A ttl of
// zero disables the staleness check.
func validateLogic(d *session.Decision, strict bool, ttl time.Duration) *LogicReport {
	r := &LogicReport{
		SessionID:   d.ID,
		Errors:      []string{},
		Warnings:    []string{},
		Suggestions: []string{},
	}

	// Weight sum should be approximately 1.
	if sum := d.WeightSum(); len(d.Criteria) > 0 && (sum < 1-weightSumTolerance || sum > 1+weightSumTolerance) {
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("criteria weights sum to %.2f, not 1.0", sum))
	}

	// A comparison needs at least two of each.
	if len(d.Criteria) < 2 {
		r.Errors = append(r.Errors,
			fmt.Sprintf("at least 2 criteria are required, found %d", len(d.Criteria)))
	}
	if len(d.Options) < 2 {
		r.Errors = append(r.Errors,
			fmt.Sprintf("at least 2 options are required, found %d", len(d.Options)))
	}

	// Criterion names must be unique, case-insensitive.
	seen := make(map[string]string, len(d.Criteria))
	for _, c := range d.Criteria {
		key := strings.ToLower(c.Name)
		if prev, dup := seen[key]; dup {
			r.Errors = append(r.Errors,
				fmt.Sprintf("duplicate criterion name %q (conflicts with %q)", c.Name, prev))
			continue
		}
		seen[key] = c.Name
	}

	// Every option needs exactly one complete evaluation.
	for _, opt := range d.Options {
		ev, ok := d.EvaluationFor(opt.ID)
		if !ok {
			r.Errors = append(r.Errors,
				fmt.Sprintf("option %q has no evaluation", opt.Name))
			continue
		}
		if len(ev.Scores) != len(d.Criteria) {
			r.Errors = append(r.Errors,
				fmt.Sprintf("option %q has %d scores, expected %d (one per criterion)",
					opt.Name, len(ev.Scores), len(d.Criteria)))
		}
	}

	// Score range and evidence checks.
	var scoreSum float64
	var scoreCount int
	for _, ev := range d.Evaluations {
		optName := ev.OptionID
		if opt, ok := d.OptionByID(ev.OptionID); ok {
			optName = opt.Name
		}
		for _, sc := range ev.Scores {
			scoreSum += sc.Value
			scoreCount++
			if sc.Value < 0 || sc.Value > 10 {
				r.Errors = append(r.Errors,
					fmt.Sprintf("option %q has score %.1f outside [0,10]", optName, sc.Value))
			}
			if len(sc.Reasoning) < shortReasoningLen {
				r.Warnings = append(r.Warnings,
					fmt.Sprintf("option %q has a score with little or no reasoning", optName))
			}
		}
	}

	// Stale sessions get flagged, never deleted. The evidence behind
	// old scores decays even when the structure stays valid.
	if ttl > 0 && d.Status != session.StatusCompleted && time.Since(d.UpdatedAt) > ttl {
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("session has not been updated in over %s; scores may be stale", ttl))
	}

	// A session-wide mean near either extreme hints at skewed scoring.
	if scoreCount > 0 {
		mean := scoreSum / float64(scoreCount)
		if mean < 3 {
			r.Suggestions = append(r.Suggestions,
				fmt.Sprintf("mean score %.1f is very low; options may be under-scored or the set too weak", mean))
		} else if mean > 8 {
			r.Suggestions = append(r.Suggestions,
				fmt.Sprintf("mean score %.1f is very high; criteria may not discriminate between options", mean))
		}
	}

	r.Consistency = consistencyScore(len(r.Errors), len(r.Warnings))
	r.IsValid = len(r.Errors) == 0
	if strict && len(r.Warnings) > 0 {
		r.IsValid = false
	}
	return r
}

func consistencyScore(errs, warns int) float64 {
	c := 1.0 - errorPenalty*float64(errs) - warningPenalty*float64(warns)
	if c < 0 {
		return 0
	}
	return c
}
