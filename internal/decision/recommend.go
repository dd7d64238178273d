package decision

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/decisiond/internal/session"
)

// defaultMinConfidence gates recommendations when the caller does not
// supply a threshold.
const defaultMinConfidence = 0.3

// mitigationRule maps risk keywords to a mitigation template. The rule
// set is data so new mappings are one entry, not new code.
type mitigationRule struct {
	keywords []string
	template string
}

var mitigationRules = []mitigationRule{
	{
		keywords: []string{"cost", "budget", "expensive", "price"},
		template: "Establish a budget checkpoint before committing spend related to: %s",
	},
	{
		keywords: []string{"time", "schedule", "deadline", "delay"},
		template: "Track timeline milestones weekly to contain: %s",
	},
}

// genericMitigation covers risks no rule matches.
const genericMitigation = "Prepare a contingency plan for: %s"

// Recommend re-runs analysis, gates on the confidence threshold, and on
// success completes the session. The active → completed transition is
// irreversible; there is no reopen.
func (s *service) Recommend(ctx context.Context, req *RecommendRequest) (*Recommendation, error) {
	ctx, span := s.tracer.Start(ctx, "decision.recommend")
	defer span.End()

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	d, err := s.load(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if d.Status == session.StatusCompleted {
		return nil, session.ErrInvalidState
	}

	a, err := analyzeSnapshot(d, false)
	if err != nil {
		return nil, err
	}

	threshold := req.MinConfidence
	if threshold == 0 {
		threshold = defaultMinConfidence
	}
	if a.Confidence < threshold {
		// The session stays open so the caller can evaluate further
		// options or lower the bar.
		s.logger.Info("recommendation gated by confidence threshold",
			zap.String("session_id", d.ID),
			zap.Float64("confidence", a.Confidence),
			zap.Float64("threshold", threshold),
		)
		return nil, fmt.Errorf("confidence %.2f below threshold %.2f: %w",
			a.Confidence, threshold, session.ErrConfidenceTooLow)
	}

	rec := &Recommendation{
		SessionID:  d.ID,
		Option:     a.TopOption.Name,
		Score:      a.TopOption.WeightedScore,
		Confidence: a.Confidence,
		Reasoning:  recommendationReasoning(a),
		Mitigation: mitigations(a.Risks),
		NextSteps:  a.NextSteps,
	}

	d.Status = session.StatusCompleted
	d.Recommendation = rec.Option
	d.UpdatedAt = time.Now()
	if err := s.save(ctx, d); err != nil {
		return nil, err
	}

	if s.recommendCounter != nil {
		s.recommendCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("confidence_tier", confidenceTier(a.Confidence)),
		))
	}
	s.logger.Info("accepted recommendation",
		zap.String("session_id", d.ID),
		zap.String("option", rec.Option),
		zap.Float64("confidence", rec.Confidence),
	)

	span.SetAttributes(
		attribute.String("session_id", d.ID),
		attribute.String("option", rec.Option),
	)
	return rec, nil
}

func confidenceTier(c float64) string {
	switch {
	case c > 0.8:
		return "high"
	case c > 0.6:
		return "moderate"
	default:
		return "low"
	}
}

// recommendationReasoning composes the human-readable justification:
// winning score, key factors, and a confidence-tier phrase.
func recommendationReasoning(a *Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s leads with a weighted score of %.1f/10.",
		a.TopOption.Name, a.TopOption.WeightedScore)

	if len(a.KeyFactors) > 0 {
		b.WriteString(" Key factors: ")
		b.WriteString(strings.Join(a.KeyFactors, "; "))
		b.WriteString(".")
	}

	switch confidenceTier(a.Confidence) {
	case "high":
		fmt.Fprintf(&b, " Confidence in this recommendation is high (%.2f).", a.Confidence)
	case "moderate":
		fmt.Fprintf(&b, " Confidence in this recommendation is moderate (%.2f).", a.Confidence)
	default:
		fmt.Fprintf(&b, " Confidence is low (%.2f); consider gathering more evaluations before committing.", a.Confidence)
	}
	return b.String()
}

// mitigations maps each risk onto a mitigation strategy by keyword.
func mitigations(risks []string) []string {
	out := make([]string, 0, len(risks))
	for _, risk := range risks {
		out = append(out, mitigationFor(risk))
	}
	return out
}

func mitigationFor(risk string) string {
	lower := strings.ToLower(risk)
	for _, rule := range mitigationRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return fmt.Sprintf(rule.template, risk)
			}
		}
	}
	return fmt.Sprintf(genericMitigation, risk)
}
