package decision

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/decisiond/internal/session"
)

// Evaluate scores one option against the session's criteria.
//
// Scores bind to criteria by id, never by position. A full evaluation
// covers every criterion exactly once; re-evaluating an option replaces
// its prior evaluation wholesale (upsert keyed on option id).
func (s *service) Evaluate(ctx context.Context, req *EvaluateRequest) (*session.Evaluation, error) {
	ctx, span := s.tracer.Start(ctx, "decision.evaluate")
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
	if _, ok := d.OptionByID(req.OptionID); !ok {
		return nil, session.ErrNotFound
	}

	scores, err := s.bindScores(d, req.Scores)
	if err != nil {
		return nil, err
	}

	eval := session.Evaluation{
		OptionID:      req.OptionID,
		Scores:        scores,
		OverallScore:  overallScore(scores),
		WeightedScore: weightedScore(d, scores),
		Timestamp:     time.Now(),
	}

	replaced := false
	for i := range d.Evaluations {
		if d.Evaluations[i].OptionID == req.OptionID {
			d.Evaluations[i] = eval
			replaced = true
			break
		}
	}
	if !replaced {
		d.Evaluations = append(d.Evaluations, eval)
	}

	if d.Status == session.StatusActive {
		d.Status = session.StatusEvaluating
	}
	d.UpdatedAt = time.Now()

	if err := s.save(ctx, d); err != nil {
		return nil, err
	}

	if s.evaluateCounter != nil {
		s.evaluateCounter.Add(ctx, 1, metric.WithAttributes(attribute.Bool("replaced", replaced)))
	}
	s.logger.Info("evaluated option",
		zap.String("session_id", d.ID),
		zap.String("option_id", req.OptionID),
		zap.Float64("weighted_score", eval.WeightedScore),
		zap.Bool("replaced", replaced),
	)

	span.SetAttributes(
		attribute.String("session_id", d.ID),
		attribute.Float64("weighted_score", eval.WeightedScore),
	)
	return &eval, nil
}

// bindScores validates submitted scores against the session's criteria
// set and converts them to the stored form. All violations are
// accumulated so the caller sees the full list at once.
func (s *service) bindScores(d *session.Decision, inputs []ScoreInput) ([]session.Score, error) {
	verr := &session.ValidationError{}

	if len(inputs) != len(d.Criteria) {
		verr.Add("expected %d scores (one per criterion), got %d", len(d.Criteria), len(inputs))
	}

	seen := make(map[string]bool, len(inputs))
	scores := make([]session.Score, 0, len(inputs))
	for i, in := range inputs {
		c, ok := d.CriterionByID(in.CriterionID)
		if !ok {
			verr.Add("score %d references unknown criterion %q", i, in.CriterionID)
			continue
		}
		if seen[in.CriterionID] {
			verr.Add("criterion %q scored more than once", c.Name)
			continue
		}
		seen[in.CriterionID] = true

		if in.Score < 0 || in.Score > 10 {
			verr.Add("score for %q is %.1f, must be within [0,10]", c.Name, in.Score)
			continue
		}
		if in.Reasoning == "" {
			// Tolerated: lax callers omit reasoning.
			s.logger.Warn("score submitted without reasoning",
				zap.String("session_id", d.ID),
				zap.String("criterion", c.Name),
			)
		}

		scores = append(scores, session.Score{
			CriterionID: in.CriterionID,
			Value:       in.Score,
			Reasoning:   in.Reasoning,
		})
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return scores, nil
}

// overallScore is the unweighted mean of raw scores.
func overallScore(scores []session.Score) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, sc := range scores {
		sum += sc.Value
	}
	return sum / float64(len(scores))
}

// weightedScore is Σ(score·weight)/Σ(weight) over the criteria the
// scores bind to. Scores referencing criteria that have since been
// removed are skipped rather than failing the whole evaluation.
func weightedScore(d *session.Decision, scores []session.Score) float64 {
	var weightedSum, weightSum float64
	for _, sc := range scores {
		c, ok := d.CriterionByID(sc.CriterionID)
		if !ok {
			continue
		}
		weightedSum += sc.Value * c.Weight
		weightSum += c.Weight
	}
	if weightSum == 0 {
		return 0
	}
	return weightedSum / weightSum
}
