package decision

import (
	"context"
	"fmt"
	"math"

	"go.opentelemetry.io/otel/attribute"

	"github.com/fyrsmithlabs/decisiond/internal/session"
)

const (
	// alternativeMinScore is the weighted-score bar below which a
	// runner-up is not offered as an alternative.
	alternativeMinScore = 6.0

	// keyFactorThreshold marks a criterion as a key factor for the
	// winning option.
	keyFactorThreshold = 8.0

	// weakScoreThreshold marks a criterion as a risk for the winning
	// option.
	weakScoreThreshold = 3.0

	maxKeyFactors   = 3
	maxRisks        = 5
	maxAlternatives = 2

	// scoreRange normalizes dispersion and separation; scores live
	// in [0,10].
	scoreRange = 10.0
)

// Analyze derives ranking, confidence, key factors, and risks from the
// current session snapshot. It is a pure read over the session.
func (s *service) Analyze(ctx context.Context, req *AnalyzeRequest) (*Analysis, error) {
	ctx, span := s.tracer.Start(ctx, "decision.analyze")
	defer span.End()

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	d, err := s.load(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	a, err := analyzeSnapshot(d, req.IncludeAlternatives)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("session_id", d.ID),
		attribute.String("top_option", a.TopOption.Name),
		attribute.Float64("confidence", a.Confidence),
	)
	return a, nil
}

// analyzeSnapshot is the pure analysis core, shared by Analyze,
// Recommend, and Comprehensive.
func analyzeSnapshot(d *session.Decision, includeAlternatives bool) (*Analysis, error) {
	if len(d.Evaluations) == 0 {
		return nil, session.ErrNoEvaluations
	}

	ranking := rankOptions(d)
	top := ranking[0]
	winner, _ := d.OptionByID(top.OptionID)
	topEval, _ := d.EvaluationFor(top.OptionID)

	a := &Analysis{
		SessionID:  d.ID,
		TopOption:  top,
		Ranking:    ranking,
		Confidence: confidence(ranking),
		KeyFactors: keyFactors(d, topEval),
		Risks:      winnerRisks(d, winner, topEval),
		NextSteps:  nextSteps(winner),
	}

	if includeAlternatives {
		for _, r := range ranking[1:] {
			if len(a.Alternatives) >= maxAlternatives {
				break
			}
			if r.WeightedScore > alternativeMinScore {
				a.Alternatives = append(a.Alternatives,
					fmt.Sprintf("%s (Score: %.1f)", r.Name, r.WeightedScore))
			}
		}
	}

	return a, nil
}

// rankOptions orders evaluated options by weighted score, descending.
// Ties break toward the earlier evaluation; the sort is stable so the
// first-evaluated option keeps its place.
func rankOptions(d *session.Decision) []RankedOption {
	ranking := make([]RankedOption, 0, len(d.Evaluations))
	for i := range d.Evaluations {
		ev := &d.Evaluations[i]
		name := ev.OptionID
		if opt, ok := d.OptionByID(ev.OptionID); ok {
			name = opt.Name
		}
		ranking = append(ranking, RankedOption{
			OptionID:      ev.OptionID,
			Name:          name,
			OverallScore:  ev.OverallScore,
			WeightedScore: ev.WeightedScore,
		})
	}

	// Insertion sort keeps the ordering stable for equal scores.
	for i := 1; i < len(ranking); i++ {
		for j := i; j > 0 && ranking[j].WeightedScore > ranking[j-1].WeightedScore; j-- {
			ranking[j], ranking[j-1] = ranking[j-1], ranking[j]
		}
	}
	return ranking
}

// confidence blends two components, both normalized by the score range
// and clamped to [0,1]:
//
//   - inverse dispersion of weighted scores: a tight cluster means the
//     evaluations agree on the overall quality level;
//   - separation between the top and second-best weighted scores: a
//     wide lead is harder to overturn.
//
// With fewer than two evaluations there is nothing to compare, so the
// estimate defaults to 0.5.
func confidence(ranking []RankedOption) float64 {
	if len(ranking) < 2 {
		return 0.5
	}

	scores := make([]float64, len(ranking))
	for i, r := range ranking {
		scores[i] = r.WeightedScore
	}

	dispersion := clamp01(1 - stddev(scores)/scoreRange)
	separation := clamp01((scores[0] - scores[1]) / scoreRange)
	return (dispersion + separation) / 2
}

func stddev(xs []float64) float64 {
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	var variance float64
	for _, x := range xs {
		variance += (x - mean) * (x - mean)
	}
	variance /= float64(len(xs))
	return math.Sqrt(variance)
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

// keyFactors renders the winner's strongest criteria, highest first,
// capped at maxKeyFactors.
func keyFactors(d *session.Decision, eval *session.Evaluation) []string {
	type factor struct {
		text  string
		score float64
	}
	var factors []factor
	for _, sc := range eval.Scores {
		if sc.Value < keyFactorThreshold {
			continue
		}
		c, ok := d.CriterionByID(sc.CriterionID)
		if !ok {
			continue
		}
		reasoning := sc.Reasoning
		if reasoning == "" {
			reasoning = fmt.Sprintf("scored %.1f/10", sc.Value)
		}
		factors = append(factors, factor{
			text:  fmt.Sprintf("%s: %s", c.Name, reasoning),
			score: sc.Value,
		})
	}

	for i := 1; i < len(factors); i++ {
		for j := i; j > 0 && factors[j].score > factors[j-1].score; j-- {
			factors[j], factors[j-1] = factors[j-1], factors[j]
		}
	}

	out := make([]string, 0, maxKeyFactors)
	for _, f := range factors {
		if len(out) >= maxKeyFactors {
			break
		}
		out = append(out, f.text)
	}
	return out
}

// winnerRisks unions the winner's declared risks with any criterion it
// scored poorly on, capped at maxRisks.
func winnerRisks(d *session.Decision, winner *session.Option, eval *session.Evaluation) []string {
	var risks []string
	risks = append(risks, winner.Risks...)

	for _, sc := range eval.Scores {
		if sc.Value > weakScoreThreshold {
			continue
		}
		if c, ok := d.CriterionByID(sc.CriterionID); ok {
			risks = append(risks, fmt.Sprintf("Low score on %s (%.1f/10)", c.Name, sc.Value))
		}
	}

	if len(risks) > maxRisks {
		risks = risks[:maxRisks]
	}
	return risks
}

// nextSteps templates deterministic follow-ups from the winner's
// declared estimates.
func nextSteps(winner *session.Option) []string {
	steps := []string{
		fmt.Sprintf("Proceed with %s", winner.Name),
	}
	if winner.EstimatedTime != "" {
		steps = append(steps, fmt.Sprintf("Plan for an estimated duration of %s", winner.EstimatedTime))
	}
	if winner.EstimatedCost != "" {
		steps = append(steps, fmt.Sprintf("Budget for an estimated cost of %s", winner.EstimatedCost))
	}
	steps = append(steps,
		"Monitor progress against the evaluation criteria",
		"Review the decision after initial implementation",
	)
	return steps
}
