package decision

import (
	"context"
	"fmt"
	"math"

	"go.opentelemetry.io/otel/attribute"

	"github.com/fyrsmithlabs/decisiond/internal/session"
)

const (
	// lowScoreRisk marks an evaluation as high risk when its weighted
	// score falls below this bar.
	lowScoreRisk = 4.0

	// weightDriftRisk flags a low risk when Σweights deviates from 1
	// by more than this amount.
	weightDriftRisk = 0.2
)

// Fixed probability/impact constants per risk level.
var riskConstants = map[RiskLevel]struct{ probability, impact float64 }{
	RiskHigh:   {0.7, 0.8},
	RiskMedium: {0.5, 0.5},
	RiskLow:    {0.3, 0.4},
}

// AssessRisks runs the rule-based risk assessment over a session
// snapshot. Pure read.
func (s *service) AssessRisks(ctx context.Context, req *AssessRisksRequest) (*RiskReport, error) {
	ctx, span := s.tracer.Start(ctx, "decision.assess_risks")
	defer span.End()

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	d, err := s.load(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	report := assessRisks(d, req.IncludeMitigation)

	span.SetAttributes(
		attribute.String("session_id", d.ID),
		attribute.Int("risk_count", len(report.Risks)),
	)
	return report, nil
}

// assessRisks is the pure rule set behind AssessRisks.
func assessRisks(d *session.Decision, includeMitigation bool) *RiskReport {
	r := &RiskReport{
		SessionID: d.ID,
		Risks:     []RiskEntry{},
	}

	add := func(level RiskLevel, description, mitigation string) {
		c := riskConstants[level]
		entry := RiskEntry{
			Level:       level,
			Description: description,
			Probability: c.probability,
			Impact:      c.impact,
		}
		if includeMitigation {
			entry.Mitigation = mitigation
		}
		r.Risks = append(r.Risks, entry)
	}

	// A weak evaluated option is the sharpest signal.
	for _, ev := range d.Evaluations {
		if ev.WeightedScore >= lowScoreRisk {
			continue
		}
		name := ev.OptionID
		if opt, ok := d.OptionByID(ev.OptionID); ok {
			name = opt.Name
		}
		add(RiskHigh,
			fmt.Sprintf("option %q scored %.1f/10 weighted; choosing it carries substantial downside", name, ev.WeightedScore),
			"Re-examine the weak criteria or remove the option from consideration.")
	}

	// Unevaluated options mean the comparison is incomplete.
	if len(d.Evaluations) < len(d.Options) {
		add(RiskMedium,
			fmt.Sprintf("%d of %d options are not yet evaluated; the ranking may be premature",
				len(d.Options)-len(d.Evaluations), len(d.Options)),
			"Evaluate every option before acting on the analysis.")
	}

	// Drifted weights distort every weighted score.
	if len(d.Criteria) > 0 {
		if drift := math.Abs(d.WeightSum() - 1); drift > weightDriftRisk {
			add(RiskLow,
				fmt.Sprintf("criteria weights sum to %.2f; weighted scores are skewed accordingly", d.WeightSum()),
				"Normalize criterion weights so they sum to 1.0.")
		}
	}

	return r
}
