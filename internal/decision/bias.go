package decision

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/fyrsmithlabs/decisiond/internal/session"
)

// Bias heuristic constants. The detectors are deterministic rules over
// the session structure, not learned models.
const (
	// dominantTypeShare flags confirmation bias when one criterion
	// type accounts for more than this share of all criteria.
	dominantTypeShare = 0.7

	// anchoringWeightRatio flags anchoring when the first criterion's
	// weight exceeds this multiple of the mean weight.
	anchoringWeightRatio = 1.5

	// minOptionsForCoverage is the option count below which the
	// availability heuristic fires.
	minOptionsForCoverage = 3

	// uniformLengthRatio flags availability bias when option
	// description lengths are unusually uniform (stddev below this
	// fraction of the mean length).
	uniformLengthRatio = 0.3

	severityConfirmation = 0.7
	severityAnchoring    = 0.6
	severityAvailability = 0.5
)

const (
	biasConfirmation = "confirmation"
	biasAnchoring    = "anchoring"
	biasAvailability = "availability"
)

var biasMitigations = map[string]string{
	biasConfirmation: "Add criteria of other types (cost, risk, feasibility) to balance the evaluation.",
	biasAnchoring:    "Re-derive criterion weights from scratch, or have a second reviewer weight them independently.",
	biasAvailability: "Brainstorm additional options and describe each in comparable depth before evaluating.",
}

// AnalyzeBias runs the heuristic bias detectors over a session
// snapshot. Pure read.
func (s *service) AnalyzeBias(ctx context.Context, req *AnalyzeBiasRequest) (*BiasReport, error) {
	ctx, span := s.tracer.Start(ctx, "decision.analyze_bias")
	defer span.End()

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	d, err := s.load(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	report := detectBias(d, req.IncludeMitigation)

	span.SetAttributes(
		attribute.String("session_id", d.ID),
		attribute.Int("flag_count", len(report.Flags)),
		attribute.Float64("bias_score", report.Score),
	)
	return report, nil
}

// detectBias is the pure rule set behind AnalyzeBias.
func detectBias(d *session.Decision, includeMitigation bool) *BiasReport {
	r := &BiasReport{
		SessionID: d.ID,
		Flags:     []BiasFlag{},
	}

	if flag, ok := detectConfirmation(d); ok {
		r.Flags = append(r.Flags, flag)
	}
	if flag, ok := detectAnchoring(d); ok {
		r.Flags = append(r.Flags, flag)
	}
	if flag, ok := detectAvailability(d); ok {
		r.Flags = append(r.Flags, flag)
	}

	if !includeMitigation {
		for i := range r.Flags {
			r.Flags[i].Mitigation = ""
		}
	}

	if len(r.Flags) > 0 {
		var sum float64
		for _, f := range r.Flags {
			sum += f.Severity
		}
		r.Score = sum / float64(len(r.Flags))
	}
	return r
}

// detectConfirmation fires when one criterion type dominates the set,
// suggesting the criteria were chosen to confirm a preference.
func detectConfirmation(d *session.Decision) (BiasFlag, bool) {
	if len(d.Criteria) == 0 {
		return BiasFlag{}, false
	}

	counts := make(map[session.CriterionType]int)
	for _, c := range d.Criteria {
		counts[c.Type]++
	}
	for t, n := range counts {
		share := float64(n) / float64(len(d.Criteria))
		if share > dominantTypeShare {
			return BiasFlag{
				Type:     biasConfirmation,
				Severity: severityConfirmation,
				Description: fmt.Sprintf(
					"%.0f%% of criteria are of type %q; the evaluation may be skewed toward one perspective",
					share*100, t),
				Mitigation: biasMitigations[biasConfirmation],
			}, true
		}
	}
	return BiasFlag{}, false
}

// detectAnchoring fires when the first criterion carries an outsized
// weight, suggesting it anchored the rest of the weighting.
func detectAnchoring(d *session.Decision) (BiasFlag, bool) {
	if len(d.Criteria) < 2 {
		return BiasFlag{}, false
	}

	mean := d.WeightSum() / float64(len(d.Criteria))
	if mean == 0 {
		return BiasFlag{}, false
	}

	first := d.Criteria[0]
	if first.Weight > anchoringWeightRatio*mean {
		return BiasFlag{
			Type:     biasAnchoring,
			Severity: severityAnchoring,
			Description: fmt.Sprintf(
				"first criterion %q carries weight %.2f, more than %.1fx the mean weight %.2f",
				first.Name, first.Weight, anchoringWeightRatio, mean),
			Mitigation: biasMitigations[biasAnchoring],
		}, true
	}
	return BiasFlag{}, false
}

// detectAvailability fires when too few options were considered, or
// when option descriptions are suspiciously uniform in depth.
func detectAvailability(d *session.Decision) (BiasFlag, bool) {
	if len(d.Options) == 0 {
		return BiasFlag{}, false
	}

	if len(d.Options) < minOptionsForCoverage {
		return BiasFlag{
			Type:     biasAvailability,
			Severity: severityAvailability,
			Description: fmt.Sprintf(
				"only %d option(s) considered; readily available choices may have crowded out better ones",
				len(d.Options)),
			Mitigation: biasMitigations[biasAvailability],
		}, true
	}

	lengths := make([]float64, len(d.Options))
	var mean float64
	for i, opt := range d.Options {
		lengths[i] = float64(len(opt.Description))
		mean += lengths[i]
	}
	mean /= float64(len(lengths))
	if mean == 0 {
		return BiasFlag{}, false
	}

	if stddev(lengths) < uniformLengthRatio*mean {
		return BiasFlag{
			Type:     biasAvailability,
			Severity: severityAvailability,
			Description: "option descriptions are unusually uniform in length; " +
				"options may not have been explored in genuine depth",
			Mitigation: biasMitigations[biasAvailability],
		}, true
	}
	return BiasFlag{}, false
}
