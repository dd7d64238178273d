package decision

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

// archetypes are placeholder alternatives offered when a session's own
// options look exhausted. The table is fixed; focus areas are appended
// to a copy, never to these entries.
var archetypes = []Alternative{
	{
		Name:        "Hybrid Approach",
		Description: "Combine the strongest elements of the top-ranked options into a single plan.",
		Pros:        []string{"Captures complementary strengths", "Reduces single-option risk"},
		Cons:        []string{"More coordination overhead", "May dilute the focus of either option"},
		Feasibility: 7.0,
		Innovation:  6.0,
	},
	{
		Name:        "Phased Implementation",
		Description: "Adopt the leading option incrementally, with explicit checkpoints to revisit the decision.",
		Pros:        []string{"Limits upfront commitment", "Produces evidence before full rollout"},
		Cons:        []string{"Slower to full value", "Risk of stalling between phases"},
		Feasibility: 8.0,
		Innovation:  5.0,
	},
	{
		Name:        "Innovative Solution",
		Description: "Step outside the current option set and prototype an unconventional approach.",
		Pros:        []string{"May uncover a better solution space", "Challenges hidden assumptions"},
		Cons:        []string{"Unproven and higher risk", "Requires exploration budget"},
		Feasibility: 5.0,
		Innovation:  9.0,
	},
}

// GenerateAlternatives returns archetype alternatives for a session.
// The session must exist, but its content does not shape the table
// beyond the optional focus-area annotation.
func (s *service) GenerateAlternatives(ctx context.Context, req *GenerateAlternativesRequest) ([]Alternative, error) {
	ctx, span := s.tracer.Start(ctx, "decision.generate_alternatives")
	defer span.End()

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	d, err := s.load(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	limit := req.MaxAlternatives
	if limit == 0 || limit > len(archetypes) {
		limit = len(archetypes)
	}

	out := make([]Alternative, limit)
	copy(out, archetypes[:limit])

	if len(req.FocusAreas) > 0 {
		focus := strings.Join(req.FocusAreas, ", ")
		for i := range out {
			out[i].Description = fmt.Sprintf("%s Focus areas: %s.", out[i].Description, focus)
		}
	}

	span.SetAttributes(
		attribute.String("session_id", d.ID),
		attribute.Int("alternative_count", len(out)),
	)
	return out, nil
}
