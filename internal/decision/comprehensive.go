package decision

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/decisiond/internal/session"
)

// Comprehensive runs every analyzer over one snapshot and bundles the
// output. Results are memoized per session revision when a cache is
// configured; any mutation changes the revision key, so a stale report
// is never served. Sessions past their soft ttl bypass the cache so
// the time-dependent staleness warning is always recomputed.
func (s *service) Comprehensive(ctx context.Context, req *ComprehensiveRequest) (*ComprehensiveReport, error) {
	ctx, span := s.tracer.Start(ctx, "decision.comprehensive")
	defer span.End()

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	d, err := s.load(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	// The logic report's staleness warning depends on wall-clock time,
	// not on the revision key. A report memoized just before the ttl
	// boundary must not suppress it afterwards.
	stale := s.config.SessionTTL > 0 && d.Status != session.StatusCompleted &&
		time.Since(d.UpdatedAt) > s.config.SessionTTL

	key := revisionKey(d)
	if s.cache != nil && !stale {
		if cached, ok := s.cache.Get(key); ok {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return cached, nil
		}
	}

	report := &ComprehensiveReport{
		SessionID: d.ID,
		Logic:     validateLogic(d, false, s.config.SessionTTL),
		Bias:      detectBias(d, true),
		Risks:     assessRisks(d, true),
	}

	// Analysis needs at least one evaluation; its absence is part of
	// the report, not a failure of the whole call.
	a, err := analyzeSnapshot(d, req.IncludeAll)
	switch {
	case err == nil:
		report.Analysis = a
	case errors.Is(err, session.ErrNoEvaluations):
		s.logger.Debug("comprehensive analysis without evaluations",
			zap.String("session_id", d.ID))
	default:
		return nil, err
	}

	if req.IncludeAll {
		alts := make([]Alternative, len(archetypes))
		copy(alts, archetypes)
		report.Alternatives = alts
	}

	if s.cache != nil && !stale {
		s.cache.Add(key, report)
	}

	span.SetAttributes(
		attribute.String("session_id", d.ID),
		attribute.Bool("cache_hit", false),
	)
	return report, nil
}
