package decision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/decisiond/internal/session"
)

func TestRecommend_CompletesSession(t *testing.T) {
	svc := newTestService(t)
	d := startSession(t, svc)
	a := addOption(t, svc, d.ID, "Alpha")
	b := addOption(t, svc, d.ID, "Beta")
	d, err := svc.Get(context.Background(), d.ID)
	require.NoError(t, err)

	evaluate(t, svc, d, a.ID, 9, 9, 9)
	evaluate(t, svc, d, b.ID, 4, 4, 4)

	rec, err := svc.Recommend(context.Background(), &RecommendRequest{SessionID: d.ID})
	require.NoError(t, err)
	assert.Equal(t, "Alpha", rec.Option)
	assert.InDelta(t, 9.0, rec.Score, 1e-9)
	assert.NotEmpty(t, rec.Reasoning)
	assert.NotEmpty(t, rec.NextSteps)

	d, err = svc.Get(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusCompleted, d.Status)
	assert.Equal(t, "Alpha", d.Recommendation)
}

func TestRecommend_GatedByConfidence(t *testing.T) {
	svc := newTestService(t)
	d := startSession(t, svc)
	a := addOption(t, svc, d.ID, "Alpha")
	b := addOption(t, svc, d.ID, "Beta")
	d, err := svc.Get(context.Background(), d.ID)
	require.NoError(t, err)

	// Near-identical scores: no separation, so confidence hovers
	// around 0.5 and cannot clear a 0.9 bar.
	evaluate(t, svc, d, a.ID, 7, 7, 7)
	evaluate(t, svc, d, b.ID, 7, 7, 6.9)

	_, err = svc.Recommend(context.Background(), &RecommendRequest{
		SessionID:     d.ID,
		MinConfidence: 0.9,
	})
	require.ErrorIs(t, err, session.ErrConfidenceTooLow)

	// The gate must leave the session open for further evaluation.
	d, err = svc.Get(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusEvaluating, d.Status)
	assert.Empty(t, d.Recommendation)

	// A lower bar accepts the same snapshot.
	rec, err := svc.Recommend(context.Background(), &RecommendRequest{
		SessionID:     d.ID,
		MinConfidence: 0.4,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alpha", rec.Option)
}

func TestRecommend_CompletedSessionRejected(t *testing.T) {
	svc := newTestService(t)
	d := startSession(t, svc)
	a := addOption(t, svc, d.ID, "Alpha")
	d, err := svc.Get(context.Background(), d.ID)
	require.NoError(t, err)
	evaluate(t, svc, d, a.ID, 9, 9, 9)

	_, err = svc.Recommend(context.Background(), &RecommendRequest{SessionID: d.ID})
	require.NoError(t, err)

	_, err = svc.Recommend(context.Background(), &RecommendRequest{SessionID: d.ID})
	assert.ErrorIs(t, err, session.ErrInvalidState)
}

func TestRecommend_NoEvaluations(t *testing.T) {
	svc := newTestService(t)
	d := startSession(t, svc)
	addOption(t, svc, d.ID, "Alpha")

	_, err := svc.Recommend(context.Background(), &RecommendRequest{SessionID: d.ID})
	assert.ErrorIs(t, err, session.ErrNoEvaluations)
}

func TestConfidenceTier(t *testing.T) {
	assert.Equal(t, "high", confidenceTier(0.9))
	assert.Equal(t, "moderate", confidenceTier(0.7))
	assert.Equal(t, "low", confidenceTier(0.6))
	assert.Equal(t, "low", confidenceTier(0.1))
}

func TestMitigationFor_KeywordRouting(t *testing.T) {
	tests := []struct {
		risk string
		want string
	}{
		{"Budget overrun on licensing", "budget checkpoint"},
		{"Schedule slip in phase two", "timeline milestones"},
		{"Vendor lock-in", "contingency plan"},
	}
	for _, tt := range tests {
		got := mitigationFor(tt.risk)
		assert.Contains(t, got, tt.want, "risk %q", tt.risk)
		assert.Contains(t, got, tt.risk)
	}
}
