package decision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/decisiond/internal/session"
)

func TestEvaluate_WeightedScore(t *testing.T) {
	svc := newTestService(t)
	d := startSession(t, svc)
	opt := addOption(t, svc, d.ID, "Alpha")
	d, err := svc.Get(context.Background(), d.ID)
	require.NoError(t, err)

	// 8*0.5 + 6*0.3 + 4*0.2 = 6.6 weighted; (8+6+4)/3 = 6.0 overall.
	ev := evaluate(t, svc, d, opt.ID, 8, 6, 4)
	assert.InDelta(t, 6.6, ev.WeightedScore, 1e-9)
	assert.InDelta(t, 6.0, ev.OverallScore, 1e-9)
}

func TestEvaluate_TransitionsToEvaluating(t *testing.T) {
	svc := newTestService(t)
	d := startSession(t, svc)
	opt := addOption(t, svc, d.ID, "Alpha")
	d, err := svc.Get(context.Background(), d.ID)
	require.NoError(t, err)

	evaluate(t, svc, d, opt.ID, 5, 5, 5)

	d, err = svc.Get(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusEvaluating, d.Status)
}

func TestEvaluate_ReplacesPriorEvaluation(t *testing.T) {
	svc := newTestService(t)
	d := startSession(t, svc)
	opt := addOption(t, svc, d.ID, "Alpha")
	d, err := svc.Get(context.Background(), d.ID)
	require.NoError(t, err)

	evaluate(t, svc, d, opt.ID, 2, 2, 2)
	ev := evaluate(t, svc, d, opt.ID, 9, 9, 9)
	assert.InDelta(t, 9.0, ev.WeightedScore, 1e-9)

	d, err = svc.Get(context.Background(), d.ID)
	require.NoError(t, err)
	require.Len(t, d.Evaluations, 1)
	assert.InDelta(t, 9.0, d.Evaluations[0].WeightedScore, 1e-9)
}

func TestEvaluate_ScoresBindByCriterionID(t *testing.T) {
	svc := newTestService(t)
	d := startSession(t, svc)
	opt := addOption(t, svc, d.ID, "Alpha")
	d, err := svc.Get(context.Background(), d.ID)
	require.NoError(t, err)

	// Submit in reverse order; binding is by id, not position.
	ev, err := svc.Evaluate(context.Background(), &EvaluateRequest{
		SessionID: d.ID,
		OptionID:  opt.ID,
		Scores: []ScoreInput{
			{CriterionID: d.Criteria[2].ID, Score: 4, Reasoning: "usability"},
			{CriterionID: d.Criteria[1].ID, Score: 6, Reasoning: "cost"},
			{CriterionID: d.Criteria[0].ID, Score: 8, Reasoning: "performance"},
		},
	})
	require.NoError(t, err)
	assert.InDelta(t, 6.6, ev.WeightedScore, 1e-9)
}

func TestEvaluate_RejectsDuplicateCriterion(t *testing.T) {
	svc := newTestService(t)
	d := startSession(t, svc)
	opt := addOption(t, svc, d.ID, "Alpha")
	d, err := svc.Get(context.Background(), d.ID)
	require.NoError(t, err)

	_, err = svc.Evaluate(context.Background(), &EvaluateRequest{
		SessionID: d.ID,
		OptionID:  opt.ID,
		Scores: []ScoreInput{
			{CriterionID: d.Criteria[0].ID, Score: 8},
			{CriterionID: d.Criteria[0].ID, Score: 7},
			{CriterionID: d.Criteria[1].ID, Score: 6},
		},
	})
	var verr *session.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestEvaluate_UnknownOption(t *testing.T) {
	svc := newTestService(t)
	d := startSession(t, svc)

	_, err := svc.Evaluate(context.Background(), &EvaluateRequest{
		SessionID: d.ID,
		OptionID:  "missing",
		Scores:    []ScoreInput{{CriterionID: d.Criteria[0].ID, Score: 5}},
	})
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestWeightedScore_SkipsRemovedCriteria(t *testing.T) {
	d := &session.Decision{
		Criteria: []session.Criterion{
			{ID: "c1", Name: "Kept", Weight: 0.5},
		},
	}
	scores := []session.Score{
		{CriterionID: "c1", Value: 8},
		{CriterionID: "gone", Value: 2},
	}
	assert.InDelta(t, 8.0, weightedScore(d, scores), 1e-9)
}

func TestWeightedScore_ZeroWeights(t *testing.T) {
	d := &session.Decision{
		Criteria: []session.Criterion{
			{ID: "c1", Name: "Weightless", Weight: 0},
		},
	}
	scores := []session.Score{{CriterionID: "c1", Value: 8}}
	assert.Zero(t, weightedScore(d, scores))
}

func TestOverallScore_Empty(t *testing.T) {
	assert.Zero(t, overallScore(nil))
}
