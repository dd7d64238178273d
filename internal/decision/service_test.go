package decision

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/decisiond/internal/session"
	"github.com/fyrsmithlabs/decisiond/internal/store"
)

// ===== TEST FIXTURES =====

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(nil, store.NewMemoryStore(), nil, zap.NewNop())
	require.NoError(t, err)
	return svc
}

// startSession creates a session with the standard three-criteria setup:
// performance 0.5, cost 0.3, usability 0.2.
func startSession(t *testing.T, svc Service) *session.Decision {
	t.Helper()
	ctx := context.Background()

	d, err := svc.Start(ctx, &StartRequest{Context: "Choose a deployment platform"})
	require.NoError(t, err)

	d, err = svc.AddCriteria(ctx, &AddCriteriaRequest{
		SessionID: d.ID,
		Criteria: []CriterionInput{
			{Name: "Performance", Weight: 0.5, Type: "benefit"},
			{Name: "Cost", Weight: 0.3, Type: "cost"},
			{Name: "Usability", Weight: 0.2, Type: "benefit"},
		},
	})
	require.NoError(t, err)
	require.Len(t, d.Criteria, 3)
	return d
}

func addOption(t *testing.T, svc Service, sessionID, name string) *session.Option {
	t.Helper()
	d, err := svc.AddOption(context.Background(), &AddOptionRequest{
		SessionID: sessionID,
		Name:      name,
	})
	require.NoError(t, err)
	return &d.Options[len(d.Options)-1]
}

// evaluate scores an option with one value per criterion, in the order
// the criteria were added.
func evaluate(t *testing.T, svc Service, d *session.Decision, optionID string, values ...float64) *session.Evaluation {
	t.Helper()
	require.Len(t, values, len(d.Criteria))

	scores := make([]ScoreInput, len(values))
	for i, v := range values {
		scores[i] = ScoreInput{
			CriterionID: d.Criteria[i].ID,
			Score:       v,
			Reasoning:   "scored in test setup",
		}
	}
	ev, err := svc.Evaluate(context.Background(), &EvaluateRequest{
		SessionID: d.ID,
		OptionID:  optionID,
		Scores:    scores,
	})
	require.NoError(t, err)
	return ev
}

// ===== LIFECYCLE =====

func TestStart_CreatesActiveSession(t *testing.T) {
	svc := newTestService(t)

	d, err := svc.Start(context.Background(), &StartRequest{
		Context:     "Choose a database",
		Description: "Replacing the legacy store",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, session.StatusActive, d.Status)
	assert.Empty(t, d.Criteria)
	assert.Empty(t, d.Options)
}

func TestStart_RequiresContext(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Start(context.Background(), &StartRequest{})
	var verr *session.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestGet_UnknownSession(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestAddCriteria_RejectsDuplicateNames(t *testing.T) {
	svc := newTestService(t)
	d := startSession(t, svc)

	_, err := svc.AddCriteria(context.Background(), &AddCriteriaRequest{
		SessionID: d.ID,
		Criteria: []CriterionInput{
			// Case-insensitive clash with the existing "Performance".
			{Name: "performance", Weight: 0.1, Type: "benefit"},
		},
	})
	var verr *session.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Violations[0], "duplicate criterion name")
}

func TestAddCriteria_RejectsUnknownType(t *testing.T) {
	svc := newTestService(t)
	d := startSession(t, svc)

	_, err := svc.AddCriteria(context.Background(), &AddCriteriaRequest{
		SessionID: d.ID,
		Criteria: []CriterionInput{
			{Name: "Vibes", Weight: 0.1, Type: "gut-feeling"},
		},
	})
	var verr *session.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestList_FiltersByStatus(t *testing.T) {
	svc := newTestService(t)
	startSession(t, svc)
	d2 := startSession(t, svc)
	opt := addOption(t, svc, d2.ID, "Only option")
	d2, err := svc.Get(context.Background(), d2.ID)
	require.NoError(t, err)
	evaluate(t, svc, d2, opt.ID, 8, 6, 4)

	sums, err := svc.List(context.Background(), &ListRequest{Status: "evaluating"})
	require.NoError(t, err)
	require.Len(t, sums, 1)
	assert.Equal(t, d2.ID, sums[0].ID)

	all, err := svc.List(context.Background(), &ListRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// ===== MUTATION GUARDS =====

func TestCompletedSession_RejectsMutation(t *testing.T) {
	svc := newTestService(t)
	d := startSession(t, svc)
	a := addOption(t, svc, d.ID, "Alpha")
	addOption(t, svc, d.ID, "Beta")
	d, err := svc.Get(context.Background(), d.ID)
	require.NoError(t, err)

	evaluate(t, svc, d, a.ID, 9, 8, 9)
	_, err = svc.Recommend(context.Background(), &RecommendRequest{SessionID: d.ID})
	require.NoError(t, err)

	_, err = svc.AddOption(context.Background(), &AddOptionRequest{
		SessionID: d.ID,
		Name:      "Latecomer",
	})
	assert.ErrorIs(t, err, session.ErrInvalidState)

	_, err = svc.AddCriteria(context.Background(), &AddCriteriaRequest{
		SessionID: d.ID,
		Criteria:  []CriterionInput{{Name: "New", Weight: 0.1, Type: "benefit"}},
	})
	assert.ErrorIs(t, err, session.ErrInvalidState)
}

func TestValidationError_AccumulatesAllViolations(t *testing.T) {
	svc := newTestService(t)
	d := startSession(t, svc)
	opt := addOption(t, svc, d.ID, "Alpha")
	d, err := svc.Get(context.Background(), d.ID)
	require.NoError(t, err)

	// Wrong count, an unknown criterion, and an out-of-range value,
	// all reported in one pass.
	_, err = svc.Evaluate(context.Background(), &EvaluateRequest{
		SessionID: d.ID,
		OptionID:  opt.ID,
		Scores: []ScoreInput{
			{CriterionID: "bogus", Score: 5},
			{CriterionID: d.Criteria[0].ID, Score: 15},
		},
	})
	var verr *session.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.GreaterOrEqual(t, len(verr.Violations), 3)
}

func TestRevisionKey_ChangesOnUpdate(t *testing.T) {
	svc := newTestService(t)
	d := startSession(t, svc)
	before := revisionKey(d)

	opt := addOption(t, svc, d.ID, "Alpha")
	d2, err := svc.Get(context.Background(), d.ID)
	require.NoError(t, err)
	evaluate(t, svc, d2, opt.ID, 8, 6, 4)

	after, err := svc.Get(context.Background(), d.ID)
	require.NoError(t, err)
	assert.NotEqual(t, before, revisionKey(after))
}

func TestNewService_RequiresStore(t *testing.T) {
	_, err := NewService(nil, nil, nil, zap.NewNop())
	require.Error(t, err)
	assert.False(t, errors.Is(err, session.ErrNotFound))
}
