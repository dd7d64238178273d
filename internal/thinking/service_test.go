package thinking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/decisiond/internal/session"
	"github.com/fyrsmithlabs/decisiond/internal/store"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(store.NewMemoryStore(), zap.NewNop())
	require.NoError(t, err)
	return svc
}

func startThinking(t *testing.T, svc Service, maxThoughts int) *session.Thinking {
	t.Helper()
	s, err := svc.Start(context.Background(), &StartRequest{
		Problem:     "How should the cache invalidation work?",
		MaxThoughts: maxThoughts,
	})
	require.NoError(t, err)
	return s
}

func addThought(t *testing.T, svc Service, sessionID, content string) *session.Thought {
	t.Helper()
	th, err := svc.AddThought(context.Background(), &AddThoughtRequest{
		SessionID: sessionID,
		Content:   content,
	})
	require.NoError(t, err)
	return th
}

func TestStart_CreatesActiveSession(t *testing.T) {
	svc := newTestService(t)
	s := startThinking(t, svc, 0)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, session.StatusActive, s.Status)
	assert.Empty(t, s.Thoughts)
}

func TestStart_RequiresProblem(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Start(context.Background(), &StartRequest{})
	var verr *session.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestAddThought_AppendsInOrder(t *testing.T) {
	svc := newTestService(t)
	s := startThinking(t, svc, 0)

	first := addThought(t, svc, s.ID, "The cache key must include the revision.")
	second := addThought(t, svc, s.ID, "TTL alone cannot catch same-second updates.")

	got, err := svc.Get(context.Background(), s.ID)
	require.NoError(t, err)
	require.Len(t, got.Thoughts, 2)
	assert.Equal(t, first.ID, got.Thoughts[0].ID)
	assert.Equal(t, second.ID, got.Thoughts[1].ID)
}

func TestAddThought_EnforcesCap(t *testing.T) {
	svc := newTestService(t)
	s := startThinking(t, svc, 2)

	addThought(t, svc, s.ID, "first")
	addThought(t, svc, s.ID, "second")

	_, err := svc.AddThought(context.Background(), &AddThoughtRequest{
		SessionID: s.ID,
		Content:   "one too many",
	})
	assert.ErrorIs(t, err, session.ErrThoughtLimit)
}

func TestAddThought_UnknownBranch(t *testing.T) {
	svc := newTestService(t)
	s := startThinking(t, svc, 0)

	_, err := svc.AddThought(context.Background(), &AddThoughtRequest{
		SessionID: s.ID,
		Content:   "on a branch that does not exist",
		BranchID:  "missing",
	})
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestReviseThought_StampsRevision(t *testing.T) {
	svc := newTestService(t)
	s := startThinking(t, svc, 0)
	th := addThought(t, svc, s.ID, "initial wording")

	revised, err := svc.ReviseThought(context.Background(), &ReviseThoughtRequest{
		SessionID: s.ID,
		ThoughtID: th.ID,
		Content:   "sharper wording",
	})
	require.NoError(t, err)
	assert.Equal(t, "sharper wording", revised.Content)
	assert.Equal(t, 1, revised.Revisions)
	assert.False(t, revised.RevisedAt.IsZero())

	revised, err = svc.ReviseThought(context.Background(), &ReviseThoughtRequest{
		SessionID: s.ID,
		ThoughtID: th.ID,
		Content:   "final wording",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, revised.Revisions)
}

func TestBranch_LinksThoughtsToParent(t *testing.T) {
	svc := newTestService(t)
	s := startThinking(t, svc, 0)
	parent := addThought(t, svc, s.ID, "what if writes go through a queue?")

	b, err := svc.Branch(context.Background(), &BranchRequest{
		SessionID:     s.ID,
		FromThoughtID: parent.ID,
		Name:          "queued writes",
	})
	require.NoError(t, err)
	assert.Equal(t, parent.ID, b.FromThoughtID)

	th, err := svc.AddThought(context.Background(), &AddThoughtRequest{
		SessionID: s.ID,
		Content:   "the queue adds latency but removes the race",
		BranchID:  b.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, parent.ID, th.ParentID)
	assert.Equal(t, b.ID, th.BranchID)
}

func TestBranch_UnknownParent(t *testing.T) {
	svc := newTestService(t)
	s := startThinking(t, svc, 0)

	_, err := svc.Branch(context.Background(), &BranchRequest{
		SessionID:     s.ID,
		FromThoughtID: "missing",
	})
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestProgress_SurfacesInsights(t *testing.T) {
	svc := newTestService(t)
	s := startThinking(t, svc, 0)

	addThought(t, svc, s.ID, "gathering background on the problem")
	addThought(t, svc, s.ID, "The key insight is that revisions invalidate the cache implicitly.")
	th := addThought(t, svc, s.ID, "needs a second pass")
	_, err := svc.ReviseThought(context.Background(), &ReviseThoughtRequest{
		SessionID: s.ID,
		ThoughtID: th.ID,
		Content:   "reworded after review",
	})
	require.NoError(t, err)

	report, err := svc.Progress(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, report.ThoughtCount)
	assert.Equal(t, 0, report.BranchCount)
	assert.Equal(t, 1, report.Revisions)
	require.Len(t, report.Insights, 1)
	assert.Contains(t, report.Insights[0], "key insight")
	assert.False(t, report.Concluded)
	assert.False(t, report.Overconfidence)
}

func TestConclude_CompletesSession(t *testing.T) {
	svc := newTestService(t)
	s := startThinking(t, svc, 0)
	for i := 0; i < 5; i++ {
		addThought(t, svc, s.ID, "working through the approach step by step")
	}

	concluded, err := svc.Conclude(context.Background(), &ConcludeRequest{
		SessionID:  s.ID,
		Conclusion: "Key the cache by session revision.",
	})
	require.NoError(t, err)
	assert.Equal(t, session.StatusCompleted, concluded.Status)

	_, err = svc.AddThought(context.Background(), &AddThoughtRequest{
		SessionID: s.ID,
		Content:   "afterthought",
	})
	assert.ErrorIs(t, err, session.ErrInvalidState)

	report, err := svc.Progress(context.Background(), s.ID)
	require.NoError(t, err)
	assert.True(t, report.Concluded)
	assert.False(t, report.Overconfidence)
}

func TestConclude_FlagsOverconfidence(t *testing.T) {
	svc := newTestService(t)
	s := startThinking(t, svc, 0)
	addThought(t, svc, s.ID, "barely any thinking happened")

	_, err := svc.Conclude(context.Background(), &ConcludeRequest{
		SessionID:  s.ID,
		Conclusion: "Done already.",
	})
	require.NoError(t, err)

	report, err := svc.Progress(context.Background(), s.ID)
	require.NoError(t, err)
	assert.True(t, report.Concluded)
	assert.True(t, report.Overconfidence)
}

func TestExtractInsight_Truncates(t *testing.T) {
	long := "I realize this matters: "
	for len(long) <= insightTruncateLen {
		long += "and the consequences keep unfolding "
	}

	insight, ok := extractInsight(long)
	require.True(t, ok)
	assert.LessOrEqual(t, len([]rune(insight)), insightTruncateLen+1)

	_, ok = extractInsight("nothing special here")
	assert.False(t, ok)
}
