package mcp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/decisiond/internal/audit"
	"github.com/fyrsmithlabs/decisiond/internal/decision"
	"github.com/fyrsmithlabs/decisiond/internal/ratelimit"
	"github.com/fyrsmithlabs/decisiond/internal/session"
	"github.com/fyrsmithlabs/decisiond/internal/store"
	"github.com/fyrsmithlabs/decisiond/internal/thinking"
)

func newTestServices(t *testing.T) (decision.Service, thinking.Service) {
	t.Helper()
	sessions := store.NewMemoryStore()

	decisionSvc, err := decision.NewService(nil, sessions, nil, zap.NewNop())
	require.NoError(t, err)
	thinkingSvc, err := thinking.NewService(sessions, zap.NewNop())
	require.NoError(t, err)
	return decisionSvc, thinkingSvc
}

func TestNewServer_RequiresServices(t *testing.T) {
	decisionSvc, thinkingSvc := newTestServices(t)

	_, err := NewServer(nil, nil, thinkingSvc, nil, nil)
	assert.Error(t, err)

	_, err = NewServer(nil, decisionSvc, nil, nil, nil)
	assert.Error(t, err)
}

func TestNewServer_RegistersTools(t *testing.T) {
	decisionSvc, thinkingSvc := newTestServices(t)

	srv, err := NewServer(nil, decisionSvc, thinkingSvc, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, srv)
	assert.NoError(t, srv.Close())
}

func TestServer_BeginChargesLimiter(t *testing.T) {
	decisionSvc, thinkingSvc := newTestServices(t)

	limiter := ratelimit.New(&ratelimit.Config{
		RPS:           0.1,
		Burst:         1,
		SweepInterval: time.Hour,
		IdleTTL:       time.Hour,
	}, zap.NewNop())

	srv, err := NewServer(nil, decisionSvc, thinkingSvc, limiter, nil)
	require.NoError(t, err)
	defer srv.Close()

	finish, err := srv.begin(t.Context(), "get_session", "s1")
	require.NoError(t, err)
	finish(nil)

	// Second call within the same burst window is rejected.
	_, err = srv.begin(t.Context(), "get_session", "s1")
	assert.Error(t, err)

	// A different session key has its own bucket.
	finish, err = srv.begin(t.Context(), "get_session", "s2")
	require.NoError(t, err)
	finish(nil)
}

func TestServer_FetchSessionResolvesBothTypes(t *testing.T) {
	decisionSvc, thinkingSvc := newTestServices(t)

	srv, err := NewServer(nil, decisionSvc, thinkingSvc, nil, nil)
	require.NoError(t, err)
	defer srv.Close()

	d, err := decisionSvc.Start(t.Context(), &decision.StartRequest{Context: "pick a database"})
	require.NoError(t, err)
	th, err := thinkingSvc.Start(t.Context(), &thinking.StartRequest{Problem: "why is the cache cold"})
	require.NoError(t, err)

	// An id returned by list_sessions must be fetchable regardless of
	// its session type.
	sums, err := decisionSvc.List(t.Context(), &decision.ListRequest{Type: "thinking"})
	require.NoError(t, err)
	require.Len(t, sums, 1)
	require.Equal(t, th.ID, sums[0].ID)

	gotDec, gotThink, err := srv.fetchSession(t.Context(), sums[0].ID)
	require.NoError(t, err)
	assert.Nil(t, gotDec)
	require.NotNil(t, gotThink)
	assert.Equal(t, th.ID, gotThink.ID)
	assert.Equal(t, "why is the cache cold", gotThink.Problem)

	gotDec, gotThink, err = srv.fetchSession(t.Context(), d.ID)
	require.NoError(t, err)
	assert.Nil(t, gotThink)
	require.NotNil(t, gotDec)
	assert.Equal(t, d.ID, gotDec.ID)

	_, _, err = srv.fetchSession(t.Context(), "missing")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestServer_RecentActivity(t *testing.T) {
	decisionSvc, thinkingSvc := newTestServices(t)

	log := audit.NewLog(8, zap.NewNop())
	srv, err := NewServer(nil, decisionSvc, thinkingSvc, nil, log)
	require.NoError(t, err)
	defer srv.Close()

	finish, err := srv.begin(t.Context(), "start_decision", "s1")
	require.NoError(t, err)
	finish(nil)
	finish, err = srv.begin(t.Context(), "add_option", "s1")
	require.NoError(t, err)
	finish(session.ErrNotFound)

	recent := srv.recentActivity()
	require.Len(t, recent, 2)
	assert.Equal(t, "add_option", recent[0].Tool)
	assert.Equal(t, "error", recent[0].Outcome)
	assert.Equal(t, "start_decision", recent[1].Tool)
	assert.Equal(t, "ok", recent[1].Outcome)
}

func TestServer_RecentActivityWithoutAuditLog(t *testing.T) {
	decisionSvc, thinkingSvc := newTestServices(t)

	srv, err := NewServer(nil, decisionSvc, thinkingSvc, nil, nil)
	require.NoError(t, err)
	defer srv.Close()

	assert.Nil(t, srv.recentActivity())
}

func TestTextResult(t *testing.T) {
	res := textResult("session %s has %d options", "abc", 3)
	require.Len(t, res.Content, 1)
}
