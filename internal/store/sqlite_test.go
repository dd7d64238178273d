package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Second)
	rec := record("s1", "decision", "active", now)
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, "decision", got.Type)
	assert.Equal(t, rec.Data, got.Data)
	assert.True(t, got.CreatedAt.Equal(now))
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	s := newSQLiteStore(t)

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_UpsertPreservesCreatedAt(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	created := time.Now().Truncate(time.Second).Add(-time.Hour)
	rec := record("s1", "decision", "active", created)
	require.NoError(t, s.Save(ctx, rec))

	rec.Status = "completed"
	rec.UpdatedAt = time.Now().Truncate(time.Second)
	rec.CreatedAt = rec.UpdatedAt // must be ignored by the upsert
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)
	assert.True(t, got.CreatedAt.Equal(created))
}

func TestSQLiteStore_ListFiltersAndOrders(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	base := time.Now().Truncate(time.Second)

	require.NoError(t, s.Save(ctx, record("old", "decision", "active", base.Add(-2*time.Hour))))
	require.NoError(t, s.Save(ctx, record("new", "thinking", "active", base)))

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "new", all[0].ID)

	thinking, err := s.List(ctx, Filter{Type: "thinking"})
	require.NoError(t, err)
	require.Len(t, thinking, 1)
	assert.Equal(t, "new", thinking[0].ID)

	none, err := s.List(ctx, Filter{Type: "decision", Status: "completed"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteStore_Delete(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, record("s1", "decision", "active", time.Now())))
	require.NoError(t, s.Delete(ctx, "s1"))

	_, err := s.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}
