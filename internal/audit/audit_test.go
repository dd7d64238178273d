package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_RecentNewestFirst(t *testing.T) {
	l := NewLog(8, nil)
	l.Record("start_decision", "s1", "ok", "")
	l.Record("add_criteria", "s1", "ok", "")
	l.Record("evaluate_option", "s1", "error", "score out of range")

	recent := l.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "evaluate_option", recent[0].Tool)
	assert.Equal(t, "error", recent[0].Outcome)
	assert.Equal(t, "add_criteria", recent[1].Tool)
}

func TestLog_WrapsAtCapacity(t *testing.T) {
	l := NewLog(3, nil)
	for _, tool := range []string{"a", "b", "c", "d", "e"} {
		l.Record(tool, "", "ok", "")
	}

	recent := l.Recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, "e", recent[0].Tool)
	assert.Equal(t, "d", recent[1].Tool)
	assert.Equal(t, "c", recent[2].Tool)
}

func TestLog_RecentBoundedBySize(t *testing.T) {
	l := NewLog(8, nil)
	l.Record("only", "", "ok", "")

	assert.Len(t, l.Recent(100), 1)
	assert.Empty(t, NewLog(8, nil).Recent(5))
}

func TestNewLog_DefaultCapacity(t *testing.T) {
	l := NewLog(0, nil)
	l.Record("tool", "", "ok", "")
	assert.Len(t, l.Recent(0), 1)
}
