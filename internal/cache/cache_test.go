package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/decisiond/internal/decision"
)

func TestReportCache_AddAndGet(t *testing.T) {
	c := New(&Config{Size: 4, TTL: time.Minute})

	report := &decision.ComprehensiveReport{SessionID: "s1"}
	c.Add("s1@rev1", report)

	got, ok := c.Get("s1@rev1")
	require.True(t, ok)
	assert.Same(t, report, got)

	_, ok = c.Get("s1@rev2")
	assert.False(t, ok)
}

func TestReportCache_EvictsAtCapacity(t *testing.T) {
	c := New(&Config{Size: 2, TTL: time.Minute})

	for i := 0; i < 3; i++ {
		key := fmt.Sprintf("s%d", i)
		c.Add(key, &decision.ComprehensiveReport{SessionID: key})
	}

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("s0")
	assert.False(t, ok, "oldest entry should have been evicted")
}

func TestReportCache_DefaultConfig(t *testing.T) {
	c := New(nil)
	c.Add("k", &decision.ComprehensiveReport{})
	_, ok := c.Get("k")
	assert.True(t, ok)
}
