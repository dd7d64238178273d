// Package audit records tool invocations in a fixed-size ring.
//
// The log is advisory observability, not durable compliance storage:
// entries are held in memory, oldest first out, and also emitted
// through the structured logger.
package audit

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Entry is one recorded tool invocation.
type Entry struct {
	Time      time.Time `json:"time"`
	Tool      string    `json:"tool"`
	SessionID string    `json:"session_id,omitempty"`
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
}

// Log is a fixed-capacity in-memory audit ring.
type Log struct {
	logger *zap.Logger

	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
}

// NewLog creates an audit log holding up to capacity entries.
func NewLog(capacity int, logger *zap.Logger) *Log {
	if capacity <= 0 {
		capacity = 1024
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{
		logger:  logger,
		entries: make([]Entry, capacity),
	}
}

// Record appends an entry, evicting the oldest when full.
func (l *Log) Record(tool, sessionID, outcome, detail string) {
	e := Entry{
		Time:      time.Now(),
		Tool:      tool,
		SessionID: sessionID,
		Outcome:   outcome,
		Detail:    detail,
	}

	l.mu.Lock()
	l.entries[l.next] = e
	l.next = (l.next + 1) % len(l.entries)
	if l.next == 0 {
		l.full = true
	}
	l.mu.Unlock()

	l.logger.Debug("tool invocation",
		zap.String("tool", tool),
		zap.String("session_id", sessionID),
		zap.String("outcome", outcome),
	)
}

// Recent returns up to n entries, newest first.
func (l *Log) Recent(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	size := l.next
	if l.full {
		size = len(l.entries)
	}
	if n <= 0 || n > size {
		n = size
	}

	out := make([]Entry, 0, n)
	for i := 1; i <= n; i++ {
		idx := (l.next - i + len(l.entries)) % len(l.entries)
		out = append(out, l.entries[idx])
	}
	return out
}
