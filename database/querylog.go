package database

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Statement is one executed SQL statement with its bound values inlined.
type Statement struct {
	SQL      string
	Rows     int64
	Duration time.Duration
	Err      error
}

// QueryLog keeps the most recent statements executed while it is enabled.
// It is safe for concurrent use.
type QueryLog struct {
	mu      sync.Mutex
	enabled bool
	limit   int
	entries []Statement
}

// NewQueryLog creates a disabled log holding at most limit statements.
func NewQueryLog(limit int) *QueryLog {
	if limit <= 0 {
		limit = 100
	}
	return &QueryLog{limit: limit}
}

// Enable starts recording.
func (q *QueryLog) Enable() {
	q.mu.Lock()
	q.enabled = true
	q.mu.Unlock()
}

// Disable stops recording. Recorded statements are kept.
func (q *QueryLog) Disable() {
	q.mu.Lock()
	q.enabled = false
	q.mu.Unlock()
}

// Enabled reports whether statements are being recorded.
func (q *QueryLog) Enabled() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.enabled
}

// Reset drops every recorded statement.
func (q *QueryLog) Reset() {
	q.mu.Lock()
	q.entries = nil
	q.mu.Unlock()
}

// Record appends s when the log is enabled, evicting the oldest entry once
// the limit is reached.
func (q *QueryLog) Record(s Statement) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.enabled {
		return
	}
	if len(q.entries) >= q.limit {
		q.entries = slices.Delete(q.entries, 0, len(q.entries)-q.limit+1)
	}
	q.entries = append(q.entries, s)
}

// Statements returns the recorded statements, oldest first.
func (q *QueryLog) Statements() []Statement {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.entries)
}

// Len returns the number of recorded statements.
func (q *QueryLog) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// String lists the statements newest first, numbered from 1.
func (q *QueryLog) String() string {
	entries := q.Statements()
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	for i := len(entries) - 1; i >= 0; i-- {
		s := entries[i]
		fmt.Fprintf(&b, "%d. %s", len(entries)-i, s.SQL)
		if s.Err != nil {
			fmt.Fprintf(&b, " -- error: %v", s.Err)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
