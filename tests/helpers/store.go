// Package helpers holds fixtures shared by package tests.
package helpers

import (
	"sync"
	"testing"
	"time"

	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/store"
)

// NewTestSQLiteStore returns an in-memory store closed when the test ends.
func NewTestSQLiteStore(t *testing.T, opts ...store.Option) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:", opts...)
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

// Clock is a deterministic clock that advances by Step on every reading.
type Clock struct {
	mu   sync.Mutex
	cur  time.Time
	Step time.Duration
}

// NewClock starts a clock at start advancing one second per reading.
func NewClock(start time.Time) *Clock {
	return &Clock{cur: start, Step: time.Second}
}

// Now returns the current reading and advances the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.cur
	c.cur = c.cur.Add(c.Step)
	return t
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = t
}
