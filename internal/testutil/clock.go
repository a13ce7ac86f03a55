package testutil

import (
	"sync"
	"time"

	"reg-go/internal/registry"
)

// StubClock is a registry.Clock that only moves when told to. Stores stamp
// created, modified and log times from it, so tests can order entries.
type StubClock struct {
	mu  sync.Mutex
	now time.Time
}

var _ registry.Clock = (*StubClock)(nil)

func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// FixedClock starts at 2025-03-01 09:00:00 UTC.
func FixedClock() *StubClock {
	return NewStubClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
