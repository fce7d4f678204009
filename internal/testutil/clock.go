package testutil

import (
	"strconv"
	"sync"
	"time"
)

// StubClock is a manually advanced clock. Time only moves when a test
// calls Advance, so expiry windows can be crossed deterministically.
type StubClock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewStubClock creates a StubClock set to the given time.
func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// FixedClock returns a StubClock set to 2025-03-09 14:00:00 UTC, the
// epoch the fixtures share.
func FixedClock() *StubClock {
	return NewStubClock(time.Date(2025, 3, 9, 14, 0, 0, 0, time.UTC))
}

func (c *StubClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// StubIDGenerator hands out sequential IDs ("id-1", "id-2", ...) so
// records created in order are identifiable in assertions.
type StubIDGenerator struct {
	mu      sync.Mutex
	counter int
}

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return "id-" + strconv.Itoa(g.counter)
}
