package testutil

import (
	"fmt"
	"sync"
	"time"

	"tabtime/internal/tracker"
)

// FixedTime is the instant FixedClock starts at. Exports made at it are named
// productivity-data-2024-01-15.
var FixedTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// StubClock is a tracker.Clock that only moves when told to. Safe for
// concurrent use by the tracker loop and the queue worker.
type StubClock struct {
	mu  sync.Mutex
	now time.Time
}

var _ tracker.Clock = (*StubClock)(nil)

func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// FixedClock returns a StubClock set to FixedTime.
func FixedClock() *StubClock {
	return NewStubClock(FixedTime)
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d, as a tracked tab stays in view.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t.
func (c *StubClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// StubIDGenerator hands out session and request IDs "<prefix>-1",
// "<prefix>-2" and so on.
type StubIDGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter int
}

var _ tracker.IDGenerator = (*StubIDGenerator)(nil)

// NewStubIDGenerator returns IDs "id-1", "id-2", etc.
func NewStubIDGenerator() *StubIDGenerator {
	return NewPrefixedIDGenerator("id")
}

// NewPrefixedIDGenerator returns IDs starting with prefix, so sessions and
// requests can be told apart in one test.
func NewPrefixedIDGenerator(prefix string) *StubIDGenerator {
	return &StubIDGenerator{prefix: prefix}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}
