package testutil

import (
	"sync"
	"time"
)

// DeterministicClock is a thread-safe test clock that advances a fixed
// step on every reading.
//
// Handed to store.WithNow, it stamps every recorded run one step apart,
// so ordering assertions never depend on wall time. Reset allows the
// same scenario to run twice with identical stamps.
type DeterministicClock struct {
	mu   sync.Mutex
	base time.Time
	step time.Duration
	n    int64
}

// NewDeterministicClock creates a clock anchored at base.
//
// The first call to Now returns base+step.
func NewDeterministicClock(base time.Time, step time.Duration) *DeterministicClock {
	return &DeterministicClock{base: base, step: step}
}

// Now advances the clock one step and returns the new reading.
//
// Monotonic: readings never repeat and never decrease.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return c.base.Add(time.Duration(c.n) * c.step)
}

// Current returns the latest reading without advancing.
//
// Before the first call to Now it returns base.
func (c *DeterministicClock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.base.Add(time.Duration(c.n) * c.step)
}

// Reset rewinds the clock to base.
//
// After Reset, the next call to Now returns base+step again.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}
