// Package clock abstracts wall-clock access so time-dependent engine logic
// can be driven deterministically in tests.
package clock

import (
	"sync"
	"time"
)

// Clock provides the current time to time-dependent components.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

// NewSystemClock creates a Clock backed by the system time.
func NewSystemClock() Clock {
	return SystemClock{}
}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FakeClock is a manually advanced Clock for deterministic tests.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a FakeClock starting at the given time.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{
		mu:  sync.Mutex{},
		now: start,
	}
}

// Now implements Clock.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// Set moves the clock to the given time.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = t
}
