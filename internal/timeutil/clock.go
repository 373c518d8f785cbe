// Package timeutil provides a testable abstraction over time operations.
package timeutil

import "time"

// Clock provides the current time. The results archive stamps runs through
// a Clock so tests can pin timestamps.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time { return time.Now() }

// FakeClock implements Clock with a fixed, manually advanced time.
type FakeClock struct {
	T time.Time
}

// Now returns the fake current time.
func (c *FakeClock) Now() time.Time { return c.T }

// Advance moves the fake time forward by d.
func (c *FakeClock) Advance(d time.Duration) { c.T = c.T.Add(d) }
