package core

import "time"

// Clock reports monotonic seconds since an arbitrary epoch.
type Clock interface {
	Seconds() float64
}

// MonotonicClock measures wall time from its creation.
type MonotonicClock struct {
	start time.Time
}

// NewMonotonicClock starts a clock at zero.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

// Seconds implements Clock.
func (c *MonotonicClock) Seconds() float64 {
	return time.Since(c.start).Seconds()
}

// ManualClock only moves when told to. Headless runs use it to feed a
// fixed frame rate regardless of how long the work takes.
type ManualClock struct {
	now float64
}

// NewManualClock creates a clock stopped at zero.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// Advance moves the clock forward by d seconds.
func (c *ManualClock) Advance(d float64) {
	c.now += d
}

// Seconds implements Clock.
func (c *ManualClock) Seconds() float64 {
	return c.now
}
