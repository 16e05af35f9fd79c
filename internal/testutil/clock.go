package testutil

import (
	"sync"
	"time"
)

// Epoch is the first time a new StepClock returns.
var Epoch = time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

// StepClock provides a thread-safe deterministic wall clock for tests.
//
// Each call to Now returns the previous value advanced by a fixed step, so
// timestamps stay distinct and reproducible across runs.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type StepClock struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	n     int64
}

// NewStepClock creates a clock starting at Epoch that advances by step.
//
// The first call to Now() returns Epoch.
func NewStepClock(step time.Duration) *StepClock {
	return &StepClock{start: Epoch, step: step}
}

// Now returns the next timestamp.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.start.Add(time.Duration(c.n) * c.step)
	c.n++
	return t
}

// Calls returns how many times Now has been called.
func (c *StepClock) Calls() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Reset rewinds the clock so the next Now() returns Epoch again.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}
