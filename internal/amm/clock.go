package amm

import (
	"context"
	"sync"
	"time"
)

// Clock reports the current transaction time in unix seconds.
type Clock interface {
	Now(ctx context.Context) (uint64, error)
}

// ClockFunc adapts a function to Clock.
type ClockFunc func(ctx context.Context) (uint64, error)

func (f ClockFunc) Now(ctx context.Context) (uint64, error) { return f(ctx) }

// SystemClock reads the local wall clock.
var SystemClock Clock = ClockFunc(func(context.Context) (uint64, error) {
	return uint64(time.Now().Unix()), nil
})

// ManualClock is a Clock whose time is set explicitly.
type ManualClock struct {
	mu  sync.Mutex
	now uint64
}

func NewManualClock(now uint64) *ManualClock {
	return &ManualClock{now: now}
}

func (c *ManualClock) Set(now uint64) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

func (c *ManualClock) Now(context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now, nil
}
