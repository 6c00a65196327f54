// Package clock provides the once-per-second tick source that drives a run's
// elapsed-time counter.
//
// A Clock is bound to a single run id. It is acquired when a run starts and
// must be released with Stop on every exit path of that run: win, loss,
// explicit exit, restart and session deletion. After Stop returns, the
// context passed to the tick callback is cancelled, so a callback that was
// already waiting on a lock can detect that it arrived too late.
//
// Usage:
//
//	c := clock.Start(ctx, state.RunID, time.Second, func(ctx context.Context, runID string) {
//		svc.Tick(ctx, sessionID, runID)
//	})
//	defer c.Stop()
package clock

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the tick period used for real play
const DefaultInterval = time.Second

// TickFunc is called once per interval with the run id the clock was started for
type TickFunc func(ctx context.Context, runID string)

// Clock delivers ticks for one run until stopped
type Clock struct {
	runID  string
	cancel context.CancelFunc
	ctx    context.Context
	done   chan struct{}
	once   sync.Once
}

// Start launches a goroutine that calls fn every interval until Stop is called
// or parent is cancelled
func Start(parent context.Context, runID string, interval time.Duration, fn TickFunc) *Clock {
	if interval <= 0 {
		interval = DefaultInterval
	}

	ctx, cancel := context.WithCancel(parent)
	c := &Clock{
		runID:  runID,
		cancel: cancel,
		ctx:    ctx,
		done:   make(chan struct{}),
	}

	go c.run(interval, fn)
	return c
}

func (c *Clock) run(interval time.Duration, fn TickFunc) {
	ticker := time.NewTicker(interval)
	defer func() {
		ticker.Stop()
		close(c.done)
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			// A tick and a stop can be ready together; stop wins
			if c.ctx.Err() != nil {
				return
			}
			fn(c.ctx, c.runID)
		}
	}
}

// Stop cancels the clock. It is safe to call more than once and on a nil Clock.
// It does not wait for an in-flight callback; use Wait for that.
func (c *Clock) Stop() {
	if c == nil {
		return
	}
	c.once.Do(c.cancel)
}

// Wait blocks until the clock goroutine has exited
func (c *Clock) Wait() {
	if c == nil {
		return
	}
	<-c.done
}

// Stopped reports whether Stop has been called or the parent context ended
func (c *Clock) Stopped() bool {
	if c == nil {
		return true
	}
	return c.ctx.Err() != nil
}

// RunID returns the run the clock was started for
func (c *Clock) RunID() string {
	if c == nil {
		return ""
	}
	return c.runID
}
