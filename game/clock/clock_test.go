package clock

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestClock_TicksUntilStopped(t *testing.T) {
	var ticks atomic.Int32
	seen := make(chan string, 16)

	c := Start(context.Background(), "run-1", 5*time.Millisecond, func(ctx context.Context, runID string) {
		ticks.Add(1)
		select {
		case seen <- runID:
		default:
		}
	})

	select {
	case runID := <-seen:
		if runID != "run-1" {
			t.Errorf("Expected run id run-1, got %s", runID)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected at least one tick")
	}

	c.Stop()
	c.Wait()
	stoppedAt := ticks.Load()

	time.Sleep(30 * time.Millisecond)
	if got := ticks.Load(); got != stoppedAt {
		t.Errorf("Expected no ticks after stop, got %d more", got-stoppedAt)
	}
	if !c.Stopped() {
		t.Error("Expected clock to report stopped")
	}
}

func TestClock_StopIsIdempotent(t *testing.T) {
	c := Start(context.Background(), "run", time.Hour, func(context.Context, string) {})

	c.Stop()
	c.Stop()
	c.Wait()

	var nilClock *Clock
	nilClock.Stop()
	nilClock.Wait()
	if !nilClock.Stopped() {
		t.Error("Expected nil clock to report stopped")
	}
	if nilClock.RunID() != "" {
		t.Error("Expected empty run id for nil clock")
	}
}

func TestClock_ParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := Start(ctx, "run", time.Hour, func(context.Context, string) {})

	cancel()

	done := make(chan struct{})
	go func() {
		c.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Expected clock to exit when parent context is cancelled")
	}
	if !c.Stopped() {
		t.Error("Expected clock to report stopped")
	}
}

func TestClock_CallbackSeesCancelledContextAfterStop(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	result := make(chan error, 1)

	c := Start(context.Background(), "run", 5*time.Millisecond, func(ctx context.Context, runID string) {
		select {
		case entered <- struct{}{}:
		default:
			return
		}
		<-release
		result <- ctx.Err()
	})

	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("Expected callback to run")
	}

	c.Stop()
	close(release)

	select {
	case err := <-result:
		if err == nil {
			t.Error("Expected in-flight callback to observe cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("Expected callback to finish")
	}
	c.Wait()
}

func TestClock_DefaultInterval(t *testing.T) {
	c := Start(context.Background(), "run", 0, func(context.Context, string) {})
	defer c.Stop()

	if c.RunID() != "run" {
		t.Errorf("Expected run id 'run', got %s", c.RunID())
	}
}
