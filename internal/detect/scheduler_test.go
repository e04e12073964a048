package detect

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerFiresAndRearms(t *testing.T) {
	var fired atomic.Int32
	s := NewScheduler("test", time.Millisecond, 2*time.Millisecond, func(context.Context) {
		fired.Add(1)
	}, nil)

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool { return fired.Load() >= 3 },
		time.Second, 5*time.Millisecond, "scheduler did not re-arm")
}

func TestSchedulerStopHaltsFiring(t *testing.T) {
	var fired atomic.Int32
	s := NewScheduler("test", time.Millisecond, time.Millisecond, func(context.Context) {
		fired.Add(1)
	}, nil)

	s.Start()
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	after := fired.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, fired.Load(), "scheduler fired after Stop")
}

// Re-arm happens only after the task returns: a slow task must not cause
// overlapping firings.
func TestSchedulerNoOverlap(t *testing.T) {
	var running atomic.Int32
	var overlapped atomic.Bool

	s := NewScheduler("slow", time.Millisecond, time.Millisecond, func(context.Context) {
		if running.Add(1) > 1 {
			overlapped.Store(true)
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
	}, nil)

	s.Start()
	time.Sleep(60 * time.Millisecond)
	s.Stop()

	assert.False(t, overlapped.Load(), "task firings overlapped")
}

func TestSchedulersAreIndependentlyStoppable(t *testing.T) {
	var a, b atomic.Int32
	sa := NewScheduler("a", time.Millisecond, time.Millisecond, func(context.Context) { a.Add(1) }, nil)
	sb := NewScheduler("b", time.Millisecond, time.Millisecond, func(context.Context) { b.Add(1) }, nil)

	sa.Start()
	sb.Start()
	defer sb.Stop()

	require.Eventually(t, func() bool { return a.Load() > 0 && b.Load() > 0 }, time.Second, time.Millisecond)

	sa.Stop()
	stoppedAt := a.Load()
	before := b.Load()
	require.Eventually(t, func() bool { return b.Load() > before }, time.Second, time.Millisecond,
		"second scheduler stalled after first stopped")
	assert.Equal(t, stoppedAt, a.Load())
}
