package tasks

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mini-terrain/internal/world"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// pollUntilReady polls key until its job retires.
func pollUntilReady[R any](t *testing.T, tb *Table[R], key world.ChunkCoord, produce func() R) R {
	t.Helper()
	var (
		out R
		err error
	)
	require.Eventually(t, func() bool {
		var ok bool
		out, ok, err = tb.RequestOrPoll(key, produce)
		return ok || err != nil
	}, 5*time.Second, time.Millisecond)
	require.NoError(t, err)
	return out
}

func newTestTable[R any](t *testing.T, clock *fakeClock) (*Table[R], *Pool) {
	pool := NewPool(2)
	t.Cleanup(pool.Shutdown)
	opts := []Option{WithLogger(zaptest.NewLogger(t))}
	if clock != nil {
		opts = append(opts, WithClock(clock.Now))
	}
	return NewTable[R]("test", pool, opts...), pool
}

func TestRequestOrPollSingleInFlight(t *testing.T) {
	tb, _ := newTestTable[int](t, nil)
	key := world.ChunkCoord{X: 1, Z: 2}

	var calls atomic.Int32
	release := make(chan struct{})
	produce := func() int {
		calls.Add(1)
		<-release
		return 42
	}

	_, ok, err := tb.RequestOrPoll(key, produce)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = tb.RequestOrPoll(key, produce)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, 1, tb.InFlight())
	assert.True(t, tb.Pending(key))

	close(release)
	got := pollUntilReady(t, tb, key, produce)
	assert.Equal(t, 42, got)
	assert.Equal(t, int32(1), calls.Load(), "second request must not start a new job")
	assert.Equal(t, 0, tb.InFlight())
	assert.False(t, tb.Pending(key))
}

func TestRequestOrPollDistinctKeys(t *testing.T) {
	tb, _ := newTestTable[world.ChunkCoord](t, nil)
	keys := []world.ChunkCoord{{X: 0, Z: 0}, {X: 1, Z: 0}, {X: 0, Z: 1}, {X: -3, Z: 5}}

	for _, k := range keys {
		k := k
		got := pollUntilReady(t, tb, k, func() world.ChunkCoord { return k })
		assert.Equal(t, k, got)
	}
	assert.Equal(t, uint64(len(keys)), tb.Retired())
}

func TestAverageLatency(t *testing.T) {
	clock := newFakeClock()
	tb, _ := newTestTable[int](t, clock)

	assert.Equal(t, time.Duration(0), tb.AverageLatency())

	// First job: started at t0, retired at t0+10ms.
	release := make(chan struct{})
	produce := func() int { <-release; return 1 }
	_, ok, err := tb.RequestOrPoll(world.ChunkCoord{}, produce)
	require.NoError(t, err)
	require.False(t, ok)
	clock.Advance(10 * time.Millisecond)
	close(release)
	pollUntilReady(t, tb, world.ChunkCoord{}, produce)
	assert.Equal(t, 10*time.Millisecond, tb.AverageLatency())

	// Second job: 30ms, so the mean is 20ms.
	release2 := make(chan struct{})
	produce2 := func() int { <-release2; return 2 }
	key := world.ChunkCoord{X: 1}
	_, ok, err = tb.RequestOrPoll(key, produce2)
	require.NoError(t, err)
	require.False(t, ok)
	clock.Advance(30 * time.Millisecond)
	close(release2)
	pollUntilReady(t, tb, key, produce2)
	assert.Equal(t, 20*time.Millisecond, tb.AverageLatency())
	assert.Equal(t, uint64(2), tb.Retired())
}

// Jobs that finish before the clock moves still count toward the mean.
func TestAverageLatencyCountsInstantJobs(t *testing.T) {
	clock := newFakeClock()
	tb, _ := newTestTable[int](t, clock)

	release := make(chan struct{})
	slow := func() int { <-release; return 1 }
	_, ok, err := tb.RequestOrPoll(world.ChunkCoord{}, slow)
	require.NoError(t, err)
	require.False(t, ok)
	clock.Advance(40 * time.Millisecond)
	close(release)
	pollUntilReady(t, tb, world.ChunkCoord{}, slow)

	instant := func() int { return 2 }
	got := pollUntilReady(t, tb, world.ChunkCoord{X: 2, Z: -1}, instant)
	assert.Equal(t, 2, got)
	assert.Equal(t, uint64(2), tb.Retired())
	assert.Equal(t, 20*time.Millisecond, tb.AverageLatency())
}

func TestPanickingJobSurfacesError(t *testing.T) {
	tb, _ := newTestTable[int](t, nil)
	key := world.ChunkCoord{X: 9}
	produce := func() int { panic("boom") }

	var lastErr error
	require.Eventually(t, func() bool {
		_, _, err := tb.RequestOrPoll(key, produce)
		lastErr = err
		return err != nil
	}, 5*time.Second, time.Millisecond)

	assert.Error(t, lastErr)
	assert.Contains(t, lastErr.Error(), "test")
	assert.False(t, tb.Pending(key), "failed job must be retired")
	assert.Equal(t, uint64(0), tb.Retired())
}

func TestSweepDropsFinishedUnwantedOnly(t *testing.T) {
	tb, _ := newTestTable[int](t, nil)
	done := world.ChunkCoord{X: 1}
	running := world.ChunkCoord{X: 2}
	wanted := world.ChunkCoord{X: 3}

	release := make(chan struct{})
	defer close(release)

	var finished sync.WaitGroup
	finished.Add(2)
	quick := func() int { defer finished.Done(); return 1 }
	_, _, err := tb.RequestOrPoll(done, quick)
	require.NoError(t, err)
	_, _, err = tb.RequestOrPoll(wanted, quick)
	require.NoError(t, err)
	_, _, err = tb.RequestOrPoll(running, func() int { <-release; return 2 })
	require.NoError(t, err)
	finished.Wait()

	require.Eventually(t, func() bool {
		return isDone(tb, done)
	}, 5*time.Second, time.Millisecond)

	keep := func(c world.ChunkCoord) bool { return c == wanted }
	tb.Sweep(keep)

	assert.False(t, tb.Pending(done))
	assert.True(t, tb.Pending(running), "running job must stay tracked")
}

// isDone reports whether key is untracked or its job has finished.
func isDone[R any](tb *Table[R], key world.ChunkCoord) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tk, ok := tb.tasks[key]
	if !ok {
		return true
	}
	select {
	case <-tk.handle.Done():
		return true
	default:
		return false
	}
}

func TestDrainWaitsForRunningJobs(t *testing.T) {
	tb, _ := newTestTable[int](t, nil)

	var finished atomic.Int32
	release := make(chan struct{})
	for i := range 4 {
		_, _, err := tb.RequestOrPoll(world.ChunkCoord{X: i}, func() int {
			<-release
			finished.Add(1)
			return i
		})
		require.NoError(t, err)
	}
	require.Equal(t, 4, tb.InFlight())

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()

	n := tb.Drain()
	assert.Equal(t, 4, n)
	assert.Equal(t, int32(4), finished.Load(), "drain returned before jobs finished")
	assert.Equal(t, 0, tb.InFlight())
}

func TestPoolDefaults(t *testing.T) {
	p := NewPool(0)
	defer p.Shutdown()
	assert.Equal(t, DefaultWorkers, p.Workers())

	task := p.Submit(func() {})
	require.NoError(t, task.Wait())
	assert.Equal(t, uint64(0), p.Waiting())
}
