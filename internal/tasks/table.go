package tasks

import (
	"fmt"
	"sync"
	"time"

	"mini-terrain/internal/world"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
)

// Clock returns the current time. Tests substitute a fake one.
type Clock func() time.Time

// Option configures a Table.
type Option func(*options)

type options struct {
	clock  Clock
	logger *zap.Logger
}

// WithClock overrides the clock used for latency accounting.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the logger for retire and drain events.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// task is one tracked unit of work. result is written only by the worker
// and read only after done is closed.
type task[R any] struct {
	handle  pond.Task
	started time.Time
	result  R
}

// Table tracks at most one in-flight job per chunk coordinate and keeps
// a running mean of how long jobs took from request to retirement.
type Table[R any] struct {
	name  string
	pool  *Pool
	clock Clock
	log   *zap.Logger

	mu      sync.Mutex
	tasks   map[world.ChunkCoord]*task[R]
	retired uint64
	avgNs   float64
}

// NewTable creates an empty table that schedules on pool.
func NewTable[R any](name string, pool *Pool, opts ...Option) *Table[R] {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return &Table[R]{
		name:  name,
		pool:  pool,
		clock: o.clock,
		log:   o.logger.With(zap.String("table", name)),
		tasks: make(map[world.ChunkCoord]*task[R]),
	}
}

// RequestOrPoll starts produce for key unless a job for key is already
// tracked, then reports whether that job has finished. A finished job is
// retired and its result returned with ok set. It never blocks on a job.
//
// A job that panicked is retired and reported as an error.
func (t *Table[R]) RequestOrPoll(key world.ChunkCoord, produce func() R) (result R, ok bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tk, tracked := t.tasks[key]
	if !tracked {
		tk = &task[R]{started: t.clock()}
		tk.handle = t.pool.Submit(func() {
			tk.result = produce()
		})
		t.tasks[key] = tk
	}

	select {
	case <-tk.handle.Done():
		return t.retire(key, tk)
	default:
		return result, false, nil
	}
}

// retire removes a finished task and folds its latency into the mean.
// Caller holds t.mu.
func (t *Table[R]) retire(key world.ChunkCoord, tk *task[R]) (R, bool, error) {
	delete(t.tasks, key)

	var zero R
	if err := tk.handle.Wait(); err != nil {
		t.log.Error("Task failed", zap.Stringer("coord", key), zap.Error(err))
		return zero, false, fmt.Errorf("tasks: %s %v: %w", t.name, key, err)
	}

	elapsed := t.clock().Sub(tk.started)
	t.retired++
	t.avgNs += (float64(elapsed) - t.avgNs) / float64(t.retired)

	result := tk.result
	tk.result = zero
	return result, true, nil
}

// Pending reports whether a job for key is tracked.
func (t *Table[R]) Pending(key world.ChunkCoord) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.tasks[key]
	return ok
}

// InFlight returns the number of tracked jobs.
func (t *Table[R]) InFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tasks)
}

// Retired returns how many jobs have completed through RequestOrPoll.
func (t *Table[R]) Retired() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.retired
}

// AverageLatency is the cumulative mean latency of every retired job.
func (t *Table[R]) AverageLatency() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return time.Duration(t.avgNs)
}

// Sweep discards finished jobs whose key keep rejects and returns how
// many were dropped. Unfinished jobs stay tracked until a later sweep.
func (t *Table[R]) Sweep(keep func(world.ChunkCoord) bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	dropped := 0
	for key, tk := range t.tasks {
		if keep(key) {
			continue
		}
		select {
		case <-tk.handle.Done():
		default:
			continue
		}
		if err := tk.handle.Wait(); err != nil {
			t.log.Warn("Abandoned task failed", zap.Stringer("coord", key), zap.Error(err))
		}
		var zero R
		tk.result = zero
		delete(t.tasks, key)
		dropped++
	}
	return dropped
}

// Drain waits for every tracked job, discards the results and empties
// the table. Results of running jobs are never dropped before the job ends.
func (t *Table[R]) Drain() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.tasks)
	for key, tk := range t.tasks {
		if err := tk.handle.Wait(); err != nil {
			t.log.Warn("Task failed during drain", zap.Stringer("coord", key), zap.Error(err))
		}
		var zero R
		tk.result = zero
		delete(t.tasks, key)
	}
	if n > 0 {
		t.log.Debug("Drained tasks", zap.Int("count", n))
	}
	return n
}
