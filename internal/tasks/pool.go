package tasks

import (
	"github.com/alitto/pond/v2"
)

// DefaultWorkers is the worker count used when none is configured.
const DefaultWorkers = 3

// Pool runs generation and meshing jobs off the orchestrator goroutine.
type Pool struct {
	pool    pond.Pool
	workers int
}

// NewPool creates a pool with a fixed number of workers.
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Pool{
		pool:    pond.NewPool(workers),
		workers: workers,
	}
}

// Submit queues fn. A panic inside fn is reported by the task's Wait.
func (p *Pool) Submit(fn func()) pond.Task {
	return p.pool.Submit(fn)
}

// Workers returns the configured concurrency.
func (p *Pool) Workers() int {
	return p.workers
}

// Running returns the number of busy workers.
func (p *Pool) Running() int64 {
	return p.pool.RunningWorkers()
}

// Waiting returns the number of queued jobs.
func (p *Pool) Waiting() uint64 {
	return p.pool.WaitingTasks()
}

// Shutdown waits for queued jobs and stops the workers.
func (p *Pool) Shutdown() {
	p.pool.StopAndWait()
}
