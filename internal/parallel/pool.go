// Package parallel runs independent solver jobs on a bounded set of
// goroutines. Jobs share nothing but the pool context, which is cancelled
// as soon as one of them asks for it.
package parallel

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// ErrPoolShutdown is returned when trying to submit tasks to a shutdown pool.
var ErrPoolShutdown = errors.New("worker pool has been shutdown")

// Task is a unit of work. ctx is done once the pool is cancelled.
type Task func(ctx context.Context)

// WorkerPool manages a fixed number of goroutines. Submissions block when
// every worker is busy and the buffer is full.
type WorkerPool struct {
	maxWorkers int
	tasks      chan Task

	ctx    context.Context
	cancel context.CancelFunc

	workers sync.WaitGroup
	pending sync.WaitGroup

	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

// NewWorkerPool starts maxWorkers goroutines, or one per CPU if maxWorkers
// is 0 or negative. Tasks see a context derived from ctx.
func NewWorkerPool(ctx context.Context, maxWorkers int) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	pctx, cancel := context.WithCancel(ctx)
	wp := &WorkerPool{
		maxWorkers: maxWorkers,
		tasks:      make(chan Task, maxWorkers*2),
		ctx:        pctx,
		cancel:     cancel,
	}
	for i := 0; i < maxWorkers; i++ {
		wp.workers.Add(1)
		go wp.worker()
	}
	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.workers.Done()
	for task := range wp.tasks {
		task(wp.ctx)
		wp.pending.Done()
	}
}

// MaxWorkers returns the number of goroutines of the pool.
func (wp *WorkerPool) MaxWorkers() int { return wp.maxWorkers }

// Context returns the context handed to tasks.
func (wp *WorkerPool) Context() context.Context { return wp.ctx }

// Submit queues a task, blocking while the pool is saturated.
func (wp *WorkerPool) Submit(ctx context.Context, task Task) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return ErrPoolShutdown
	}
	wp.pending.Add(1)
	select {
	case wp.tasks <- task:
		return nil
	case <-ctx.Done():
		wp.pending.Done()
		return ctx.Err()
	}
}

// Cancel cancels the context of running and queued tasks. Queued tasks still
// run and are expected to return early.
func (wp *WorkerPool) Cancel() { wp.cancel() }

// Wait blocks until every submitted task has returned.
func (wp *WorkerPool) Wait() { wp.pending.Wait() }

// Shutdown stops accepting tasks and waits for the workers to drain the
// queue.
func (wp *WorkerPool) Shutdown() {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.tasks)
		wp.mu.Unlock()
		wp.workers.Wait()
		wp.cancel()
	})
}
