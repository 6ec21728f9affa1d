// Package rworker provides the renderer's one-shot worker pool: a fixed
// bag of tasks run exactly once across N goroutines, then joined.
package rworker

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Pool runs a fixed set of tasks across N workers, each carrying its
// own per-worker context, then calls a finalizer exactly once after
// every worker has reached the end barrier (found the queue empty and
// finished any task it had already popped). It is not reusable: Join
// and Abort consume it.
type Pool[C any, T any] struct {
	mu    sync.Mutex
	tasks []T

	wg        sync.WaitGroup
	remaining atomic.Int32
}

// New starts N workers, where N is len(contexts). f is invoked from
// whichever worker pops a given task; it may run concurrently for
// distinct tasks. finalize runs exactly once, invoked by the worker
// that drives the shared remaining-worker count to zero, so it never
// overlaps with another worker still running its last task.
func New[C any, T any](tasks []T, contexts []C, f func(workerID int, ctx *C, task T), finalize func()) *Pool[C, T] {
	p := &Pool[C, T]{tasks: append([]T(nil), tasks...)}

	n := len(contexts)
	if n == 0 {
		finalize()
		return p
	}

	p.remaining.Store(int32(n))
	p.wg.Add(n)
	for i := range contexts {
		go p.runWorker(i, &contexts[i], f, finalize)
	}
	return p
}

func (p *Pool[C, T]) runWorker(id int, ctx *C, f func(int, *C, T), finalize func()) {
	defer p.wg.Done()

	for {
		task, ok := p.pop()
		if !ok {
			break
		}
		runTask(id, ctx, f, task)
	}

	if p.remaining.Add(-1) == 0 {
		finalize()
	}
}

func (p *Pool[C, T]) pop() (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var zero T
	if len(p.tasks) == 0 {
		return zero, false
	}
	task := p.tasks[0]
	p.tasks = p.tasks[1:]
	return task, true
}

// runTask invokes f, recovering a panic so one failing task never stops
// the pool from draining the rest (§7 transient worker failures). The
// recovered value is logged at Warn through slog's default logger.
func runTask[C any, T any](id int, ctx *C, f func(int, *C, T), task T) {
	defer func() {
		if v := recover(); v != nil {
			slog.Warn("worker task panicked", "worker_id", id, "panic", v)
		}
	}()
	f(id, ctx, task)
}

// Join waits until every worker has finished.
func (p *Pool[C, T]) Join() {
	p.wg.Wait()
}

// Abort atomically drains the remaining queue, discarding not-yet-
// started tasks, then joins. Tasks already popped are allowed to
// complete.
func (p *Pool[C, T]) Abort() {
	p.mu.Lock()
	p.tasks = nil
	p.mu.Unlock()

	p.Join()
}
