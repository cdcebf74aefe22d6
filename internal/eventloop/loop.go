// Package eventloop provides the single-threaded dispatch loop that owns all
// compositor state. Other goroutines (IPC handlers, backend readers) never
// touch shell or tree state directly; they post closures here instead.
package eventloop

import (
	"context"
	"sync"
)

// Loop executes posted tasks one at a time on a single goroutine. Tasks run
// to completion in FIFO order. Idle callbacks run once the pending task queue
// has drained, which makes them safe for work that must not re-enter an
// in-flight dispatch (grab installation).
type Loop struct {
	mu    sync.Mutex
	tasks []func()
	idle  []func()
	wake  chan struct{}
}

// New returns a loop ready to accept tasks. Nothing executes until Run or
// DispatchPending is called.
func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post schedules fn to run on the loop goroutine. Safe from any goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()
	l.signal()
}

// Idle schedules fn to run after all currently pending tasks have completed.
// A task posted from within another task runs before any idle callback.
func (l *Loop) Idle(fn func()) {
	l.mu.Lock()
	l.idle = append(l.idle, fn)
	l.mu.Unlock()
	l.signal()
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) takeTask() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.tasks) == 0 {
		return nil, false
	}
	fn := l.tasks[0]
	l.tasks = l.tasks[1:]
	return fn, true
}

func (l *Loop) takeIdle() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.tasks) > 0 || len(l.idle) == 0 {
		return nil
	}
	batch := l.idle
	l.idle = nil
	return batch
}

// DispatchPending runs all queued tasks and then all idle callbacks on the
// calling goroutine, repeating until both queues are empty. It exists for
// callers that drive the loop manually.
func (l *Loop) DispatchPending() {
	for {
		if fn, ok := l.takeTask(); ok {
			fn()
			continue
		}
		batch := l.takeIdle()
		if len(batch) == 0 {
			return
		}
		for _, fn := range batch {
			fn()
		}
	}
}

// Run blocks executing tasks until ctx is cancelled. It must be called from
// exactly one goroutine, which becomes the loop goroutine.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.DispatchPending()
		select {
		case <-ctx.Done():
			// Drain anything posted between the last dispatch and
			// cancellation so shutdown tasks still run.
			l.DispatchPending()
			return ctx.Err()
		case <-l.wake:
		}
	}
}
