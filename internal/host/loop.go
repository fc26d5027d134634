package host

import (
	"context"
	"sync"
)

// Loop is the host's main loop: a FIFO of tasks run on one goroutine.
// Schedule may be called from any goroutine.
type Loop struct {
	mu    sync.Mutex
	tasks []func()
	wake  chan struct{}
}

func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Schedule queues fn to run on the loop
func (l *Loop) Schedule(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued tasks
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}

// Iterate runs the tasks queued so far and returns how many ran. Tasks
// scheduled while iterating run on the next iteration.
func (l *Loop) Iterate() int {
	l.mu.Lock()
	tasks := l.tasks
	l.tasks = nil
	l.mu.Unlock()

	for _, fn := range tasks {
		fn()
	}
	return len(tasks)
}

// Run iterates until ctx is cancelled
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.Iterate()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}
