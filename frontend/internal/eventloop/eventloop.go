// Package eventloop runs tasks one at a time on a single goroutine. Every
// document mutation of a client session goes through its loop.
package eventloop

import (
	"context"
	"errors"
	"sync"
)

var ErrStopped = errors.New("event loop stopped")

type Task func()

type Loop struct {
	tasks chan Task
	done  chan struct{}

	stopOnce sync.Once
}

func New() *Loop {
	return &Loop{
		tasks: make(chan Task, 64),
		done:  make(chan struct{}),
	}
}

// Run executes tasks until ctx is done or Close is called.
func (l *Loop) Run(ctx context.Context) {
	defer l.stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.done:
			return
		case task := <-l.tasks:
			if l.stopped() {
				return
			}
			task()
		}
	}
}

// Do runs fn on the loop and waits for it. It must not be called from a task
// running on the same loop.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	if l.stopped() {
		return ErrStopped
	}
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}

	select {
	case l.tasks <- task:
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	}
}

// Post queues fn without waiting. When the queue is full the send moves to
// its own goroutine. Tasks posted after the loop stopped are dropped.
func (l *Loop) Post(fn func()) {
	if l.stopped() {
		return
	}
	select {
	case l.tasks <- fn:
		return
	default:
	}
	go func() {
		select {
		case l.tasks <- fn:
		case <-l.done:
		}
	}()
}

// Close stops the loop. Queued tasks are dropped.
func (l *Loop) Close() {
	l.stop()
}

// Done is closed once the loop has stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

func (l *Loop) stopped() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}
