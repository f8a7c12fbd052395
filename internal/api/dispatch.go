package api

import (
	"context"
	"sync"
)

// Dispatcher runs result callbacks on the caller's chosen execution context.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatchFunc adapts a function to Dispatcher.
type DispatchFunc func(fn func())

func (f DispatchFunc) Dispatch(fn func()) { f(fn) }

// Inline runs callbacks on the goroutine that finished parsing.
var Inline Dispatcher = DispatchFunc(func(fn func()) { fn() })

// Loop runs callbacks one at a time on the goroutine that called Run, the
// way a UI toolkit delivers work to its main thread.
type Loop struct {
	queue     chan func()
	done      chan struct{}
	closeOnce sync.Once
}

// NewLoop creates a Loop whose queue holds size pending callbacks before
// Dispatch blocks.
func NewLoop(size int) *Loop {
	if size < 0 {
		size = 0
	}
	return &Loop{
		queue: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// Dispatch queues fn. Callbacks dispatched after Close are dropped.
func (l *Loop) Dispatch(fn func()) {
	select {
	case <-l.done:
		return
	default:
	}
	select {
	case l.queue <- fn:
	case <-l.done:
	}
}

// Run executes queued callbacks until ctx ends or Close is called. When ctx
// ends the Loop is closed, so later callbacks are dropped.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case fn := <-l.queue:
			fn()
		case <-l.done:
			return nil
		case <-ctx.Done():
			l.Close()
			return ctx.Err()
		}
	}
}

// Close stops Run. It is safe to call more than once.
func (l *Loop) Close() {
	l.closeOnce.Do(func() { close(l.done) })
}
