// Package deferred provides settle-once promises and lazily evaluated values
// used to coordinate producers and consumers across goroutines.
//
// A Deferred is created unsettled and is resolved or rejected exactly once.
// Every waiter observes the same outcome:
//
//	ready := deferred.New[*watch.Session]()
//	go func() {
//	    // ...
//	    ready.Resolve(session)
//	}()
//	s, err := ready.Wait(ctx)
//
// A Lazy wraps a producer that runs on first use only:
//
//	plugin := deferred.NewLazy(func(ctx context.Context) (Plugin, error) {
//	    return buildPlugin(ctx)
//	})
//	p, err := plugin.Get(ctx)
package deferred

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrRejected is reported by Wait when a Deferred is rejected with a nil error.
var ErrRejected = errors.New("deferred: rejected")

// Deferred is a value that becomes available once, at some later time.
type Deferred[T any] struct {
	once sync.Once
	done chan struct{}
	val  T
	err  error
}

// New returns an unsettled Deferred.
func New[T any]() *Deferred[T] {
	return &Deferred[T]{done: make(chan struct{})}
}

// Resolved returns a Deferred already resolved with v.
func Resolved[T any](v T) *Deferred[T] {
	d := New[T]()
	d.Resolve(v)
	return d
}

// Rejected returns a Deferred already rejected with err.
func Rejected[T any](err error) *Deferred[T] {
	d := New[T]()
	d.Reject(err)
	return d
}

// Resolve settles d with v. It reports false if d was already settled.
func (d *Deferred[T]) Resolve(v T) bool {
	settled := false
	d.once.Do(func() {
		d.val = v
		close(d.done)
		settled = true
	})
	return settled
}

// Reject settles d with err. It reports false if d was already settled.
func (d *Deferred[T]) Reject(err error) bool {
	if err == nil {
		err = ErrRejected
	}
	settled := false
	d.once.Do(func() {
		d.err = err
		close(d.done)
		settled = true
	})
	return settled
}

// Done returns a channel that is closed once d is settled.
func (d *Deferred[T]) Done() <-chan struct{} {
	return d.done
}

// Settled reports whether d was resolved or rejected.
func (d *Deferred[T]) Settled() bool {
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}

// Wait blocks until d is settled or ctx is done.
func (d *Deferred[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-d.done:
		return d.val, d.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Lazy computes a value on first request and shares it with every caller.
type Lazy[T any] struct {
	once    sync.Once
	started atomic.Bool
	fn      func(context.Context) (T, error)
	d       *Deferred[T]
}

// NewLazy returns a Lazy that calls fn at most once.
func NewLazy[T any](fn func(context.Context) (T, error)) *Lazy[T] {
	return &Lazy[T]{fn: fn, d: New[T]()}
}

// Get starts the producer if needed and waits for its result. The producer
// keeps running when ctx is canceled, so later callers still get the value.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	l.once.Do(func() {
		l.started.Store(true)
		pctx := context.WithoutCancel(ctx)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					l.d.Reject(&PanicError{Value: r})
				}
			}()
			v, err := l.fn(pctx)
			if err != nil {
				l.d.Reject(err)
				return
			}
			l.d.Resolve(v)
		}()
	})
	return l.d.Wait(ctx)
}

// Started reports whether the producer was started.
func (l *Lazy[T]) Started() bool {
	return l.started.Load()
}

// PanicError reports a panic raised by a Lazy producer.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return "deferred: producer panicked"
}
