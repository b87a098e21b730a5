package classifier

import (
	"context"
	"sync"
)

// Future is a one-shot asynchronous result. It settles exactly once and every
// waiter observes the same value and error.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns a future that has already settled with value and err.
func Resolved[T any](value T, err error) *Future[T] {
	f := newFuture[T]()
	f.settle(value, err)
	return f
}

// settle records the outcome. Only the first call has any effect.
func (f *Future[T]) settle(value T, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}

// Done is closed once the future has settled.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Settled reports whether the outcome is already available.
func (f *Future[T]) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Await blocks until the future settles or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Observe calls fn with the outcome once the future settles. fn runs on its
// own goroutine.
func (f *Future[T]) Observe(fn func(T, error)) {
	go func() {
		<-f.done
		fn(f.value, f.err)
	}()
}
