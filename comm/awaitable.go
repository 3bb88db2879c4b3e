package comm

import (
	"context"
	"sync"
)

// Awaitable is a single-assignment result cell. It is created pending and
// resolved at most once by a completion adapter; the guard is enforced here,
// not by caller discipline. A second delivery attempt is dropped without
// panicking and without overwriting the first outcome.
type Awaitable struct {
	done chan struct{}
	err  error
	once sync.Once
}

func newAwaitable() *Awaitable {
	return &Awaitable{done: make(chan struct{})}
}

// Done returns a channel closed when the Awaitable resolves.
func (a *Awaitable) Done() <-chan struct{} {
	return a.done
}

// Err returns the outcome: nil while pending or on success, the failure
// otherwise. Distinguish pending from success with Resolved or Done.
func (a *Awaitable) Err() error {
	select {
	case <-a.done:
		return a.err
	default:
		return nil
	}
}

// Resolved reports whether an outcome has been assigned.
func (a *Awaitable) Resolved() bool {
	select {
	case <-a.done:
		return true
	default:
		return false
	}
}

// Await suspends the caller until resolution or context cancellation.
// Context cancellation abandons the wait only; the underlying native
// operation keeps running and the Awaitable may still resolve later.
func (a *Awaitable) Await(ctx context.Context) error {
	select {
	case <-a.done:
		return a.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Awaitable) resolve(err error) {
	a.once.Do(func() {
		a.err = err
		close(a.done)
	})
}
