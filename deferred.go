package lazytx

import (
	"context"
	"errors"
	"sync/atomic"
)

var (
	// ErrConsumed returned if a [Deferred] is executed more than once.
	ErrConsumed = errors.New("deferred computation already executed")
)

// Deferred is the single-use computation an [Effect] produces when prepared against a
// [Session].  Nothing runs until Execute is called, and Execute runs at most once;
// prepare the effect again to run it again.
type Deferred[R any] struct {
	run  func(ctx context.Context) (R, error)
	used atomic.Bool
}

// Defer wraps run in a [Deferred].  Custom [Effect] implementations use it to return
// their computation from Prepare.
func Defer[R any](run func(ctx context.Context) (R, error)) *Deferred[R] {
	return &Deferred[R]{run: run}
}

// Execute runs the computation.  The session the computation was prepared against is
// not committed; that is up to whoever owns the session, usually [Execute].
func (d *Deferred[R]) Execute(ctx context.Context) (R, error) {
	if !d.used.CompareAndSwap(false, true) {
		var zero R
		return zero, ErrConsumed
	}

	return d.run(ctx)
}
