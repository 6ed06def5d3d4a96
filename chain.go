package lazytx

import (
	"context"
	"errors"
)

var (
	// ErrEmptyChain returned when a Chain that wasn't created with [Begin], [Bind],
	// [Then], [Apply] or [Map] is executed.
	ErrEmptyChain = errors.New("chain has no links")
)

// Chain is a sequence of effects that run one after another against a single
// [Session], each link built from the result of the link before it.  Because every link
// shares the session, later links see the uncommitted work of earlier ones.
//
// Chains are immutable.  Extending a chain with [Bind], [Then], [Apply] or [Map] returns
// a new chain and leaves the original usable on its own.  The zero Chain has no links
// and fails with ErrEmptyChain.
type Chain[R any] struct {
	node resolver[R]
}

// Begin starts a chain whose only link is e.  If e is already a chain, it is returned
// as is.
func Begin[R any](e Effect[R]) *Chain[R] {
	if c, ok := e.(*Chain[R]); ok {
		return c
	}

	return &Chain[R]{node: link[Nothing, R]{next: func(Nothing) Effect[R] {
		return e
	}}}
}

// Prepare runs every link of the chain, in order, against s.
func (c *Chain[R]) Prepare(s Session) *Deferred[R] {
	return Defer(func(ctx context.Context) (R, error) {
		last, err := c.resolve(ctx, s)
		if err != nil {
			var zero R
			return zero, err
		}

		return last.Prepare(s).Execute(ctx)
	})
}

func (c *Chain[R]) resolve(ctx context.Context, s Session) (Effect[R], error) {
	if c.node == nil {
		return nil, ErrEmptyChain
	}

	return c.node.resolve(ctx, s)
}

// A resolver runs everything up to the final effect of a chain and returns that effect,
// still unexecuted.
type resolver[R any] interface {
	resolve(ctx context.Context, s Session) (Effect[R], error)
}

// link pairs the previous chain with the function that builds the next effect from its
// result.  The first link of a chain has no previous chain and receives Nothing.
type link[P, R any] struct {
	prev *Chain[P]
	next func(P) Effect[R]
}

func (l link[P, R]) resolve(ctx context.Context, s Session) (Effect[R], error) {
	var result P

	if l.prev != nil {
		var err error
		if result, err = l.prev.Prepare(s).Execute(ctx); err != nil {
			return nil, err
		}
	}

	return l.next(result), nil
}

// mapped rewrites the final effect of a chain without touching its earlier links.
type mapped[R, N any] struct {
	inner resolver[R]
	f     func(R) N
}

func (m mapped[R, N]) resolve(ctx context.Context, s Session) (Effect[N], error) {
	last, err := m.inner.resolve(ctx, s)
	if err != nil {
		return nil, err
	}

	return Map(last, m.f), nil
}

func mapChain[R, N any](c *Chain[R], f func(R) N) *Chain[N] {
	return &Chain[N]{node: mapped[R, N]{inner: c, f: f}}
}
