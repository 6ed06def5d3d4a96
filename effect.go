package lazytx

import (
	"context"
)

// Effect is a database operation that hasn't run yet.  Preparing an effect against a
// [Session] returns a [Deferred] computation; nothing touches the session until that
// computation executes.
//
// Effects are immutable.  The same effect may be prepared and executed any number of
// times, against any number of sessions.
type Effect[R any] interface {
	Prepare(s Session) *Deferred[R]
}

// EffectFunc adapts an ordinary function to the [Effect] interface.
type EffectFunc[R any] func(s Session) *Deferred[R]

// Prepare calls f(s).
func (f EffectFunc[R]) Prepare(s Session) *Deferred[R] {
	return f(s)
}

// Pure returns an effect that ignores its session and always yields value.
func Pure[R any](value R) Effect[R] {
	return EffectFunc[R](func(Session) *Deferred[R] {
		return Defer(func(context.Context) (R, error) {
			return value, nil
		})
	})
}

// Fail returns an effect that fails with the error returned by supply.  The error is
// created when the effect runs, not when Fail is called.
func Fail[R any](supply func() error) Effect[R] {
	return EffectFunc[R](func(Session) *Deferred[R] {
		return Defer(func(context.Context) (R, error) {
			var zero R
			return zero, supply()
		})
	})
}

// Map returns an effect that transforms the result of e with f.
//
// Mapping a [Query] folds f into the query's outcome, so the result is still a single
// query.  Mapping a [Chain] only rewrites the chain's final link; the earlier links are
// shared with the original chain.
func Map[R, N any](e Effect[R], f func(R) N) Effect[N] {
	switch typed := e.(type) {
	case *Query[R]:
		if typed.outcome != nil {
			return mapQuery(typed, f)
		}
	case *Chain[R]:
		return mapChain(typed, f)
	}

	return EffectFunc[N](func(s Session) *Deferred[N] {
		return Defer(func(ctx context.Context) (N, error) {
			result, err := e.Prepare(s).Execute(ctx)
			if err != nil {
				var zero N
				return zero, err
			}

			return f(result), nil
		})
	})
}

// Bind composes e with the effect f builds from e's result.  Both run against the same
// session, e first.  The returned chain is lazy: f isn't called until e has run.
func Bind[R, N any](e Effect[R], f func(R) Effect[N]) *Chain[N] {
	return &Chain[N]{node: link[R, N]{prev: Begin(e), next: f}}
}

// Then runs e and then next against the same session, discarding e's result.
func Then[R, N any](e Effect[R], next Effect[N]) *Chain[N] {
	return Bind(e, func(R) Effect[N] {
		return next
	})
}

// Apply runs e, then runs fe and applies the function it yields to e's result.
func Apply[R, N any](e Effect[R], fe Effect[func(R) N]) *Chain[N] {
	return Bind(e, func(result R) Effect[N] {
		return Map(fe, func(f func(R) N) N {
			return f(result)
		})
	})
}
