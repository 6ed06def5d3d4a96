package lazytx

import (
	"context"
	"slices"
)

// Sequence runs effects in order against one session and collects their results in the
// same order.  The first failure stops the sequence and is returned as an
// [*IndexedError].
func Sequence[R any](effects []Effect[R]) Effect[[]R] {
	effects = slices.Clone(effects)

	return EffectFunc[[]R](func(s Session) *Deferred[[]R] {
		return Defer(func(ctx context.Context) ([]R, error) {
			results := make([]R, 0, len(effects))

			for idx, e := range effects {
				result, err := e.Prepare(s).Execute(ctx)
				if err != nil {
					return nil, &IndexedError{Index: idx, Err: err}
				}

				results = append(results, result)
			}

			return results, nil
		})
	})
}
