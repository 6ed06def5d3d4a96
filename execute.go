package lazytx

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Execute runs effect in a transaction of its own, using [DefaultOptions].  See
// [ExecuteWith].
func Execute[R any](ctx context.Context, src Source, effect Effect[R]) (R, error) {
	return ExecuteWith(ctx, DefaultOptions(), src, effect)
}

// ExecuteWith acquires a session from src, turns off autocommit, runs effect and
// commits.  If the effect fails, the session is rolled back and the effect's error
// returned.
//
// A step of the effect may roll back and close the session itself, e.g. with
// [Rollback].  A session that reports itself Closed after the effect runs is not
// committed, nor is a commit failing with ErrSessionClosed treated as an error; the
// effect's result is returned as usual.  Any other commit failure is.
func ExecuteWith[R any](ctx context.Context, options Options, src Source, effect Effect[R]) (R, error) {
	var zero R

	log := options.Logger.With().Str("execution", uuid.NewString()).Logger()

	session, err := src.Session(ctx)
	if err != nil {
		return zero, fmt.Errorf("unable to acquire a session: %w", err)
	}
	defer closeSession(ctx, log, session)

	session.Autocommit(false)

	log.Debug().Msg("Executing effect")

	result, err := effect.Prepare(session).Execute(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Effect failed; rolling back")
		return zero, err
	}

	if session.Closed() {
		log.Debug().Msg("Session already closed by the effect; nothing to commit")
		return result, nil
	}

	if err := session.Commit(ctx); err != nil {
		if !errors.Is(err, ErrSessionClosed) {
			return zero, fmt.Errorf("commit failed: %w", err)
		}

		log.Debug().Msg("Session already closed by the effect; nothing to commit")
		return result, nil
	}

	log.Debug().Msg("Committed")
	return result, nil
}

// ExecuteAll runs each effect in its own session and transaction, concurrently, and
// returns the results in the order of effects.  The effects share nothing but src;
// what they see of each other's writes is up to the database's isolation.
//
// The first failure cancels the context passed to the remaining executions and is
// returned as an [*IndexedError].  Executions that already committed stay committed.
func ExecuteAll[R any](ctx context.Context, options Options, src Source, effects []Effect[R]) ([]R, error) {
	results := make([]R, len(effects))

	group, gctx := errgroup.WithContext(ctx)

	for idx, effect := range effects {
		group.Go(func() error {
			result, err := ExecuteWith(gctx, options, src, effect)
			if err != nil {
				return &IndexedError{Index: idx, Err: err}
			}

			results[idx] = result
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// Rollback returns an effect that rolls back and closes its session.  Effects chained
// after it fail with ErrSessionClosed.
func Rollback() Effect[Nothing] {
	return EffectFunc[Nothing](func(s Session) *Deferred[Nothing] {
		return Defer(func(ctx context.Context) (Nothing, error) {
			return Nothing{}, s.Rollback(ctx)
		})
	})
}

// closeSession rolls back anything left uncommitted and releases the connection.
func closeSession(ctx context.Context, log zerolog.Logger, session Session) {
	if err := session.Close(ctx); err != nil {
		log.Error().Err(err).Msg("Unable to close session")
	}
}
