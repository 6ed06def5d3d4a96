package lazytx

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// Strategy selects which [Session] operation a [Query] runs.
type Strategy int

const (
	StrategySelect Strategy = iota
	StrategyInsert
	StrategyUpdate
	StrategyCall
	StrategyExecute
)

// String returns the strategy's name.
func (s Strategy) String() string {
	switch s {
	case StrategySelect:
		return "select"
	case StrategyInsert:
		return "insert"
	case StrategyUpdate:
		return "update"
	case StrategyCall:
		return "call"
	case StrategyExecute:
		return "execute"
	}

	return fmt.Sprintf("strategy(%d)", int(s))
}

// RequiresOutcome returns true if queries using this strategy must be built with an
// [Outcome], false if they must be built without one.
func (s Strategy) RequiresOutcome() bool {
	return s != StrategyExecute
}

// Query is a single SQL statement, with its parameters and preparation hooks, and the
// [Outcome] that turns its rows into a result.  Build one with [Select], [Insert],
// [Update], [Call] or [Exec].
//
// A Query is immutable once built.  The zero Query has neither SQL nor an outcome;
// running it fails with an error matching ErrIncompleteQuery.
type Query[R any] struct {
	sql      string
	args     []any
	hooks    []Preparation
	outcome  Outcome[R]
	strategy Strategy
	origin   Origin
}

// SQL returns the statement text.
func (q *Query[R]) SQL() string {
	return q.sql
}

// Args returns a copy of the positional parameters.
func (q *Query[R]) Args() []any {
	return slices.Clone(q.args)
}

// Strategy returns the session operation the query runs.
func (q *Query[R]) Strategy() Strategy {
	return q.strategy
}

// Origin returns where the query was built.
func (q *Query[R]) Origin() Origin {
	return q.origin
}

// Prepare describes the query to s and returns a computation that runs it.  Failures
// are returned as a [*QueryError] carrying the query's SQL and origin.
func (q *Query[R]) Prepare(s Session) *Deferred[R] {
	return Defer(func(ctx context.Context) (R, error) {
		result, err := q.run(ctx, s)
		if err != nil {
			var zero R
			return zero, &QueryError{SQL: q.sql, Strategy: q.strategy, Origin: q.origin, Err: err}
		}

		return result, nil
	})
}

func (q *Query[R]) run(ctx context.Context, s Session) (R, error) {
	var result R

	if strings.TrimSpace(q.sql) == "" {
		return result, &BuildError{Strategy: q.strategy, Reason: "sql is empty"}
	}

	if q.strategy.RequiresOutcome() && q.outcome == nil {
		return result, &BuildError{Strategy: q.strategy, Reason: "outcome is empty"}
	}

	s.SQL(q.sql)

	for _, arg := range q.args {
		s.Set(arg)
	}

	for _, hook := range q.hooks {
		s.Prepare(hook)
	}

	handle := func(rows Rows, stmt *Statement) error {
		var err error
		result, err = q.outcome(rows, stmt)
		return err
	}

	var err error

	switch q.strategy {
	case StrategySelect:
		err = s.Select(ctx, handle)
	case StrategyInsert:
		err = s.Insert(ctx, handle)
	case StrategyUpdate:
		err = s.Update(ctx, handle)
	case StrategyCall:
		err = s.Call(ctx, handle)
	case StrategyExecute:
		// Built without an outcome, so R is Nothing and the zero result is the answer.
		err = s.Execute(ctx)
	default:
		err = fmt.Errorf("unsupported query strategy %s", q.strategy)
	}

	return result, err
}

// mapQuery folds f into the outcome of q.
func mapQuery[R, N any](q *Query[R], f func(R) N) *Query[N] {
	outcome := q.outcome

	return &Query[N]{
		sql:      q.sql,
		args:     q.args,
		hooks:    q.hooks,
		strategy: q.strategy,
		origin:   q.origin,
		outcome: func(rows Rows, stmt *Statement) (N, error) {
			result, err := outcome(rows, stmt)
			if err != nil {
				var zero N
				return zero, err
			}

			return f(result), nil
		},
	}
}
