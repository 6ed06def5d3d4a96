package lazytx

import (
	"slices"
	"strings"
)

// Stage is a query builder waiting for its SQL.
type Stage struct {
	strategy Strategy
}

// Select starts a query that runs with [Session.Select] and requires an [Outcome].
func Select() *Stage {
	return &Stage{strategy: StrategySelect}
}

// Insert starts a query that runs with [Session.Insert] and requires an [Outcome].
func Insert() *Stage {
	return &Stage{strategy: StrategyInsert}
}

// Update starts a query that runs with [Session.Update] and requires an [Outcome].
func Update() *Stage {
	return &Stage{strategy: StrategyUpdate}
}

// Call starts a query that runs with [Session.Call] and requires an [Outcome].
func Call() *Stage {
	return &Stage{strategy: StrategyCall}
}

// Exec starts a query that runs with [Session.Execute].  It must be built without an
// [Outcome] and yields [Nothing].
func Exec() *Stage {
	return &Stage{strategy: StrategyExecute}
}

// SQL sets the statement text.  The text is required; an empty statement is reported
// when the query is built.
func (st *Stage) SQL(query string) *Builder {
	return &Builder{strategy: st.strategy, sql: query}
}

// Builder accumulates a query's parameters and preparation hooks.  Finish it with
// [Build] or [Builder.Build], depending on whether the query's strategy requires an
// outcome.
type Builder struct {
	strategy Strategy
	sql      string
	args     []any
	hooks    []Preparation
}

// Set appends positional parameters in order.  Slices passed as a single value are
// bound as a single parameter; spread them with `values...` to bind each element.
//
// Calling Set with a nil slice of values, which includes calling it with no arguments
// at all, binds a single NULL parameter.  Beware spreading a parameter slice that may be
// nil, e.g. `Set(params...)`: a nil slice adds a NULL the statement may not expect.  An
// empty, non-nil slice adds nothing.
func (b *Builder) Set(values ...any) *Builder {
	if values == nil {
		b.args = append(b.args, nil)
		return b
	}

	b.args = append(b.args, values...)
	return b
}

// SetArray appends exactly one parameter holding the whole array, wrapped in [Array] so
// the session binds it as an array value.
func (b *Builder) SetArray(array any) *Builder {
	b.args = append(b.args, Array{Elements: array})
	return b
}

// Prepare appends a hook to run, in order, immediately before the statement executes.
func (b *Builder) Prepare(hook Preparation) *Builder {
	b.hooks = append(b.hooks, hook)
	return b
}

// Build finishes a query that yields no result, i.e. one started with [Exec].
func (b *Builder) Build() (*Query[Nothing], error) {
	return build[Nothing](b, nil, 2)
}

// MustBuild is like [Builder.Build] but panics if the query is incomplete.
func (b *Builder) MustBuild() *Query[Nothing] {
	q, err := build[Nothing](b, nil, 2)
	if err != nil {
		panic(err)
	}

	return q
}

// Build finishes a query whose rows are turned into a result by outcome.  The builder
// must have been started with [Select], [Insert], [Update] or [Call].
//
// Build is a function rather than a method because Go methods can't introduce the
// result type R.
func Build[R any](b *Builder, outcome Outcome[R]) (*Query[R], error) {
	return build(b, outcome, 2)
}

// MustBuild is like [Build] but panics if the query is incomplete.
func MustBuild[R any](b *Builder, outcome Outcome[R]) *Query[R] {
	q, err := build(b, outcome, 2)
	if err != nil {
		panic(err)
	}

	return q
}

// build validates the builder and freezes it into a query.  skip is the number of
// frames between build and the caller whose location is recorded as the query's origin.
func build[R any](b *Builder, outcome Outcome[R], skip int) (*Query[R], error) {
	if err := b.validate(outcome != nil); err != nil {
		return nil, err
	}

	return &Query[R]{
		sql:      b.sql,
		args:     slices.Clone(b.args),
		hooks:    slices.Clone(b.hooks),
		outcome:  outcome,
		strategy: b.strategy,
		origin:   originOf(skip),
	}, nil
}

func (b *Builder) validate(hasOutcome bool) error {
	if strings.TrimSpace(b.sql) == "" {
		return &BuildError{Strategy: b.strategy, Reason: "sql is empty"}
	}

	if hasOutcome != b.strategy.RequiresOutcome() {
		if hasOutcome {
			return &BuildError{Strategy: b.strategy, Reason: "outcome must be empty"}
		}

		return &BuildError{Strategy: b.strategy, Reason: "outcome is empty"}
	}

	return nil
}
