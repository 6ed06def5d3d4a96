package lazytx

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
)

var (
	// ErrIncompleteQuery matches every [*BuildError] with errors.Is.
	ErrIncompleteQuery = errors.New("incomplete query")
)

// BuildError is returned when a query builder is finished in a way that doesn't match
// its strategy: missing SQL, a missing outcome, or an outcome where none is allowed.
// These are programming mistakes, best caught by tests rather than handled at runtime.
type BuildError struct {
	Strategy Strategy
	Reason   string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("incomplete %s query: %s", e.Strategy, e.Reason)
}

// Unwrap returns ErrIncompleteQuery.
func (e *BuildError) Unwrap() error {
	return ErrIncompleteQuery
}

// Origin is the source location where a query was built.  Queries run long after, and
// often far from, the code that built them; the origin ties a failure back to its
// builder.
type Origin struct {
	File     string
	Line     int
	Function string
}

func (o Origin) String() string {
	if o.File == "" {
		return "unknown"
	}

	if o.Function == "" {
		return fmt.Sprintf("%s:%d", filepath.Base(o.File), o.Line)
	}

	return fmt.Sprintf("%s:%d (%s)", filepath.Base(o.File), o.Line, o.Function)
}

// originOf records the location skip frames above its caller.
func originOf(skip int) Origin {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Origin{}
	}

	origin := Origin{File: file, Line: line}
	if fn := runtime.FuncForPC(pc); fn != nil {
		origin.Function = fn.Name()
	}

	return origin
}

// QueryError wraps a failure from the session while running a [Query].
type QueryError struct {
	SQL      string
	Strategy Strategy
	Origin   Origin
	Err      error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s query built at %s failed: %s", e.Strategy, e.Origin, e.Err)
}

// Unwrap returns the session's error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// IndexedError wraps an error with the position of the effect that failed in a
// [Sequence] or [ExecuteAll].
type IndexedError struct {
	Index int
	Err   error
}

func (e *IndexedError) Error() string {
	return fmt.Sprintf("effect %d: %v", e.Index, e.Err)
}

// Unwrap returns the underlying error.
func (e *IndexedError) Unwrap() error {
	return e.Err
}
