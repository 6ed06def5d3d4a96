package lazytx

import (
	"context"
	"errors"
)

var (
	// ErrSessionClosed returned by a [Session] asked to commit or run a statement after
	// it was rolled back or committed and its connection released.
	ErrSessionClosed = errors.New("session is closed")
)

// Source hands out sessions, typically one per top-level execution.  A [Source] is
// usually a thin wrapper around a connection pool; see the `std`, `postgres` and `sqlite`
// packages.
type Source interface {
	// Session acquires a connection from the underlying pool and wraps it in a new
	// [Session].  The caller owns the session and must eventually Commit, Rollback or
	// Close it.
	Session(ctx context.Context) (Session, error)
}

// Session is a single connection and the transaction running on it.  The effects in
// this package never talk to a database directly; they describe a statement to a
// Session, then ask the Session to run it.
//
// A Session is not safe for concurrent use.  Exactly one chain of effects may drive it
// at a time.
type Session interface {
	// SQL sets the text of the pending statement, discarding any parameters or hooks
	// registered for a previous statement.
	SQL(query string)

	// Set binds the next positional parameter of the pending statement.
	Set(value any)

	// Prepare registers a hook to run against the pending statement immediately before
	// it executes.  Hooks run in the order they were registered.
	Prepare(hook Preparation)

	// Select runs the pending statement and passes the resulting rows to handle.
	Select(ctx context.Context, handle Handler) error

	// Insert runs the pending statement, typically an `insert ... returning`, and
	// passes the resulting rows to handle.
	Insert(ctx context.Context, handle Handler) error

	// Update runs the pending statement, typically an `update ... returning`, and passes
	// the resulting rows to handle.
	Update(ctx context.Context, handle Handler) error

	// Call runs the pending statement as a stored procedure or function call and
	// passes the resulting rows to handle.
	Call(ctx context.Context, handle Handler) error

	// Execute runs the pending statement and discards any result.
	Execute(ctx context.Context) error

	// Autocommit toggles implicit per-statement commits.  When disabled, the session
	// starts a transaction with the next statement and holds it open until Commit or
	// Rollback.
	Autocommit(enabled bool)

	// Commit the session's pending work and release the connection.  Returns an error
	// where errors.Is(ErrSessionClosed) is true if the session was already closed.
	Commit(ctx context.Context) error

	// Rollback the session's pending work and release the connection.
	Rollback(ctx context.Context) error

	// Close will do one of these things:
	//
	// * If the session has uncommitted work, it rolls it back.
	// * If the session has been committed or rolled back, it does nothing.
	//
	// In either case the connection is returned to the pool.  Close is safe to call
	// multiple times, so a `defer session.Close(ctx)` is safe even if Commit is called
	// first in a non-error condition.
	Close(ctx context.Context) error

	// Closed returns true once the session has released its connection.
	Closed() bool
}

// Handler receives the rows produced by a statement.  The rows are only valid until the
// handler returns.
type Handler func(rows Rows, stmt *Statement) error

// Rows is the common subset of [database/sql.Rows] and [pgx.Rows] the outcomes need.
type Rows interface {
	// Next prepares the next row for reading.  Returns false when there are no more
	// rows or an error occurred; check Err to tell the difference.
	Next() bool

	// Scan copies the columns of the current row into dest.
	Scan(dest ...any) error

	// Values returns the decoded column values of the current row.
	Values() ([]any, error)

	// Err returns any error encountered while iterating.
	Err() error
}
