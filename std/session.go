package std

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sbowman/lazytx"
)

// querier is what *sql.Conn and *sql.Tx have in common.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Session implements [lazytx.Session] on a dedicated [sql.Conn].  With autocommit off,
// the first statement begins a transaction that lasts until Commit or Rollback.
type Session struct {
	lazytx.Pending

	db         *DB
	conn       *sql.Conn
	tx         *sql.Tx
	autocommit bool
	closed     bool
}

func (s *Session) Select(ctx context.Context, handle lazytx.Handler) error {
	return s.query(ctx, handle)
}

func (s *Session) Insert(ctx context.Context, handle lazytx.Handler) error {
	return s.query(ctx, handle)
}

func (s *Session) Update(ctx context.Context, handle lazytx.Handler) error {
	return s.query(ctx, handle)
}

func (s *Session) Call(ctx context.Context, handle lazytx.Handler) error {
	return s.query(ctx, handle)
}

func (s *Session) Execute(ctx context.Context) error {
	q, stmt, args, err := s.statement(ctx)
	if err != nil {
		return err
	}

	_, err = q.ExecContext(ctx, stmt.SQL, args...)
	return err
}

// Autocommit takes effect with the next statement.  Turning it back on doesn't commit a
// transaction already in progress.
func (s *Session) Autocommit(enabled bool) {
	s.autocommit = enabled
}

// Commit the transaction, if one was started, and return the connection to the pool.
func (s *Session) Commit(_ context.Context) error {
	if s.closed {
		return lazytx.ErrSessionClosed
	}

	var err error
	if s.tx != nil {
		err = s.tx.Commit()
		s.db.log.Debug().Err(err).Msg("Committed transaction")
	}

	return errors.Join(err, s.release())
}

// Rollback the transaction, if one was started, and return the connection to the pool.
func (s *Session) Rollback(_ context.Context) error {
	if s.closed {
		return lazytx.ErrSessionClosed
	}

	var err error
	if s.tx != nil {
		err = s.tx.Rollback()
		s.db.log.Debug().Err(err).Msg("Rolled back transaction")
	}

	return errors.Join(err, s.release())
}

// Close rolls back anything uncommitted.  Safe to call multiple times.
func (s *Session) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}

	return s.Rollback(ctx)
}

func (s *Session) Closed() bool {
	return s.closed
}

func (s *Session) query(ctx context.Context, handle lazytx.Handler) error {
	q, stmt, args, err := s.statement(ctx)
	if err != nil {
		return err
	}

	rs, err := q.QueryContext(ctx, stmt.SQL, args...)
	if err != nil {
		return err
	}
	defer rs.Close()

	if err := handle(&rows{Rows: rs}, stmt); err != nil {
		return err
	}

	if err := rs.Close(); err != nil {
		return err
	}

	return rs.Err()
}

// statement takes the pending statement and returns it, its bound arguments and where
// to run it, beginning a transaction if necessary.
func (s *Session) statement(ctx context.Context) (querier, *lazytx.Statement, []any, error) {
	if s.closed {
		return nil, nil, nil, lazytx.ErrSessionClosed
	}

	stmt, err := s.Take()
	if err != nil {
		return nil, nil, nil, err
	}

	args, err := s.db.bind(stmt.Args)
	if err != nil {
		return nil, nil, nil, err
	}

	if s.tx != nil {
		return s.tx, stmt, args, nil
	}

	if s.autocommit {
		return s.conn, stmt, args, nil
	}

	// database/sql rolls back a transaction when its context is done; the transaction
	// belongs to the session, not to the statement that happened to start it.
	tx, err := s.conn.BeginTx(context.WithoutCancel(ctx), nil)
	if err != nil {
		return nil, nil, nil, err
	}

	s.db.log.Debug().Msg("Began transaction")
	s.tx = tx

	return tx, stmt, args, nil
}

func (s *Session) release() error {
	s.closed = true
	s.tx = nil

	return s.conn.Close()
}
