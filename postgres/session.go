package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/sbowman/lazytx"
)

// querier is what *pgxpool.Conn and pgx.Tx have in common.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Session implements [lazytx.Session] on a connection acquired from a [pgxpool.Pool].
// With autocommit off, the first statement begins a transaction that lasts until Commit
// or Rollback.
//
// Array parameters are bound as PostgreSQL arrays.
type Session struct {
	lazytx.Pending

	log        zerolog.Logger
	conn       *pgxpool.Conn
	tx         pgx.Tx
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
	q, stmt, err := s.statement(ctx)
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx, stmt.SQL, bind(stmt.Args)...)
	return err
}

// Autocommit takes effect with the next statement.  Turning it back on doesn't commit a
// transaction already in progress.
func (s *Session) Autocommit(enabled bool) {
	s.autocommit = enabled
}

// Commit the transaction, if one was started, and release the connection back to the
// pool.
func (s *Session) Commit(ctx context.Context) error {
	if s.closed {
		return lazytx.ErrSessionClosed
	}
	defer s.release()

	if s.tx == nil {
		return nil
	}

	err := s.tx.Commit(ctx)
	s.log.Debug().Err(err).Msg("Committed transaction")

	return err
}

// Rollback the transaction, if one was started, and release the connection back to the
// pool.
func (s *Session) Rollback(ctx context.Context) error {
	if s.closed {
		return lazytx.ErrSessionClosed
	}
	defer s.release()

	if s.tx == nil {
		return nil
	}

	err := s.tx.Rollback(ctx)
	s.log.Debug().Err(err).Msg("Rolled back transaction")

	return err
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
	q, stmt, err := s.statement(ctx)
	if err != nil {
		return err
	}

	rows, err := q.Query(ctx, stmt.SQL, bind(stmt.Args)...)
	if err != nil {
		return err
	}
	defer rows.Close()

	if err := handle(rows, stmt); err != nil {
		return err
	}

	rows.Close()
	return rows.Err()
}

// statement takes the pending statement and returns it along with where to run it,
// beginning a transaction if necessary.
func (s *Session) statement(ctx context.Context) (querier, *lazytx.Statement, error) {
	if s.closed {
		return nil, nil, lazytx.ErrSessionClosed
	}

	stmt, err := s.Take()
	if err != nil {
		return nil, nil, err
	}

	if s.tx != nil {
		return s.tx, stmt, nil
	}

	if s.autocommit {
		return s.conn, stmt, nil
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}

	s.log.Debug().Msg("Began transaction")
	s.tx = tx

	return tx, stmt, nil
}

func (s *Session) release() {
	s.closed = true
	s.tx = nil
	s.conn.Release()
}

// bind unwraps [lazytx.Array] parameters; pgx encodes slices as arrays natively.
func bind(args []any) []any {
	bound := make([]any, len(args))

	for idx, arg := range args {
		if array, ok := arg.(lazytx.Array); ok {
			bound[idx] = array.Elements
			continue
		}

		bound[idx] = arg
	}

	return bound
}
