package std

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sbowman/lazytx"
)

// ArrayBinder converts the elements of a [lazytx.Array] parameter into a value the
// driver can bind as a single parameter, e.g. a JSON document or a driver-specific
// array type.
type ArrayBinder func(elements any) (any, error)

// Option configures a [DB].
type Option func(db *DB)

// WithArrayBinder sets the function used to bind [lazytx.Array] parameters.  Without
// one, the elements are passed to the driver as is.
func WithArrayBinder(binder ArrayBinder) Option {
	return func(db *DB) {
		db.binder = binder
	}
}

// WithLogger logs session begin, commit and rollback events at debug level.
func WithLogger(logger zerolog.Logger) Option {
	return func(db *DB) {
		db.log = logger
	}
}

// WithShutdown registers a function to call after the [sql.DB] is closed by
// [DB.Shutdown], e.g. to close a connection pool the sql.DB was opened from.
func WithShutdown(fn func()) Option {
	return func(db *DB) {
		db.shutdown = append(db.shutdown, fn)
	}
}

// DB implements the [lazytx.Source] interface on top of [sql.DB].  Each session gets
// a dedicated connection from the sql.DB pool.
type DB struct {
	*sql.DB

	binder   ArrayBinder
	log      zerolog.Logger
	shutdown []func()
}

// Open works like sql.Open, but returns a [lazytx.Source]-compatible database.
func Open(driver, dsn string, opts ...Option) (*DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	return FromDB(db, opts...), nil
}

// FromDB wraps an existing [sql.DB].
func FromDB(db *sql.DB, opts ...Option) *DB {
	wrapped := &DB{
		DB:  db,
		log: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(wrapped)
	}

	return wrapped
}

// Session acquires a connection from the pool.  The session starts in autocommit mode.
func (db *DB) Session(ctx context.Context) (lazytx.Session, error) {
	conn, err := db.DB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to acquire a connection: %w", err)
	}

	return &Session{
		db:         db,
		conn:       conn,
		autocommit: true,
	}, nil
}

// Shutdown closes down the underlying [sql.DB], then runs any functions registered
// with [WithShutdown].
func (db *DB) Shutdown() error {
	if err := db.DB.Close(); err != nil {
		return err
	}

	for _, fn := range db.shutdown {
		fn()
	}

	return nil
}

// bind unwraps [lazytx.Array] parameters.
func (db *DB) bind(args []any) ([]any, error) {
	bound := make([]any, len(args))

	for idx, arg := range args {
		array, ok := arg.(lazytx.Array)
		if !ok {
			bound[idx] = arg
			continue
		}

		if db.binder == nil {
			bound[idx] = array.Elements
			continue
		}

		value, err := db.binder(array.Elements)
		if err != nil {
			return nil, fmt.Errorf("unable to bind array parameter %d: %w", idx+1, err)
		}

		bound[idx] = value
	}

	return bound, nil
}
