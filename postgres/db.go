package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/sbowman/lazytx"
)

// Option configures a [DB].
type Option func(db *DB)

// WithLogger logs session begin, commit and rollback events at debug level.
func WithLogger(logger zerolog.Logger) Option {
	return func(db *DB) {
		db.log = logger
	}
}

// DB wraps the *pgxpool.Pool and hands out a [Session] per pooled connection.
type DB struct {
	*pgxpool.Pool

	log zerolog.Logger
}

// FromPool wraps an existing pool.
func FromPool(pool *pgxpool.Pool, opts ...Option) *DB {
	db := &DB{
		Pool: pool,
		log:  zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(db)
	}

	return db
}

// Session acquires a connection from the pool.  The session starts in autocommit mode.
func (db *DB) Session(ctx context.Context) (lazytx.Session, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to acquire a connection: %w", err)
	}

	return &Session{
		log:        db.log,
		conn:       conn,
		autocommit: true,
	}, nil
}

// Shutdown the underlying pgx Pool.  You may call this when your application is exiting
// to release all the database pool connections.
func (db *DB) Shutdown() {
	db.Pool.Close()
}
