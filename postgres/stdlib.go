package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/sbowman/lazytx/std"
)

// StdFromPool returns a [lazytx.Source] built on a standard Go [sql.DB].  It leverages
// the pgx stdlib library to provide a sql.DB-compatible interface on top of the pool.
// Shutting down the returned DB closes the pool.
func StdFromPool(pool *pgxpool.Pool, opts ...std.Option) *std.DB {
	conn := stdlib.OpenDBFromPool(pool)

	opts = append(opts, std.WithShutdown(pool.Close))
	return std.FromDB(conn, opts...)
}

// StdOpen works like sql.Open with the "pgx" driver, but returns a
// [lazytx.Source]-compatible database.
func StdOpen(uri string, opts ...std.Option) (*std.DB, error) {
	return std.Open("pgx", uri, opts...)
}
