package postgres

import (
	"context"
	"database/sql"
	"errors"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sbowman/lazytx"
)

// Open connects a [pgxpool.Pool] to the database at uri and wraps it so it supports the
// [lazytx.Source] interface.
func Open(ctx context.Context, uri string, opts ...Option) (*DB, error) {
	pool, err := pgxpool.New(ctx, uri)
	if err != nil {
		return nil, err
	}

	return FromPool(pool, opts...), nil
}

// UniqueViolation returns true if the error is a pgconn.PgError with a code of 23505,
// unique violation.  In other words, did a query return an error because a value already
// exists?
func UniqueViolation(err error) bool {
	return hasCode(err, CodeUniqueViolation)
}

// UndefinedTable returns true if the error is a pgconn.PgError with a code of 42P01.
func UndefinedTable(err error) bool {
	return hasCode(err, CodeUndefinedTable)
}

func hasCode(err error, code string) bool {
	if err == nil {
		return false
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return pgerr.Severity == "ERROR" && pgerr.Code == code
	}

	return false
}

// NotFound returns true if the error indicates no results were found for the database
// query.
func NotFound(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, lazytx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}

// SafeURI strips the password from a connection string so it may be logged.
func SafeURI(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil {
		return "<invalid uri>"
	}

	return parsed.Redacted()
}
