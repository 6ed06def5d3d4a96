package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/sbowman/lazytx"
	"github.com/sbowman/lazytx/std"
)

// Open a SQLite3 file in WAL mode, creating it if necessary.  Uses the Go
// `database/sql` pooling.  Array parameters are bound as JSON, for use with
// `json_each`.
//
// In-memory databases aren't supported: each pooled connection would see a database
// of its own.
func Open(filename string, opts ...std.Option) (*std.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=rwc&_journal_mode=WAL&_busy_timeout=5000", filename)

	opts = append([]std.Option{std.WithArrayBinder(BindJSON)}, opts...)
	return std.Open("sqlite3", dsn, opts...)
}

// BindJSON encodes an array parameter as a JSON array string.
func BindJSON(elements any) (any, error) {
	encoded, err := json.Marshal(elements)
	if err != nil {
		return nil, err
	}

	return string(encoded), nil
}

// UniqueViolation returns true if the error is a sqlite3.Error with a unique or
// primary key constraint violation.  In other words, did a query return an error
// because a value already exists?
func UniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var dberr sqlite3.Error
	if errors.As(err, &dberr) {
		return dberr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			dberr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	return false
}

// NotFound returns true if the error indicates no results were found for the database
// query.
func NotFound(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, lazytx.ErrNoRows) {
		return true
	}

	var dberr sqlite3.Error
	if errors.As(err, &dberr) {
		return dberr.Code == sqlite3.ErrNotFound
	}

	return false
}
