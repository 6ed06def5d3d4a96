package lazytx

import (
	"errors"
)

var (
	// ErrNoRows returned by [Single] when the statement produced no rows.
	ErrNoRows = errors.New("no rows in result set")
)

// Outcome turns the rows produced by a statement into a result.
type Outcome[R any] func(rows Rows, stmt *Statement) (R, error)

// Single scans the first column of the first row.  Returns ErrNoRows if there are no
// rows.
func Single[T any]() Outcome[T] {
	return func(rows Rows, _ *Statement) (T, error) {
		var value T

		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return value, err
			}

			return value, ErrNoRows
		}

		err := rows.Scan(&value)
		return value, err
	}
}

// Optional scans the first column of the first row, or returns None if there are no
// rows.
func Optional[T any]() Outcome[Option[T]] {
	return func(rows Rows, _ *Statement) (Option[T], error) {
		if !rows.Next() {
			return None[T](), rows.Err()
		}

		var value T
		if err := rows.Scan(&value); err != nil {
			return None[T](), err
		}

		return Some(value), nil
	}
}

// Column scans the first column of every row.
func Column[T any]() Outcome[[]T] {
	return List(func(rows Rows) (T, error) {
		var value T
		err := rows.Scan(&value)
		return value, err
	})
}

// List calls scan once per row and collects the results in row order.
func List[T any](scan func(rows Rows) (T, error)) Outcome[[]T] {
	return func(rows Rows, _ *Statement) ([]T, error) {
		var values []T

		for rows.Next() {
			value, err := scan(rows)
			if err != nil {
				return nil, err
			}

			values = append(values, value)
		}

		if err := rows.Err(); err != nil {
			return nil, err
		}

		return values, nil
	}
}

// Affected counts the rows a statement returned, e.g. `update ... returning id`.
func Affected() Outcome[int64] {
	return func(rows Rows, _ *Statement) (int64, error) {
		var count int64
		for rows.Next() {
			count++
		}

		return count, rows.Err()
	}
}

// Void ignores the rows entirely.
func Void() Outcome[Nothing] {
	return func(Rows, *Statement) (Nothing, error) {
		return Nothing{}, nil
	}
}
