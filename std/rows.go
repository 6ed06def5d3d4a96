package std

import "database/sql"

// rows adds Values to [sql.Rows].
type rows struct {
	*sql.Rows
}

// Values scans the current row into a slice of the driver's values.
func (r *rows) Values() ([]any, error) {
	columns, err := r.Columns()
	if err != nil {
		return nil, err
	}

	values := make([]any, len(columns))
	dest := make([]any, len(columns))

	for idx := range values {
		dest[idx] = &values[idx]
	}

	if err := r.Scan(dest...); err != nil {
		return nil, err
	}

	return values, nil
}
