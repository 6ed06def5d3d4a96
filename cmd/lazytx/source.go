package main

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sbowman/lazytx"
	"github.com/sbowman/lazytx/postgres"
	"github.com/sbowman/lazytx/sqlite"
	"github.com/sbowman/lazytx/std"
)

// ErrUnsupported returned for a connection string naming no known database.
var ErrUnsupported = errors.New("database driver is not supported")

// open connects to the database at uri and returns it along with a function to shut
// it down.  PostgreSQL URIs use a pgx pool; `sqlite:` URIs and paths ending in `.db`
// or `.sqlite` open a SQLite3 file.
func open(ctx context.Context, uri string, log zerolog.Logger) (lazytx.Source, func(), error) {
	switch {
	case strings.HasPrefix(uri, "postgres://"), strings.HasPrefix(uri, "postgresql://"):
		db, err := postgres.Open(ctx, uri, postgres.WithLogger(log))
		if err != nil {
			return nil, nil, err
		}

		return db, db.Shutdown, nil

	case strings.HasPrefix(uri, "sqlite:"), strings.HasSuffix(uri, ".db"), strings.HasSuffix(uri, ".sqlite"):
		db, err := sqlite.Open(strings.TrimPrefix(uri, "sqlite:"), std.WithLogger(log))
		if err != nil {
			return nil, nil, err
		}

		return db, func() {
			if err := db.Shutdown(); err != nil {
				log.Error().Err(err).Msg("Unable to shut down the database")
			}
		}, nil
	}

	return nil, nil, ErrUnsupported
}
