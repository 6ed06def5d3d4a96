package lazytx

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	// EnvLog is the environment variable holding the zerolog level name ("debug",
	// "info", ...) for the default logger.  When unset, executions don't log.
	EnvLog = "LAZYTX_LOG"
)

// Options configures how [ExecuteWith] and [ExecuteAll] run effects.
type Options struct {
	// Logger receives execution, commit and rollback events.  Defaults to a no-op
	// logger unless `LAZYTX_LOG` is set.
	Logger zerolog.Logger
}

// DefaultOptions returns the defaults, adjusted by the environment:
//
// * Logger: disabled, or a console logger on stderr at the level in `LAZYTX_LOG`
func DefaultOptions() Options {
	logger := zerolog.Nop()

	if val := os.Getenv(EnvLog); val != "" {
		if level, err := zerolog.ParseLevel(val); err == nil {
			output := zerolog.ConsoleWriter{
				Out:        os.Stderr,
				TimeFormat: time.RFC3339,
			}
			logger = zerolog.New(output).Level(level).With().Timestamp().Logger()
		}
	}

	return Options{Logger: logger}
}

// WithLogger replaces the logger.
func (options Options) WithLogger(logger zerolog.Logger) Options {
	options.Logger = logger
	return options
}
