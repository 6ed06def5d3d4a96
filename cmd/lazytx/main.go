package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/sbowman/lazytx"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "lazytx",
		Usage: "run SQL scripts and queries in a single transaction",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				EnvVars: []string{"LAZYTX_CONFIG"},
				Usage:   "TOML config file (default ~/.lazytx/config.toml)",
			},
			&cli.StringFlag{
				Name:    "uri",
				EnvVars: []string{"LAZYTX_URI"},
				Usage:   "database connection string: postgres://... or sqlite:<file>",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 10 * time.Minute,
				Usage: "how long to wait for the transaction to complete",
			},
			&cli.StringFlag{
				Name:    "log",
				EnvVars: []string{lazytx.EnvLog},
				Value:   "info",
				Usage:   "log level: debug, info, warn or error",
			},
		},

		Commands: []*cli.Command{
			{
				Name:      "exec",
				Usage:     "run SQL files in order, in one transaction",
				Args:      true,
				ArgsUsage: "[file or directory...]",
				Action:    execute,
			},
			{
				Name:      "query",
				Usage:     "run a query and print the rows",
				Args:      true,
				ArgsUsage: "[sql] [parameters...]",
				Action:    query,
			},
		},
	}
}

// execute runs every script named on the command line in a single transaction.  If any
// script fails, none of them are applied.
func execute(cctx *cli.Context) error {
	cfg, log, err := setup(cctx)
	if err != nil {
		return err
	}

	files, err := scripts(cctx.Args().Slice())
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no SQL files to run")
	}

	effects, err := readScripts(files)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cctx.Context, cfg.Timeout)
	defer cancel()

	src, shutdown, err := open(ctx, cfg.URI, log)
	if err != nil {
		return fmt.Errorf("unable to connect to the database: %w", err)
	}
	defer shutdown()

	options := lazytx.DefaultOptions().WithLogger(log)
	if _, err := lazytx.ExecuteWith(ctx, options, src, lazytx.Sequence(effects)); err != nil {
		return fmt.Errorf("scripts failed: %w", describe(err, files))
	}

	log.Info().Int("scripts", len(files)).Msg("Applied SQL scripts")
	return nil
}

// query runs a single statement and prints its rows, tab separated, to the app's writer.
// Parameters are bound as strings.
func query(cctx *cli.Context) error {
	cfg, log, err := setup(cctx)
	if err != nil {
		return err
	}

	if cctx.NArg() == 0 {
		return fmt.Errorf("missing SQL query")
	}

	builder := lazytx.Select().SQL(cctx.Args().First())
	for _, param := range cctx.Args().Tail() {
		builder.Set(param)
	}

	values := func(rows lazytx.Rows) ([]any, error) {
		return rows.Values()
	}

	q, err := lazytx.Build(builder, lazytx.List(values))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cctx.Context, cfg.Timeout)
	defer cancel()

	src, shutdown, err := open(ctx, cfg.URI, log)
	if err != nil {
		return fmt.Errorf("unable to connect to the database: %w", err)
	}
	defer shutdown()

	options := lazytx.DefaultOptions().WithLogger(log)

	rows, err := lazytx.ExecuteWith(ctx, options, src, q)
	if err != nil {
		return err
	}

	return printRows(cctx.App.Writer, rows)
}

// setup resolves the configuration and creates the command's logger.
func setup(cctx *cli.Context) (Config, zerolog.Logger, error) {
	cfg, err := configure(cctx)
	if err != nil {
		return cfg, zerolog.Nop(), err
	}

	if cfg.URI == "" {
		return cfg, zerolog.Nop(), fmt.Errorf("missing database connection string")
	}

	level, err := zerolog.ParseLevel(cfg.Log)
	if err != nil {
		return cfg, zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.Log, err)
	}

	output := zerolog.ConsoleWriter{Out: cctx.App.ErrWriter, TimeFormat: time.RFC3339}
	log := zerolog.New(output).Level(level).With().Timestamp().Logger()

	return cfg, log, nil
}

// describe names the script that failed, when the failure can be traced to one.
func describe(err error, files []string) error {
	var ierr *lazytx.IndexedError
	if !errors.As(err, &ierr) || ierr.Index >= len(files) {
		return err
	}

	return fmt.Errorf("%s: %w", files[ierr.Index], err)
}

func printRows(out io.Writer, rows [][]any) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	for _, row := range rows {
		for idx, value := range row {
			if idx > 0 {
				_, _ = fmt.Fprint(w, "\t")
			}

			if b, ok := value.([]byte); ok {
				value = string(b)
			}

			_, _ = fmt.Fprint(w, value)
		}

		_, _ = fmt.Fprintln(w)
	}

	return w.Flush()
}
