package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v2"
)

// Config holds the resolved settings for a command.  Flags and environment variables
// win over the config file, which wins over the defaults.
type Config struct {
	URI     string
	Timeout time.Duration
	Log     string
}

// fileConfig mirrors Config but uses strings for durations to make TOML friendly.
type fileConfig struct {
	URI     string `toml:"uri"`
	Timeout string `toml:"timeout"`
	Log     string `toml:"log"`
}

// loadFileConfig reads and parses a TOML config file.
func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// defaultConfigPath returns ~/.lazytx/config.toml if the user's home directory is
// accessible.
func defaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".lazytx", "config.toml")
	}
	return ""
}

// applyFileConfig copies the file's values into cfg, except for flags that were
// explicitly set.
func applyFileConfig(cfg *Config, fc fileConfig, changed map[string]bool) error {
	if fc.URI != "" && !changed["uri"] {
		cfg.URI = fc.URI
	}

	if fc.Log != "" && !changed["log"] {
		cfg.Log = fc.Log
	}

	if fc.Timeout != "" && !changed["timeout"] {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}

	return nil
}

// configure resolves the command's settings from its flags and the config file.  A
// missing config file is only an error if it was named explicitly.
func configure(cctx *cli.Context) (Config, error) {
	cfg := Config{
		URI:     cctx.String("uri"),
		Timeout: cctx.Duration("timeout"),
		Log:     cctx.String("log"),
	}

	path := cctx.String("config")
	explicit := path != ""

	if !explicit {
		path = defaultConfigPath()
	}

	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); err != nil && !explicit {
		return cfg, nil
	}

	fc, err := loadFileConfig(path)
	if err != nil {
		return cfg, fmt.Errorf("unable to read config file %s: %w", path, err)
	}

	changed := make(map[string]bool)
	for _, name := range []string{"uri", "timeout", "log"} {
		changed[name] = cctx.IsSet(name)
	}

	if err := applyFileConfig(&cfg, fc, changed); err != nil {
		return cfg, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}
