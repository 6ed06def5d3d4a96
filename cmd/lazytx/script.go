package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sbowman/lazytx"
)

// scripts expands paths into the SQL files to run, in order.  A directory contributes
// its `.sql` files sorted by name; files named directly run as given.
func scripts(paths []string) ([]string, error) {
	var files []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("invalid scripts directory, %s: %w", path, err)
		}

		var found []string
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
				found = append(found, filepath.Join(path, entry.Name()))
			}
		}

		sort.Strings(found)
		files = append(files, found...)
	}

	return files, nil
}

// readScript turns a SQL file into a single statement.  Files may hold several
// statements separated by semicolons; both drivers run them together when there are no
// parameters.
func readScript(path string) (*lazytx.Query[lazytx.Nothing], error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	query, err := lazytx.Exec().SQL(string(b)).Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return query, nil
}

// readScripts reads every script in order, stopping at the first bad one.
func readScripts(files []string) ([]lazytx.Effect[lazytx.Nothing], error) {
	effects := make([]lazytx.Effect[lazytx.Nothing], 0, len(files))

	for _, file := range files {
		query, err := readScript(file)
		if err != nil {
			return nil, err
		}

		effects = append(effects, query)
	}

	return effects, nil
}
