// Package filex has the filesystem helpers used to prepare the embedded
// SQLite store.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates dir and its parents when missing and returns the
// absolute path. Relative paths are resolved against the working directory.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}

	return abs, nil
}

// SQLiteFilePath returns the database file named by a SQLite DSN, or "" when
// the DSN is in-memory.
//
//	file:data/scores.db?_pragma=busy_timeout(5000)  -> data/scores.db
//	:memory:                                        -> ""
func SQLiteFilePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		if strings.Contains(path[i:], "mode=memory") {
			return ""
		}
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return ""
	}
	return path
}

// EnsureSQLiteDir creates the directory that will hold the database file of
// dsn. In-memory DSNs are left alone.
func EnsureSQLiteDir(dsn string) error {
	path := SQLiteFilePath(dsn)
	if path == "" {
		return nil
	}
	_, err := EnsureDir(filepath.Dir(path))
	return err
}
