// Package loader enumerates the source directories of a dbt project and
// lists and reads the SQL files inside them.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// SQLExt is the extension of the files that carry doc comments.
const SQLExt = ".sql"

// Enumerate returns every directory under root/subpath for each subpath, in
// order. Each subtree is walked top-down: the subpath itself first, then its
// descendants in lexical order. Subpaths that are not directories are logged
// and skipped. A directory reached through overlapping subpaths (for example
// "models" and "models/staging") is returned once, at its first position.
func Enumerate(root string, subpaths []string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var dirs []string
	seen := make(map[string]bool)
	for _, sub := range subpaths {
		base := filepath.Join(root, sub)

		info, err := os.Stat(base)
		if err != nil || !info.IsDir() {
			logger.Warn("directory not found", "path", base)
			continue
		}

		err = filepath.WalkDir(base, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() && !seen[path] {
				seen[path] = true
				dirs = append(dirs, path)
			}
			return nil
		})
		if err != nil {
			return dirs, fmt.Errorf("walking %s: %w", base, err)
		}
	}

	return dirs, nil
}

// Listing is the content of one directory split by file type.
type Listing struct {
	// Sources are the .sql files, full paths, in listing order.
	Sources []string
	// Skipped are the other regular files, full paths.
	Skipped []string
}

// ListSources lists the files directly inside dir. Subdirectories are not
// descended into; Enumerate yields them separately.
func ListSources(dir string) (*Listing, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	listing := &Listing{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if strings.HasSuffix(entry.Name(), SQLExt) {
			listing.Sources = append(listing.Sources, path)
		} else {
			listing.Skipped = append(listing.Skipped, path)
		}
	}
	return listing, nil
}

// ReadSource reads a source file whole.
func ReadSource(path string) (string, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from ListSources
	if err != nil {
		return "", &UnreadableSourceError{Path: path, Err: err}
	}
	return string(content), nil
}

// UnreadableSourceError reports a source file that could not be read.
type UnreadableSourceError struct {
	Path string
	Err  error
}

func (e *UnreadableSourceError) Error() string {
	return fmt.Sprintf("%s: cannot read source file: %v", e.Path, e.Err)
}

func (e *UnreadableSourceError) Unwrap() error {
	return e.Err
}

// IsNotExist reports whether err is an UnreadableSourceError for a file that
// no longer exists.
func IsNotExist(err error) bool {
	var ue *UnreadableSourceError
	return errors.As(err, &ue) && errors.Is(ue.Err, fs.ErrNotExist)
}
