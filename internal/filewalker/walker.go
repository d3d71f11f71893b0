package filewalker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog/log"
)

// ErrNotDirectory is returned when a root exists but is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Walker discovers files whose base name matches a glob pattern.
type Walker struct {
	pattern string
	match   glob.Glob
}

// NewWalker compiles pattern, for example "*.loc.tsv" or "*.lua".
func NewWalker(pattern string) (*Walker, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	return &Walker{pattern: pattern, match: g}, nil
}

// FileEntry represents a discovered file.
type FileEntry struct {
	// Path is the file path as found under the root.
	Path string
	// Rel is Path relative to the root, used to pair files across trees.
	Rel string
}

// Match reports whether a base name matches the walker's pattern.
func (w *Walker) Match(name string) bool {
	return w.match.Match(name)
}

// List returns the matching files directly inside dir, sorted by name.
func (w *Walker) List(dir string) ([]FileEntry, error) {
	if err := checkDir(dir); err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var entries []FileEntry
	for _, de := range dirEntries {
		if de.IsDir() || !w.match.Match(de.Name()) {
			continue
		}
		entries = append(entries, FileEntry{Path: filepath.Join(dir, de.Name()), Rel: de.Name()})
	}

	log.Debug().Int("count", len(entries)).Str("dir", dir).Str("pattern", w.pattern).Msg("Discovered files")
	return entries, nil
}

// Walk returns the matching files anywhere under root, sorted by relative path.
func (w *Walker) Walk(root string) ([]FileEntry, error) {
	if err := checkDir(root); err != nil {
		return nil, err
	}

	var entries []FileEntry

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}
		if d.IsDir() || !w.match.Match(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", path, err)
		}
		entries = append(entries, FileEntry{Path: path, Rel: rel})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Rel < entries[j].Rel })

	log.Debug().Int("count", len(entries)).Str("root", root).Str("pattern", w.pattern).Msg("Discovered files")
	return entries, nil
}

func checkDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}
	return nil
}
