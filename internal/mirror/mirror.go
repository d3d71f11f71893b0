// Package mirror copies the translation tree into an installed mod directory
// so changes can be tried in game.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// ErrNoDestination is returned when the destination directory does not exist.
var ErrNoDestination = errors.New("destination directory does not exist")

// Summary describes one mirror run.
type Summary struct {
	// Removed lists destination entries deleted before copying.
	Removed []string
	// Copied is the number of files written.
	Copied int
}

// Mirror replaces the top-level folders of dst that also exist in src and
// then copies src over dst. Entries of dst unknown to src, such as .git, are
// left alone. Per-entry failures are logged and returned together.
func Mirror(ctx context.Context, src, dst string) (Summary, error) {
	var sum Summary

	if info, err := os.Stat(dst); err != nil || !info.IsDir() {
		return sum, fmt.Errorf("%w: %s", ErrNoDestination, dst)
	}
	items, err := os.ReadDir(src)
	if err != nil {
		return sum, fmt.Errorf("read source: %w", err)
	}

	var errs []error
	for _, it := range items {
		target := filepath.Join(dst, it.Name())
		info, err := os.Stat(target)
		if err != nil {
			continue
		}
		// A folder is always replaced; a file only when it would land on a folder.
		if !it.IsDir() && !info.IsDir() {
			continue
		}
		if err := os.RemoveAll(target); err != nil {
			log.Error().Err(err).Str("path", target).Msg("Failed to delete")
			errs = append(errs, err)
			continue
		}
		log.Debug().Str("path", target).Msg("Deleted")
		sum.Removed = append(sum.Removed, target)
	}

	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		out := filepath.Join(dst, rel)

		if d.IsDir() {
			if err := os.MkdirAll(out, 0o755); err != nil {
				errs = append(errs, err)
				return fs.SkipDir
			}
			return nil
		}

		if err := copyFile(path, out); err != nil {
			log.Error().Err(err).Str("file", rel).Msg("Failed to copy")
			errs = append(errs, err)
			return nil
		}
		sum.Copied++
		return nil
	})
	if err != nil {
		return sum, err
	}

	return sum, errors.Join(errs...)
}

// copyFile copies contents, permissions and modification time.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
