package merge

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"locsync/internal/filewalker"
	"locsync/internal/tsv"

	"github.com/rs/zerolog/log"
)

// Dirs names the directories a batch merge works on.
type Dirs struct {
	// Source holds the authoritative upstream tables.
	Source string
	// Target holds the translated tables, mirroring Source's file names.
	Target string
	// Obsolete receives rows removed upstream, one file per source file.
	Obsolete string
}

// FileResult is the outcome of merging one file.
type FileResult struct {
	Name     string
	Added    int
	Removed  int
	Modified int
	// Err is set when the file was skipped.
	Err error
}

// Summary accumulates per-file results of a batch.
type Summary struct {
	Files    []FileResult
	Done     int
	Skipped  int
	Added    int
	Removed  int
	Modified int
}

// Add folds one file result into the summary.
func (s Summary) Add(fr FileResult) Summary {
	s.Files = append(s.Files, fr)
	if fr.Err != nil {
		s.Skipped++
		return s
	}
	s.Done++
	s.Added += fr.Added
	s.Removed += fr.Removed
	s.Modified += fr.Modified
	return s
}

// DirOptions tunes MergeDir.
type DirOptions struct {
	Options
	// Pattern selects table files, for example "*.loc.tsv".
	Pattern string
	// DryRun computes results without writing anything.
	DryRun bool
}

// MergeDir merges every source table into the target directory. Files that
// cannot be read are reported in the summary and skipped; the batch goes on.
// Cancellation is checked between files.
func MergeDir(ctx context.Context, dirs Dirs, opts DirOptions) (Summary, error) {
	w, err := filewalker.NewWalker(opts.Pattern)
	if err != nil {
		return Summary{}, err
	}

	entries, err := w.List(dirs.Source)
	if err != nil {
		return Summary{}, fmt.Errorf("list source tables: %w", err)
	}

	var sum Summary
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		fr := mergeFile(e.Rel, dirs, opts)
		switch {
		case fr.IsMissing():
			log.Warn().Err(fr.Err).Str("file", fr.Name).Msg("Source table disappeared, skipping")
		case fr.Err != nil:
			log.Error().Err(fr.Err).Str("file", fr.Name).Msg("Skipping table")
		default:
			log.Info().
				Str("file", fr.Name).
				Int("added", fr.Added).
				Int("removed", fr.Removed).
				Int("modified", fr.Modified).
				Msg("Merged table")
		}
		sum = sum.Add(fr)
	}

	return sum, nil
}

func mergeFile(name string, dirs Dirs, opts DirOptions) FileResult {
	fr := FileResult{Name: name}

	src, err := tsv.LoadFile(filepath.Join(dirs.Source, name))
	if err != nil {
		fr.Err = fmt.Errorf("load source: %w", err)
		return fr
	}

	trgPath := filepath.Join(dirs.Target, name)
	trg, found, err := tsv.LoadFileOrEmpty(trgPath)
	if err != nil {
		fr.Err = fmt.Errorf("load target: %w", err)
		return fr
	}
	if !found {
		trg = src.Empty()
	}

	res := Merge(src, trg, opts.Options)
	if !res.Changed() {
		log.Debug().Str("file", name).Msg("Table already up to date")
	}
	fr.Added = len(res.Added)
	fr.Removed = len(res.Removed)
	fr.Modified = res.Modified

	if opts.DryRun {
		return fr
	}

	if err := tsv.WriteFile(trgPath, res.Table); err != nil {
		fr.Err = fmt.Errorf("write target: %w", err)
		return fr
	}

	if len(res.Removed) > 0 {
		if err := archive(filepath.Join(dirs.Obsolete, name), res.RemovedTable()); err != nil {
			fr.Err = fmt.Errorf("archive removed rows: %w", err)
			return fr
		}
	}

	return fr
}

// archive adds removed rows to the obsolete file at path. Rows archived by an
// earlier run are kept; a key archived again takes the newer row.
func archive(path string, removed *tsv.Table) error {
	existing, found, err := tsv.LoadFileOrEmpty(path)
	if err != nil {
		return err
	}
	if !found {
		return tsv.WriteFile(path, removed)
	}

	fresh := make(map[string]tsv.Row, len(removed.Rows))
	for _, r := range removed.Rows {
		fresh[r.Key] = r
	}

	out := existing.Empty()
	for _, r := range existing.Rows {
		if _, replaced := fresh[r.Key]; !replaced {
			out.Rows = append(out.Rows, r)
		}
	}
	out.Rows = append(out.Rows, removed.Rows...)

	return tsv.WriteFile(path, out)
}

// IsMissing reports whether a file result was skipped because a table file
// did not exist.
func (fr FileResult) IsMissing() bool {
	return errors.Is(fr.Err, tsv.ErrMissingFile)
}
