package luatable

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"locsync/internal/filewalker"
	"locsync/internal/textutil"

	"github.com/rs/zerolog/log"
)

// PatchFile applies p to the script at path and writes it back when rows
// changed. The file is left untouched on error or in dry-run mode.
func PatchFile(path string, p *Patcher, dryRun bool) (int, error) {
	src, err := textutil.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read script: %w", err)
	}

	patched, n, err := p.Patch(src)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	if n == 0 || dryRun {
		return n, nil
	}
	if err := os.WriteFile(path, []byte(patched), 0o644); err != nil {
		return 0, fmt.Errorf("write script: %w", err)
	}
	return n, nil
}

// SyncDocument carries the translations of a previously translated script
// over to a newer upstream version of it. When both documents have the same
// code shape the translated one is kept as is. It returns the resulting
// document, the number of rows substituted and whether the result differs
// from translated.
func SyncDocument(upstream, translated string) (string, int, bool, error) {
	if Normalize(upstream) == Normalize(translated) {
		return translated, 0, false, nil
	}

	trans, err := ExtractTranslations(translated)
	if err != nil {
		return "", 0, false, fmt.Errorf("translated document: %w", err)
	}

	p := &Patcher{Mode: KeyPerTable, Translations: trans}
	patched, n, err := p.Patch(upstream)
	if err != nil {
		return "", 0, false, fmt.Errorf("upstream document: %w", err)
	}
	return patched, n, patched != translated, nil
}

// SyncResult is the outcome for one script.
type SyncResult struct {
	Rel      string
	Replaced int
	Changed  bool
	Err      error
}

// SyncSummary aggregates the results of SyncDir.
type SyncSummary struct {
	Files    []SyncResult
	Changed  int
	Replaced int
	Failed   int
}

func (s SyncSummary) add(r SyncResult) SyncSummary {
	s.Files = append(s.Files, r)
	switch {
	case r.Err != nil:
		s.Failed++
	case r.Changed:
		s.Changed++
		s.Replaced += r.Replaced
	}
	return s
}

// SyncDir syncs every *.lua file under upstreamRoot that also exists at the
// same relative path under translationRoot. Written files keep the line
// ending style of the translated file they replace.
func SyncDir(ctx context.Context, upstreamRoot, translationRoot string, dryRun bool) (SyncSummary, error) {
	w, err := filewalker.NewWalker("*.lua")
	if err != nil {
		return SyncSummary{}, err
	}
	if _, err := os.Stat(translationRoot); err != nil {
		return SyncSummary{}, fmt.Errorf("translation root: %w", err)
	}
	files, err := w.Walk(upstreamRoot)
	if err != nil {
		return SyncSummary{}, fmt.Errorf("upstream root: %w", err)
	}

	var sum SyncSummary
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		trPath := filepath.Join(translationRoot, f.Rel)
		if _, err := os.Stat(trPath); errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("file", f.Rel).Msg("No translated counterpart")
			continue
		}

		res := syncFile(f.Path, trPath, dryRun)
		res.Rel = f.Rel
		switch {
		case res.Err != nil:
			log.Error().Err(res.Err).Str("file", f.Rel).Msg("Skipping script")
		case res.Changed:
			log.Info().Str("file", f.Rel).Int("replaced", res.Replaced).Bool("dry_run", dryRun).Msg("Synced script")
		}
		sum = sum.add(res)
	}
	return sum, nil
}

func syncFile(upPath, trPath string, dryRun bool) SyncResult {
	var res SyncResult

	up, err := textutil.ReadFile(upPath)
	if err != nil {
		res.Err = fmt.Errorf("read upstream: %w", err)
		return res
	}
	tr, err := textutil.ReadFile(trPath)
	if err != nil {
		res.Err = fmt.Errorf("read translation: %w", err)
		return res
	}

	patched, n, changed, err := SyncDocument(up, tr)
	if err != nil {
		res.Err = err
		return res
	}
	res.Replaced, res.Changed = n, changed
	if !changed || dryRun {
		return res
	}

	eol := textutil.DetectEOL(trPath)
	if err := os.WriteFile(trPath, []byte(textutil.ConvertEOL(patched, eol)), 0o644); err != nil {
		res.Err = fmt.Errorf("write translation: %w", err)
	}
	return res
}
