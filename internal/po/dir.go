package po

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"locsync/internal/filewalker"

	"github.com/rs/zerolog/log"
)

// DirResult is the outcome for one table pair.
type DirResult struct {
	Name string
	// Out is the written PO path; empty when the file was skipped.
	Out string
	Err error
}

// ExportDir writes outDir/<name>.po for every source table matching pattern
// that has a translated counterpart in trgDir. Tables without a translation
// are skipped; failures are logged and the batch goes on.
func ExportDir(ctx context.Context, srcDir, trgDir, outDir, pattern string, h Header) ([]DirResult, error) {
	w, err := filewalker.NewWalker(pattern)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(trgDir); err != nil {
		return nil, fmt.Errorf("translation directory: %w", err)
	}
	entries, err := w.List(srcDir)
	if err != nil {
		return nil, fmt.Errorf("list source tables: %w", err)
	}

	var results []DirResult
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res := DirResult{Name: e.Rel}
		trg := filepath.Join(trgDir, e.Rel)
		if _, err := os.Stat(trg); errors.Is(err, fs.ErrNotExist) {
			log.Warn().Str("file", e.Rel).Msg("Skipping table without translation")
			results = append(results, res)
			continue
		}

		out := filepath.Join(outDir, OutputName(e.Rel))
		fh := h
		fh.SourceFile = e.Rel
		if err := ExportFile(e.Path, trg, out, fh); err != nil {
			res.Err = err
			log.Error().Err(err).Str("file", e.Rel).Msg("Export failed")
		} else {
			res.Out = out
			log.Info().Str("file", e.Rel).Str("out", out).Msg("Exported PO")
		}
		results = append(results, res)
	}
	return results, nil
}
