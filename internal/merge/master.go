package merge

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"locsync/internal/tsv"

	"github.com/rs/zerolog/log"
)

// SplitMaster fills one per-file table from a single master localisation
// table. current is the existing per-file table for the master's language, or
// nil to start from a copy of en. A row is replaced when its key is editable,
// the master has non-empty text for it, the current text is still English (or
// empty) and the master text differs from English.
func SplitMaster(master map[string]string, en, current *tsv.Table) (*tsv.Table, int) {
	if current == nil {
		current = en
	}
	enText := en.TextMap()

	out := current.Clone()
	updated := 0
	for i, r := range out.Rows {
		if !r.HasKey() || r.IsService() {
			continue
		}
		text, ok := master[r.Key]
		if !ok || text == "" {
			continue
		}
		english := enText[r.Key]
		if text == english || (r.Text != english && r.Text != "") {
			continue
		}
		out.Rows[i].Text = text
		updated++
	}
	return out, updated
}

// SplitDirs names the inputs of SplitDir.
type SplitDirs struct {
	// Master is the single localisation table holding every key.
	Master string
	// English holds the per-file tables that define the file layout.
	English string
	// Output holds the per-file tables for the master's language.
	Output string
}

// SplitDir distributes the master table over the per-file layout of the
// English directory. Output files are written when they changed or did not
// exist yet.
func SplitDir(ctx context.Context, dirs SplitDirs, names []string) (Summary, error) {
	masterTable, err := tsv.LoadFile(dirs.Master)
	if err != nil {
		return Summary{}, fmt.Errorf("load master table: %w", err)
	}
	master := masterTable.TextMap()

	var sum Summary
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		fr := splitFile(master, dirs, name)
		if fr.Err != nil {
			log.Warn().Err(fr.Err).Str("file", name).Msg("Skipping table")
		} else {
			log.Info().Str("file", name).Int("updated", fr.Modified).Msg("Split master translations")
		}
		sum = sum.Add(fr)
	}
	return sum, nil
}

func splitFile(master map[string]string, dirs SplitDirs, name string) FileResult {
	fr := FileResult{Name: name}

	en, err := tsv.LoadFile(filepath.Join(dirs.English, name))
	if err != nil {
		fr.Err = fmt.Errorf("load english: %w", err)
		return fr
	}

	outPath := filepath.Join(dirs.Output, name)
	current, err := tsv.LoadFile(outPath)
	created := false
	switch {
	case errors.Is(err, tsv.ErrMissingFile):
		current, created = nil, true
	case err != nil:
		fr.Err = fmt.Errorf("load output: %w", err)
		return fr
	}

	split, n := SplitMaster(master, en, current)
	fr.Modified = n
	if n == 0 && !created {
		return fr
	}
	if err := tsv.WriteFile(outPath, split); err != nil {
		fr.Err = fmt.Errorf("write output: %w", err)
	}
	return fr
}
