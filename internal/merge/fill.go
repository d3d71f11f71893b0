package merge

import (
	"context"
	"fmt"
	"path/filepath"

	"locsync/internal/tsv"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// serviceRows is the number of leading keyed rows in upstream tables that
// carry format metadata rather than text.
const serviceRows = 1

// FillFromPatch copies translations from a patch locale into main where
// main still shows the English text or nothing. A patch text is used only if
// it is non-empty and differs from the English text. Row order of main is kept.
// It returns the filled copy of main and the number of rows changed.
func FillFromPatch(en, main, patch *tsv.Table) (*tsv.Table, int) {
	enText := tsv.TextMapOf(lo.Drop(en.Keyed(), serviceRows))
	patchText := tsv.TextMapOf(lo.Drop(patch.Keyed(), serviceRows))

	out := main.Clone()
	updated := 0
	for i, r := range out.Rows {
		if r.Key == "" {
			continue
		}
		english := enText[r.Key]
		candidate := patchText[r.Key]
		if candidate == "" || candidate == english {
			continue
		}
		if r.Text != english && r.Text != "" {
			continue
		}
		out.Rows[i].Text = candidate
		updated++
	}
	return out, updated
}

// FillDirs names the three directories FillDir reads.
type FillDirs struct {
	English string
	Main    string
	Patch   string
}

// FillDir runs FillFromPatch for each named file and writes main tables that
// changed. Files missing from any of the three directories are skipped.
func FillDir(ctx context.Context, dirs FillDirs, names []string) (Summary, error) {
	var sum Summary
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		fr := fillFile(dirs, name)
		switch {
		case fr.Err != nil:
			log.Warn().Err(fr.Err).Str("file", name).Msg("Skipping table")
		case fr.Modified > 0:
			log.Info().Str("file", name).Int("updated", fr.Modified).Msg("Filled translations from patch")
		default:
			log.Info().Str("file", name).Msg("No translations needed")
		}
		sum = sum.Add(fr)
	}
	return sum, nil
}

func fillFile(dirs FillDirs, name string) FileResult {
	fr := FileResult{Name: name}

	en, err := tsv.LoadFile(filepath.Join(dirs.English, name))
	if err != nil {
		fr.Err = fmt.Errorf("load english: %w", err)
		return fr
	}
	mainPath := filepath.Join(dirs.Main, name)
	main, err := tsv.LoadFile(mainPath)
	if err != nil {
		fr.Err = fmt.Errorf("load main: %w", err)
		return fr
	}
	patch, err := tsv.LoadFile(filepath.Join(dirs.Patch, name))
	if err != nil {
		fr.Err = fmt.Errorf("load patch: %w", err)
		return fr
	}

	filled, n := FillFromPatch(en, main, patch)
	fr.Modified = n
	if n == 0 {
		return fr
	}
	if err := tsv.WriteFile(mainPath, filled); err != nil {
		fr.Err = fmt.Errorf("write main: %w", err)
	}
	return fr
}
