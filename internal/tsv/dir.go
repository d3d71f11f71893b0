package tsv

import (
	"fmt"

	"locsync/internal/filewalker"

	"github.com/rs/zerolog/log"
)

// LoadDirTexts merges the key → text maps of every table in dir whose name
// matches pattern. Files are read in name order, so a key defined in several
// files resolves to the last one. Unreadable files are logged and skipped.
func LoadDirTexts(dir, pattern string) (map[string]string, error) {
	w, err := filewalker.NewWalker(pattern)
	if err != nil {
		return nil, err
	}
	entries, err := w.List(dir)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	texts := make(map[string]string)
	for _, e := range entries {
		t, err := LoadFile(e.Path)
		if err != nil {
			log.Warn().Err(err).Str("file", e.Rel).Msg("Skipping table")
			continue
		}
		for k, v := range t.TextMap() {
			texts[k] = v
		}
	}
	return texts, nil
}
