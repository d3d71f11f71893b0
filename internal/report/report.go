// Package report measures how much of each source table has been translated.
package report

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"locsync/internal/filewalker"
	"locsync/internal/tsv"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Options tunes coverage counting.
type Options struct {
	// MetadataRows is the number of leading keyed rows that are not strings.
	// Negative values count as zero.
	MetadataRows int
	// Placeholders lists texts that mark rows as not translatable.
	Placeholders []string
}

// Stats is the coverage of one table.
type Stats struct {
	Name         string
	Total        int
	Translated   int
	Untranslated int
	// Missing is set when no translated table exists yet.
	Missing bool
}

// Percent is the translated share rounded to a whole percent.
func (s Stats) Percent() int {
	if s.Total == 0 {
		return 0
	}
	return int(math.RoundToEven(float64(s.Translated) / float64(s.Total) * 100))
}

func (o Options) countable(t *tsv.Table) []tsv.Row {
	rows := lo.Drop(t.Keyed(), max(o.MetadataRows, 0))
	return lo.Reject(rows, func(r tsv.Row, _ int) bool {
		return lo.Contains(o.Placeholders, r.Text)
	})
}

// Coverage counts the rows of source whose target text exists and differs
// from the source text. Keys missing from target count as untranslated.
func Coverage(source, target *tsv.Table, opts Options) Stats {
	targetText := tsv.TextMapOf(opts.countable(target))

	var s Stats
	for _, r := range opts.countable(source) {
		s.Total++
		if text, ok := targetText[r.Key]; ok && text != r.Text {
			s.Translated++
		}
	}
	s.Untranslated = s.Total - s.Translated
	return s
}

// Report is the coverage of a whole directory.
type Report struct {
	Files      []Stats
	Total      int
	Translated int
}

// Percent is the overall translated share rounded to two decimals.
func (r Report) Percent() float64 {
	if r.Total == 0 {
		return 0
	}
	return math.Round(float64(r.Translated)/float64(r.Total)*100*100) / 100
}

func (r Report) add(s Stats) Report {
	r.Files = append(r.Files, s)
	r.Total += s.Total
	r.Translated += s.Translated
	return r
}

// Dir measures every source table matching pattern against the table of the
// same name in targetDir. A missing target reports zeros; unreadable tables
// are logged and left out.
func Dir(ctx context.Context, sourceDir, targetDir, pattern string, opts Options) (Report, error) {
	w, err := filewalker.NewWalker(pattern)
	if err != nil {
		return Report{}, err
	}
	entries, err := w.List(sourceDir)
	if err != nil {
		return Report{}, fmt.Errorf("list source tables: %w", err)
	}

	var rep Report
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		target, err := tsv.LoadFile(filepath.Join(targetDir, e.Rel))
		if errors.Is(err, tsv.ErrMissingFile) {
			rep = rep.add(Stats{Name: e.Rel, Missing: true})
			continue
		}
		if err != nil {
			log.Warn().Err(err).Str("file", e.Rel).Msg("Skipping table")
			continue
		}
		source, err := tsv.LoadFile(e.Path)
		if err != nil {
			log.Warn().Err(err).Str("file", e.Rel).Msg("Skipping table")
			continue
		}

		s := Coverage(source, target, opts)
		s.Name = e.Rel
		rep = rep.add(s)
	}
	return rep, nil
}
