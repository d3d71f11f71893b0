// Package dedup lets translators work on each distinct source text once. A
// dedup file lists every distinct text with the keys that share it and an
// empty translate column; applying it copies each translation back to all of
// those keys.
package dedup

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"locsync/internal/tsv"

	"github.com/samber/lo"
)

// Columns is the header of a dedup file.
var Columns = []string{"text", "translate", "keys"}

// Suffix is inserted before the extension of dedup file names.
const Suffix = "._dedup"

// Entry is one distinct source text.
type Entry struct {
	Text      string
	Translate string
	Keys      []string
}

// Extract groups the keyed rows of t by text. Entries are sorted by text and
// each entry's keys are sorted.
func Extract(t *tsv.Table) []Entry {
	groups := lo.GroupBy(t.Keyed(), func(r tsv.Row) string { return r.Text })

	entries := make([]Entry, 0, len(groups))
	for text, rows := range groups {
		keys := lo.Uniq(lo.Map(rows, func(r tsv.Row, _ int) string { return r.Key }))
		sort.Strings(keys)
		entries = append(entries, Entry{Text: text, Keys: keys})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Text < entries[j].Text })
	return entries
}

// Translations maps every key of a filled-in entry to its translation.
// Entries with an empty translate column are ignored.
func Translations(entries []Entry) map[string]string {
	out := make(map[string]string)
	for _, e := range entries {
		if e.Translate == "" {
			continue
		}
		for _, k := range e.Keys {
			out[k] = e.Translate
		}
	}
	return out
}

// Apply copies translations onto the rows of t with matching keys and
// returns the new table and the number of rows whose text changed.
func Apply(t *tsv.Table, entries []Entry) (*tsv.Table, int) {
	tr := Translations(entries)
	out := t.Clone()
	changed := 0
	for i, r := range out.Rows {
		text, ok := tr[r.Key]
		if !ok || text == r.Text {
			continue
		}
		out.Rows[i].Text = text
		changed++
	}
	return out, changed
}

func toTable(entries []Entry) *tsv.Table {
	t := &tsv.Table{Header: append([]string(nil), Columns...)}
	for _, e := range entries {
		t.Rows = append(t.Rows, tsv.Row{Key: e.Text, Text: e.Translate, Tooltip: strings.Join(e.Keys, ",")})
	}
	return t
}

func fromTable(t *tsv.Table) []Entry {
	entries := make([]Entry, 0, len(t.Rows))
	for _, r := range t.Rows {
		keys := lo.Compact(lo.Map(strings.Split(r.Tooltip, ","), func(k string, _ int) string {
			return strings.TrimSpace(k)
		}))
		entries = append(entries, Entry{Text: r.Key, Translate: r.Text, Keys: keys})
	}
	return entries
}

// OutputPath is the dedup file for tablePath inside dir, for example
// names.loc.tsv becomes dir/names.loc._dedup.tsv.
func OutputPath(dir, tablePath string) string {
	base := filepath.Base(tablePath)
	ext := filepath.Ext(base)
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+Suffix+ext)
}

// ExtractFile writes the dedup file of the table at tablePath into dir and
// returns its path and the number of distinct texts.
func ExtractFile(tablePath, dir string) (string, int, error) {
	t, err := tsv.LoadFile(tablePath)
	if err != nil {
		return "", 0, fmt.Errorf("load table: %w", err)
	}

	entries := Extract(t)
	out := OutputPath(dir, tablePath)
	if err := tsv.WriteFile(out, toTable(entries)); err != nil {
		return "", 0, fmt.Errorf("write dedup file: %w", err)
	}
	return out, len(entries), nil
}

// LoadFile reads a dedup file.
func LoadFile(path string) ([]Entry, error) {
	t, err := tsv.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return fromTable(t), nil
}

// ApplyFile copies the translations of the dedup file at dedupPath into the
// table at tablePath. The table is rewritten only when rows changed.
func ApplyFile(dedupPath, tablePath string) (int, error) {
	entries, err := LoadFile(dedupPath)
	if err != nil {
		return 0, fmt.Errorf("load dedup file: %w", err)
	}
	t, err := tsv.LoadFile(tablePath)
	if err != nil {
		return 0, fmt.Errorf("load table: %w", err)
	}

	applied, n := Apply(t, entries)
	if n == 0 {
		return 0, nil
	}
	if err := tsv.WriteFile(tablePath, applied); err != nil {
		return 0, fmt.Errorf("write table: %w", err)
	}
	return n, nil
}
