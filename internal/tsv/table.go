// Package tsv reads, validates and writes the key/text/tooltip tables that
// hold the game's localisation strings.
package tsv

import (
	"strings"

	"locsync/internal/textutil"
)

// Columns is the expected header of every localisation table.
var Columns = []string{"key", "text", "tooltip"}

// ServicePrefix marks upstream metadata rows that are never translated.
const ServicePrefix = "#Loc;"

// Row is a single localisation record.
type Row struct {
	// Key is the stable identifier of the string.
	Key string
	// Text is the translatable payload. Absent text is the empty string.
	Text string
	// Tooltip is passed through untouched.
	Tooltip string
}

// HasKey reports whether the row has a non-blank key.
func (r Row) HasKey() bool {
	return !textutil.IsBlank(r.Key)
}

// IsService reports whether the row is upstream metadata.
func (r Row) IsService() bool {
	return strings.HasPrefix(r.Key, ServicePrefix)
}

// Table is an ordered list of rows with the header it was loaded with.
type Table struct {
	Header []string
	Rows   []Row
}

// New returns an empty table with the standard header.
func New() *Table {
	return &Table{Header: append([]string(nil), Columns...)}
}

// Empty returns an empty table sharing t's header.
func (t *Table) Empty() *Table {
	return &Table{Header: append([]string(nil), t.Header...)}
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	return &Table{
		Header: append([]string(nil), t.Header...),
		Rows:   append([]Row(nil), t.Rows...),
	}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Keyed returns the rows that have a non-blank key, in order.
func (t *Table) Keyed() []Row {
	if t == nil {
		return nil
	}
	out := make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		if r.HasKey() {
			out = append(out, r)
		}
	}
	return out
}

// TextMap builds a key → text lookup. Rows with a blank key are skipped;
// a duplicated key resolves to its last row.
func (t *Table) TextMap() map[string]string {
	m := make(map[string]string, t.Len())
	if t == nil {
		return m
	}
	for _, r := range t.Rows {
		if r.HasKey() {
			m[r.Key] = r.Text
		}
	}
	return m
}

// TextMapOf is TextMap over an arbitrary row slice.
func TextMapOf(rows []Row) map[string]string {
	m := make(map[string]string, len(rows))
	for _, r := range rows {
		if r.HasKey() {
			m[r.Key] = r.Text
		}
	}
	return m
}
