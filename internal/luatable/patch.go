package luatable

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// ErrTableNotFound is returned by Patch when a table named in Patcher.Tables
// is not a top-level literal of the document.
var ErrTableNotFound = errors.New("table not found")

// KeyMode selects how a row's local key becomes a translation lookup key.
type KeyMode int

const (
	// KeyPerTable looks rows up by QualifiedKey(table, key).
	KeyPerTable KeyMode = iota
	// KeyFlat looks rows up by their local key.
	KeyFlat
	// KeyPrefixed looks rows up by prefix + "_" + key, or the local key when
	// the prefix is empty.
	KeyPrefixed
)

func (m KeyMode) String() string {
	switch m {
	case KeyPerTable:
		return "per-table"
	case KeyFlat:
		return "flat"
	case KeyPrefixed:
		return "prefixed"
	default:
		return fmt.Sprintf("KeyMode(%d)", int(m))
	}
}

// Patcher substitutes translations into the rows of named table literals.
type Patcher struct {
	Mode   KeyMode
	Prefix string
	// Tables restricts patching to these table names; empty means all.
	Tables []string
	// Translations maps lookup keys to replacement text.
	Translations map[string]string
	// Baselines hold original-language texts. A translation equal to any of
	// them for the same key is not a translation and is never inserted.
	Baselines []map[string]string
}

func (p *Patcher) lookupKey(table, key string) string {
	switch p.Mode {
	case KeyPerTable:
		return QualifiedKey(table, key)
	case KeyPrefixed:
		if p.Prefix != "" {
			return p.Prefix + "_" + key
		}
	}
	return key
}

func (p *Patcher) isBaseline(key, text string) bool {
	for _, b := range p.Baselines {
		if orig, ok := b[key]; ok && orig == text {
			return true
		}
	}
	return false
}

// replacement is a pending rewrite of src[start:end].
type replacement struct {
	start, end int
	text       string
}

// Patch returns src with translated row texts and the number of rows that
// changed. Only the content of the string literals is rewritten. Unbalanced
// braces abort the whole document, and so does a name in Tables that has no
// top-level literal.
func (p *Patcher) Patch(src string) (string, int, error) {
	tables, err := ExtractTables(src)
	if err != nil {
		return "", 0, err
	}
	missing := lo.Reject(p.Tables, func(name string, _ int) bool {
		return lo.ContainsBy(tables, func(t Table) bool { return t.Name == name })
	})
	if len(missing) > 0 {
		return "", 0, fmt.Errorf("%w: %s is not a top-level table", ErrTableNotFound, strings.Join(missing, ", "))
	}

	var reps []replacement
	for _, t := range tables {
		if len(p.Tables) > 0 && !lo.Contains(p.Tables, t.Name) {
			continue
		}
		for _, r := range Rows(t.Body(src)) {
			key := p.lookupKey(t.Name, r.Key)
			text := p.Translations[key]
			if text == "" || p.isBaseline(key, text) {
				continue
			}
			escaped := Escape(text)
			if escaped == r.Text {
				continue
			}
			reps = append(reps, replacement{
				start: t.BodyStart + r.TextStart,
				end:   t.BodyStart + r.TextEnd,
				text:  escaped,
			})
		}
	}

	if len(reps) == 0 {
		return src, 0, nil
	}

	var b strings.Builder
	b.Grow(len(src))
	last := 0
	for _, r := range reps {
		b.WriteString(src[last:r.start])
		b.WriteString(r.text)
		last = r.end
	}
	b.WriteString(src[last:])
	return b.String(), len(reps), nil
}
