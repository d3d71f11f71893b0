// Package merge reconciles an upstream source table with an existing
// translation table by key.
package merge

import (
	"fmt"
	"strings"

	"locsync/internal/tsv"
)

// EmptyKeyPolicy decides what happens to rows whose key is blank.
type EmptyKeyPolicy int

const (
	// DropEmptyKeys removes blank-key rows from the merged table.
	DropEmptyKeys EmptyKeyPolicy = iota
	// KeepEmptyKeys carries the source's blank-key rows through unchanged at
	// their original positions. They are never matched against the target.
	KeepEmptyKeys
)

// ParseEmptyKeyPolicy maps "drop" and "keep" to a policy.
func ParseEmptyKeyPolicy(s string) (EmptyKeyPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop":
		return DropEmptyKeys, nil
	case "keep", "passthrough":
		return KeepEmptyKeys, nil
	default:
		return DropEmptyKeys, fmt.Errorf("unknown empty key policy %q (want drop or keep)", s)
	}
}

func (p EmptyKeyPolicy) String() string {
	if p == KeepEmptyKeys {
		return "keep"
	}
	return "drop"
}

// Options tunes Merge.
type Options struct {
	EmptyKeys EmptyKeyPolicy
}

// Result is the outcome of merging one source/target pair.
type Result struct {
	// Table is the up-to-date target table.
	Table *tsv.Table
	// Added lists source keys that were absent from the target, in source order.
	Added []string
	// Removed holds target rows whose key no longer exists upstream.
	Removed []tsv.Row
	// Modified counts rows whose text this merge introduced or changed.
	Modified int
}

// Merge produces the up-to-date target for source. A nil target is treated
// as empty. Existing non-empty translations are always kept; missing or empty
// ones are seeded with the source text. Header and tooltips follow source.
func Merge(source, target *tsv.Table, opts Options) Result {
	if target == nil {
		target = source.Empty()
	}

	srcRows := source.Keyed()
	trgRows := target.Keyed()

	// Last seen wins for duplicated target keys.
	prior := make(map[string]string, len(trgRows))
	for _, r := range trgRows {
		prior[r.Key] = r.Text
	}

	inSource := make(map[string]bool, len(srcRows))
	res := Result{Table: source.Empty()}

	for _, r := range source.Rows {
		if !r.HasKey() {
			if opts.EmptyKeys == KeepEmptyKeys {
				res.Table.Rows = append(res.Table.Rows, r)
			}
			continue
		}
		if inSource[r.Key] {
			continue
		}
		inSource[r.Key] = true

		old, existed := prior[r.Key]
		text := r.Text
		if old != "" {
			text = old
		}
		if !existed {
			res.Added = append(res.Added, r.Key)
		}
		if text != "" && (!existed || text != old) {
			res.Modified++
		}

		res.Table.Rows = append(res.Table.Rows, tsv.Row{Key: r.Key, Text: text, Tooltip: r.Tooltip})
	}

	for _, r := range trgRows {
		if !inSource[r.Key] {
			res.Removed = append(res.Removed, r)
		}
	}

	return res
}

// Changed reports whether the merge added, removed or modified anything.
func (r Result) Changed() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0 || r.Modified > 0
}

// RemovedTable wraps Removed in a table with the given header.
func (r Result) RemovedTable() *tsv.Table {
	return &tsv.Table{Header: append([]string(nil), r.Table.Header...), Rows: r.Removed}
}
