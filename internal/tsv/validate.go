package tsv

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// ValidateOptions controls how strict Validate is.
type ValidateOptions struct {
	// EmptyKeyIsError turns blank-key rows from warnings into errors.
	EmptyKeyIsError bool
}

// Validation is the outcome of validating one table.
type Validation struct {
	Errors   []Violation
	Warnings []Violation
}

// OK reports whether no errors were found. Warnings do not count.
func (v *Validation) OK() bool {
	return len(v.Errors) == 0
}

// Err returns a *MalformedTableError for the errors, or nil.
func (v *Validation) Err() error {
	if v.OK() {
		return nil
	}
	return &MalformedTableError{Violations: v.Errors}
}

// Validate checks the header against Columns, blank keys and duplicated
// non-empty keys. Row numbers count the header as row 1.
func Validate(t *Table, opts ValidateOptions) *Validation {
	v := &Validation{}

	if !slices.Equal(t.Header, Columns) {
		v.Errors = append(v.Errors, Violation{
			Row:  1,
			Kind: ErrHeader,
			Msg:  fmt.Sprintf("expected columns %v, got %v", Columns, t.Header),
		})
	}

	var emptyRows []int
	seen := make(map[string]int, len(t.Rows))
	var dupKeys []string
	dupRows := make(map[string][]int)

	for i, r := range t.Rows {
		rowNum := i + 2
		if !r.HasKey() {
			emptyRows = append(emptyRows, rowNum)
			continue
		}
		if first, ok := seen[r.Key]; ok {
			if _, listed := dupRows[r.Key]; !listed {
				dupKeys = append(dupKeys, r.Key)
				dupRows[r.Key] = []int{first}
			}
			dupRows[r.Key] = append(dupRows[r.Key], rowNum)
			continue
		}
		seen[r.Key] = rowNum
	}

	if len(emptyRows) > 0 {
		viol := Violation{
			Row:  emptyRows[0],
			Kind: ErrEmptyKey,
			Msg:  "empty key in rows " + joinInts(emptyRows),
		}
		if opts.EmptyKeyIsError {
			v.Errors = append(v.Errors, viol)
		} else {
			v.Warnings = append(v.Warnings, viol)
		}
	}

	for _, k := range dupKeys {
		v.Errors = append(v.Errors, Violation{
			Row:  dupRows[k][0],
			Kind: ErrDuplicateKey,
			Keys: []string{k},
			Msg:  fmt.Sprintf("duplicate key %q in rows %s", k, joinInts(dupRows[k])),
		})
	}

	return v
}

func joinInts(ns []int) string {
	return strings.Join(lo.Map(ns, func(n int, _ int) string { return strconv.Itoa(n) }), ", ")
}
