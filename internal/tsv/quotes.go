package tsv

import "strings"

// UnescapeQuotes undoes CSV-style quoting in a single field: one pair of
// wrapping quotes is removed and doubled quotes collapse to one.
func UnescapeQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	for strings.Contains(s, `""`) {
		s = strings.ReplaceAll(s, `""`, `"`)
	}
	return s
}

// UnescapeTable applies UnescapeQuotes to the text column and returns the
// repaired table and the number of rows that changed.
func UnescapeTable(t *Table) (*Table, int) {
	out := t.Clone()
	changed := 0
	for i, r := range out.Rows {
		fixed := UnescapeQuotes(r.Text)
		if fixed != r.Text {
			out.Rows[i].Text = fixed
			changed++
		}
	}
	return out, changed
}
