package luatable

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// tableHeadRe matches `[local] Name = {` at the start of a line.
	tableHeadRe = regexp.MustCompile(`(?m)^[ \t]*(?:local[ \t]+)?([A-Za-z_][A-Za-z0-9_]*)[ \t]*=[ \t]*\{`)

	// rowRe matches `key = "text"` and `["key"] = "text"` with escapes.
	rowRe = regexp.MustCompile(`(\[\s*"((?:[^"\\]|\\.)+)"\s*\]|([A-Za-z0-9_]+))\s*=\s*"((?:[^"\\]|\\.)*)"`)
)

// Table is the location of one named table literal.
type Table struct {
	Name string
	// BodyStart and BodyEnd delimit the text between the braces.
	BodyStart int
	BodyEnd   int
}

// Body returns the text between the table's braces.
func (t Table) Body(src string) string {
	return src[t.BodyStart:t.BodyEnd]
}

// ExtractTables returns the top-level named tables of src in order. Headers
// that fall inside an earlier table's body are part of that table.
func ExtractTables(src string) ([]Table, error) {
	var tables []Table
	end := -1
	for _, m := range tableHeadRe.FindAllStringSubmatchIndex(src, -1) {
		if m[0] < end {
			continue
		}
		name := src[m[2]:m[3]]
		open := m[1] - 1

		closeIdx, err := MatchBrace(src, open)
		if err != nil {
			var ub *UnbalancedBracesError
			if errors.As(err, &ub) {
				ub.Table = name
			}
			return nil, err
		}
		tables = append(tables, Table{Name: name, BodyStart: open + 1, BodyEnd: closeIdx})
		end = closeIdx
	}
	return tables, nil
}

// Row is one `key = "text"` entry of a table body.
type Row struct {
	// LHS is the left-hand side as written, e.g. `name` or `["a b"]`.
	LHS string
	// Key is the unescaped local key.
	Key string
	// Text is the string literal's content, still escaped.
	Text string
	// TextStart and TextEnd delimit Text within the body.
	TextStart int
	TextEnd   int
}

// Rows returns every row of a table body in order.
func Rows(body string) []Row {
	matches := rowRe.FindAllStringSubmatchIndex(body, -1)
	rows := make([]Row, 0, len(matches))
	for _, m := range matches {
		r := Row{
			LHS:       body[m[2]:m[3]],
			Text:      body[m[8]:m[9]],
			TextStart: m[8],
			TextEnd:   m[9],
		}
		if m[4] >= 0 {
			r.Key = unescape(body[m[4]:m[5]])
		} else {
			r.Key = body[m[6]:m[7]]
		}
		rows = append(rows, r)
	}
	return rows
}

// QualifiedKey is the lookup key of a row within a named table.
func QualifiedKey(table, key string) string {
	return table + ":" + key
}

// ExtractTranslations collects the text of every row in src keyed by
// QualifiedKey. A repeated key resolves to its last row.
func ExtractTranslations(src string) (map[string]string, error) {
	tables, err := ExtractTables(src)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string)
	for _, t := range tables {
		for _, r := range Rows(t.Body(src)) {
			out[QualifiedKey(t.Name, r.Key)] = r.Text
		}
	}
	return out, nil
}

var unescapeReplacer = strings.NewReplacer(`\\`, `\`, `\"`, `"`, `\'`, `'`, `\n`, "\n", `\t`, "\t", `\r`, "\r")

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	return unescapeReplacer.Replace(s)
}

// Escape prepares plain text for a double-quoted Lua literal. Quotes that are
// not already escaped get a backslash; existing escape sequences are kept so
// text taken from another Lua file round-trips unchanged.
func Escape(s string) string {
	if !strings.ContainsAny(s, `"\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			if i+1 == len(s) {
				b.WriteString(`\\`)
				continue
			}
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
