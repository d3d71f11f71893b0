package tsv

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"locsync/internal/textutil"
)

var (
	// ErrMissingFile is returned when a table file does not exist.
	ErrMissingFile = errors.New("missing file")
	// ErrMalformedTable marks a table whose shape or keys are invalid.
	ErrMalformedTable = errors.New("malformed table")
	// ErrDuplicateKey marks a non-empty key that occurs more than once.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrEmptyKey marks a row whose key is blank.
	ErrEmptyKey = errors.New("empty key")
	// ErrHeader marks a header that does not match Columns.
	ErrHeader = errors.New("unexpected header")
	// ErrColumnCount marks a line with more fields than the header.
	ErrColumnCount = errors.New("too many fields")
)

// Violation is a single problem found in a table.
type Violation struct {
	// Row is 1-based and counts the header as row 1; 0 means the whole table.
	Row int
	// Kind is one of the package's sentinel errors.
	Kind error
	// Keys lists the offending key values, if any.
	Keys []string
	// Msg is a human-readable description.
	Msg string
}

func (v Violation) String() string {
	if v.Row > 0 {
		return fmt.Sprintf("row %d: %s", v.Row, v.Msg)
	}
	return v.Msg
}

// MalformedTableError lists every violation found in a table.
type MalformedTableError struct {
	Path       string
	Violations []Violation
}

func (e *MalformedTableError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	name := e.Path
	if name == "" {
		name = "table"
	}
	return fmt.Sprintf("%s: %s: %s", name, ErrMalformedTable, strings.Join(parts, "; "))
}

// Is makes errors.Is match ErrMalformedTable and the kind of any violation.
func (e *MalformedTableError) Is(target error) bool {
	if target == ErrMalformedTable {
		return true
	}
	for _, v := range e.Violations {
		if v.Kind == target {
			return true
		}
	}
	return false
}

// Load parses a table without checking header names. Input is decoded
// lossily; the header must have exactly len(Columns) fields and no data line
// may have more. Short lines are padded with empty fields.
func Load(r io.Reader) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	return Parse(textutil.Decode(raw))
}

// Parse is Load for already decoded text.
func Parse(text string) (*Table, error) {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil, &MalformedTableError{Violations: []Violation{{
			Kind: ErrHeader,
			Msg:  "missing header line",
		}}}
	}

	header := strings.Split(lines[0], "\t")
	var violations []Violation
	if len(header) != len(Columns) {
		violations = append(violations, Violation{
			Row:  1,
			Kind: ErrColumnCount,
			Msg:  fmt.Sprintf("header has %d columns, expected %d", len(header), len(Columns)),
		})
	}

	t := &Table{Header: header, Rows: make([]Row, 0, len(lines)-1)}
	for i, line := range lines[1:] {
		fields := strings.Split(line, "\t")
		if len(fields) > len(Columns) {
			violations = append(violations, Violation{
				Row:  i + 2,
				Kind: ErrColumnCount,
				Msg:  fmt.Sprintf("%d fields, expected at most %d", len(fields), len(Columns)),
			})
			continue
		}
		for len(fields) < len(Columns) {
			fields = append(fields, "")
		}
		t.Rows = append(t.Rows, Row{Key: fields[0], Text: fields[1], Tooltip: fields[2]})
	}

	if len(violations) > 0 {
		return nil, &MalformedTableError{Violations: violations}
	}
	return t, nil
}

// LoadFile loads the table at path. A missing file yields an error matching
// ErrMissingFile.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	t, err := Load(f)
	if err != nil {
		var me *MalformedTableError
		if errors.As(err, &me) {
			me.Path = path
		}
		return nil, err
	}
	return t, nil
}

// LoadFileOrEmpty is LoadFile that treats a missing file as an empty table
// with the standard header.
func LoadFileOrEmpty(path string) (*Table, bool, error) {
	t, err := LoadFile(path)
	if errors.Is(err, ErrMissingFile) {
		return New(), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return t, true, nil
}

// LoadStrict loads a table and validates it with blank keys treated as
// errors. It fails with a *MalformedTableError listing every violation.
func LoadStrict(r io.Reader) (*Table, error) {
	t, err := Load(r)
	if err != nil {
		return nil, err
	}
	v := Validate(t, ValidateOptions{EmptyKeyIsError: true})
	if err := v.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// splitLines splits on LF, drops a trailing CR from every line and ignores
// a final empty line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
