// Package luatable finds named table literals in Lua source and rewrites the
// quoted text of their `key = "text"` rows.
package luatable

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrUnbalancedBraces is matched by every *UnbalancedBracesError.
var ErrUnbalancedBraces = errors.New("unbalanced braces")

// UnbalancedBracesError reports an opening brace that is never closed.
type UnbalancedBracesError struct {
	// Table is the name of the literal being scanned, when known.
	Table string
	// Offset is the byte offset of the opening brace.
	Offset int
	// Line is the 1-based line of the opening brace.
	Line int
}

func (e *UnbalancedBracesError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s: table %s opened at line %d (offset %d) is never closed", ErrUnbalancedBraces, e.Table, e.Line, e.Offset)
	}
	return fmt.Sprintf("%s: brace at line %d (offset %d) is never closed", ErrUnbalancedBraces, e.Line, e.Offset)
}

func (e *UnbalancedBracesError) Is(target error) bool {
	return target == ErrUnbalancedBraces
}

type scanState int

const (
	stateCode scanState = iota
	stateString
	stateEscape
)

// scanner tracks whether the current byte is inside a double-quoted string.
// Only ASCII bytes change state, so stepping byte-wise is safe on UTF-8.
type scanner struct {
	state scanState
}

// step consumes c and reports whether it was structural code, that is
// outside any string literal and not one of its quotes.
func (s *scanner) step(c byte) bool {
	switch s.state {
	case stateEscape:
		s.state = stateString
		return false
	case stateString:
		switch c {
		case '\\':
			s.state = stateEscape
		case '"':
			s.state = stateCode
		}
		return false
	default:
		if c == '"' {
			s.state = stateString
			return false
		}
		return true
	}
}

// MatchBrace returns the index of the brace closing the one at open. Braces
// inside string literals do not count.
func MatchBrace(src string, open int) (int, error) {
	if open < 0 || open >= len(src) || src[open] != '{' {
		return 0, fmt.Errorf("offset %d is not an opening brace", open)
	}

	var sc scanner
	depth := 0
	for i := open; i < len(src); i++ {
		if !sc.step(src[i]) {
			continue
		}
		switch src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, &UnbalancedBracesError{Offset: open, Line: lineOf(src, open)}
}

// Normalize strips a document down to its code shape: every string literal
// becomes "" and all whitespace, Unicode spaces included, is removed. Two
// documents that differ only in text normalize to the same string.
func Normalize(src string) string {
	var b strings.Builder
	b.Grow(len(src))

	var sc scanner
	for i := 0; i < len(src); {
		c := src[i]
		if sc.state == stateCode && c >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(src[i:])
			if !unicode.IsSpace(r) {
				b.WriteString(src[i : i+size])
			}
			i += size
			continue
		}

		wasCode := sc.state == stateCode
		switch {
		case sc.step(c):
			if !unicode.IsSpace(rune(c)) {
				b.WriteByte(c)
			}
		case wasCode:
			b.WriteString(`""`)
		}
		i++
	}
	return b.String()
}

func lineOf(src string, offset int) int {
	return strings.Count(src[:offset], "\n") + 1
}
