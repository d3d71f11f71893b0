// Package textstat counts characters and words in translated text files.
package textstat

import (
	"errors"
	"io/fs"
	"path/filepath"
	"regexp"
	"unicode"
	"unicode/utf8"

	"locsync/internal/textutil"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Chars returns the number of characters in text. With skipSpaces, space
// separators and tab, newline and carriage return are not counted.
func Chars(text string, skipSpaces bool) int {
	if !skipSpaces {
		return utf8.RuneCountInString(text)
	}
	n := 0
	for _, r := range text {
		if unicode.Is(unicode.Zs, r) || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		n++
	}
	return n
}

// Words returns the number of runs of letters, digits and underscores.
func Words(text string) int {
	return len(wordRe.FindAllStringIndex(text, -1))
}

// Result is the count for one file.
type Result struct {
	Name  string
	Count int
	// Missing is set when the file does not exist.
	Missing bool
}

// CountFiles applies count to every file. Missing files are reported and
// skipped; other read errors abort.
func CountFiles(paths []string, count func(string) int) ([]Result, int, error) {
	results := make([]Result, 0, len(paths))
	total := 0
	for _, p := range paths {
		text, err := textutil.ReadFile(p)
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn().Str("file", p).Msg("File not found, skipping")
			results = append(results, Result{Name: filepath.Base(p), Missing: true})
			continue
		}
		if err != nil {
			return results, total, err
		}

		n := count(text)
		total += n
		results = append(results, Result{Name: filepath.Base(p), Count: n})
	}
	return results, total, nil
}

// Formatter renders counts with the digit grouping of a language.
type Formatter struct {
	p *message.Printer
}

// NewFormatter returns a formatter for tag, for example language.Ukrainian.
func NewFormatter(tag language.Tag) *Formatter {
	return &Formatter{p: message.NewPrinter(tag)}
}

// Count formats n with grouped thousands.
func (f *Formatter) Count(n int) string {
	return f.p.Sprintf("%d", n)
}
