package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/samber/lo"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Printer renders a Report as an aligned text table.
type Printer struct {
	header *color.Color
	done   *color.Color
	todo   *color.Color
	nums   *message.Printer
}

// NewPrinter returns a printer; colour escapes are emitted only when
// colorize is set.
func NewPrinter(colorize bool) *Printer {
	p := &Printer{
		header: color.New(color.Bold, color.FgCyan),
		done:   color.New(color.FgGreen),
		todo:   color.New(color.FgYellow),
		nums:   message.NewPrinter(language.English),
	}
	for _, c := range []*color.Color{p.header, p.done, p.todo} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// bar draws one block per full ten percent.
func bar(pct int) string {
	return strings.Repeat("█", pct/10)
}

// Print writes one line per file followed by the overall summary.
func (p *Printer) Print(w io.Writer, r Report) error {
	width := lo.Max(lo.Map(r.Files, func(s Stats, _ int) int { return len(s.Name) })) + 2
	width = max(width, len("File")+2)

	var b strings.Builder
	b.WriteString(p.header.Sprintf("%-*s  Total  Done  Todo  %%", width, "File"))
	b.WriteByte('\n')

	for _, s := range r.Files {
		pct := s.Percent()
		line := fmt.Sprintf("%-*s  %5d  %4d  %4d  %3d%%", width, s.Name, s.Total, s.Translated, s.Untranslated, pct)
		if pct >= 10 {
			line += " " + bar(pct)
		}
		if s.Total > 0 && s.Untranslated == 0 {
			line = p.done.Sprint(line)
		} else if s.Missing || pct < 50 {
			line = p.todo.Sprint(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if r.Total == 0 {
		b.WriteString("No rows to count.\n")
	} else {
		b.WriteString(p.header.Sprint("=== SUMMARY ==="))
		b.WriteByte('\n')
		b.WriteString(p.nums.Sprintf("Translated %d of %d rows (%.2f%% overall).\n", r.Translated, r.Total, r.Percent()))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
