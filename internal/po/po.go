// Package po exports translated tables as GNU gettext PO files for use in
// translation-memory tools.
package po

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"locsync/internal/tsv"

	"github.com/samber/lo"
)

// Header holds the metadata written at the top of every PO file.
type Header struct {
	Language   string
	SourceFile string
	Created    time.Time
}

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Escape prepares text for a double-quoted PO string. Backslashes are
// doubled before quotes are escaped.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Unescape reverses Escape.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Write renders one PO entry per translatable source key. msgctxt is the key,
// msgid the source text and msgstr the target text or "" when the target has
// none. Blank and service keys are skipped.
func Write(w io.Writer, source, target *tsv.Table, h Header) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "msgid \"\"\nmsgstr \"\"\n")
	fmt.Fprintf(bw, "\"Project-Id-Version: TSV-to-PO\\n\"\n")
	fmt.Fprintf(bw, "\"POT-Creation-Date: %s\\n\"\n", h.Created.Format(time.DateOnly))
	fmt.Fprintf(bw, "\"Language: %s\\n\"\n", Escape(h.Language))
	fmt.Fprintf(bw, "\"Content-Type: text/plain; charset=UTF-8\\n\"\n")
	fmt.Fprintf(bw, "\"X-Source-File: %s\\n\"\n", Escape(h.SourceFile))

	srcText := source.TextMap()
	trgText := target.TextMap()
	keys := lo.Uniq(lo.Map(source.Keyed(), func(r tsv.Row, _ int) string { return r.Key }))

	for _, k := range keys {
		if strings.HasPrefix(k, tsv.ServicePrefix) {
			continue
		}
		fmt.Fprintf(bw, "\nmsgctxt \"%s\"\nmsgid \"%s\"\nmsgstr \"%s\"\n", Escape(k), Escape(srcText[k]), Escape(trgText[k]))
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write po: %w", err)
	}
	return nil
}

// ExportFile converts the source/target table pair into a PO file at out.
func ExportFile(src, trg, out string, h Header) error {
	source, err := tsv.LoadFile(src)
	if err != nil {
		return fmt.Errorf("load source: %w", err)
	}
	target, err := tsv.LoadFile(trg)
	if err != nil {
		return fmt.Errorf("load target: %w", err)
	}

	if h.SourceFile == "" {
		h.SourceFile = filepath.Base(src)
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("create po directory: %w", err)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create po file: %w", err)
	}
	if err := Write(f, source, target, h); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// OutputName is the PO file name for a table file: the final extension is
// replaced by ".po".
func OutputName(tablePath string) string {
	base := filepath.Base(tablePath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".po"
}
