package tsv

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Write serialises t as tab-separated lines with LF endings. Fields are
// written verbatim: quote characters are data and are never escaped.
func Write(w io.Writer, t *Table) error {
	bw := bufio.NewWriter(w)

	header := t.Header
	if len(header) == 0 {
		header = Columns
	}
	if _, err := fmt.Fprintln(bw, strings.Join(header, "\t")); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range t.Rows {
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\n", r.Key, r.Text, r.Tooltip); err != nil {
			return fmt.Errorf("write row %q: %w", r.Key, err)
		}
	}

	return bw.Flush()
}

// WriteFile writes t to path, creating parent directories as needed.
func WriteFile(path string, t *Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create table directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create table file: %w", err)
	}

	if err := Write(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
