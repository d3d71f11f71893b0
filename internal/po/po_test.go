package po

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"locsync/internal/tsv"

	"github.com/leonelquinteros/gotext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table(pairs ...string) *tsv.Table {
	t := tsv.New()
	for i := 0; i+1 < len(pairs); i += 2 {
		t.Rows = append(t.Rows, tsv.Row{Key: pairs[i], Text: pairs[i+1]})
	}
	return t
}

func TestEscapeRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, escaped string
	}{
		{`plain`, `plain`},
		{`say "hi"`, `say \"hi\"`},
		{`C:\path`, `C:\\path`},
		{`\"`, `\\\"`},
		{`end\`, `end\\`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.escaped, Escape(tt.in), tt.in)
		assert.Equal(t, tt.in, Unescape(Escape(tt.in)), tt.in)
	}
}

func TestWrite(t *testing.T) {
	t.Parallel()

	source := table("#Loc;1", "meta", "", "blank", "k1", "Hello", "k2", `say "hi"`, "k1", "Hello again")
	target := table("k1", "Привіт", "k2", `скажи "привіт"`)
	created := time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, source, target, Header{Language: "uk", SourceFile: "names.loc.tsv", Created: created}))

	want := "msgid \"\"\nmsgstr \"\"\n" +
		"\"Project-Id-Version: TSV-to-PO\\n\"\n" +
		"\"POT-Creation-Date: 2024-05-17\\n\"\n" +
		"\"Language: uk\\n\"\n" +
		"\"Content-Type: text/plain; charset=UTF-8\\n\"\n" +
		"\"X-Source-File: names.loc.tsv\\n\"\n" +
		"\nmsgctxt \"k1\"\nmsgid \"Hello again\"\nmsgstr \"Привіт\"\n" +
		"\nmsgctxt \"k2\"\nmsgid \"say \\\"hi\\\"\"\nmsgstr \"скажи \\\"привіт\\\"\"\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteParsesAsPO(t *testing.T) {
	t.Parallel()

	source := table("path", `C:\games\attila`, "quote", `the "Hun"`, "todo", "Untranslated")
	target := table("path", `C:\ігри\attila`, "quote", `"Гун"`)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, source, target, Header{Language: "uk", Created: time.Now()}))

	po := gotext.NewPo()
	po.Parse(buf.Bytes())

	assert.Equal(t, `C:\ігри\attila`, po.GetC(`C:\games\attila`, "path"))
	assert.Equal(t, `"Гун"`, po.GetC(`the "Hun"`, "quote"))
	assert.Equal(t, "Untranslated", po.GetC("Untranslated", "todo"))
}

func TestOutputName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "names.loc.po", OutputName("translation/text/db/names.loc.tsv"))
	assert.Equal(t, "plain.po", OutputName("plain"))
}

func TestExportFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "en", "names.loc.tsv")
	trg := filepath.Join(dir, "uk", "names.loc.tsv")
	require.NoError(t, tsv.WriteFile(src, table("k", "Rome")))
	require.NoError(t, tsv.WriteFile(trg, table("k", "Рим")))

	out := filepath.Join(dir, "uk", OutputName(trg))
	require.NoError(t, ExportFile(src, trg, out, Header{Language: "uk", Created: time.Now()}))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\"X-Source-File: names.loc.tsv\\n\"")
	assert.Contains(t, string(raw), "msgctxt \"k\"\nmsgid \"Rome\"\nmsgstr \"Рим\"\n")

	err = ExportFile(filepath.Join(dir, "none.tsv"), trg, out, Header{})
	assert.ErrorIs(t, err, tsv.ErrMissingFile)
}

func TestExportDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	srcDir := filepath.Join(dir, "en")
	trgDir := filepath.Join(dir, "uk")
	outDir := filepath.Join(dir, "po")
	require.NoError(t, tsv.WriteFile(filepath.Join(srcDir, "a.loc.tsv"), table("k", "A")))
	require.NoError(t, tsv.WriteFile(filepath.Join(trgDir, "a.loc.tsv"), table("k", "А")))
	require.NoError(t, tsv.WriteFile(filepath.Join(srcDir, "b.loc.tsv"), table("k", "B")))

	results, err := ExportDir(context.Background(), srcDir, trgDir, outDir, "*.loc.tsv", Header{Language: "uk", Created: time.Now()})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, filepath.Join(outDir, "a.loc.po"), results[0].Out)
	assert.FileExists(t, results[0].Out)
	assert.Empty(t, results[1].Out)
	assert.NoError(t, results[1].Err)
	assert.NoFileExists(t, filepath.Join(outDir, "b.loc.po"))

	_, err = ExportDir(context.Background(), srcDir, filepath.Join(dir, "missing"), outDir, "*.loc.tsv", Header{})
	assert.Error(t, err)
}
