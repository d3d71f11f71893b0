package cli

import (
	"os"
	"path/filepath"
	"testing"

	"locsync/internal/tsv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTable(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// withStdin replaces os.Stdin with a pipe holding input.
func withStdin(t *testing.T, input string) {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString(input)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	old := os.Stdin
	os.Stdin = r
	t.Cleanup(func() {
		os.Stdin = old
		r.Close()
	})
}

// useDirs points the configuration at a fresh source and translation tree.
func useDirs(t *testing.T) (src, trg, obsolete string) {
	t.Helper()
	root := t.TempDir()
	src = filepath.Join(root, "en")
	trg = filepath.Join(root, "uk")
	obsolete = filepath.Join(root, "obsolete")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.MkdirAll(trg, 0o755))

	t.Setenv("LOCSYNC_CONFIG", filepath.Join(root, "absent.yaml"))
	t.Setenv("SOURCE_DIR", src)
	t.Setenv("TRANSLATION_DIR", trg)
	t.Setenv("OBSOLETE_DIR", obsolete)
	t.Setenv("TABLE_PATTERN", "*.loc.tsv")
	t.Setenv("EMPTY_KEY_POLICY", "drop")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "console")
	return src, trg, obsolete
}

const (
	validTable     = "key\ttext\ttooltip\nk\tHello\t\nj\tBye\t\n"
	badHeaderTable = "key\ttext\tnote\nk\tHello\t\n"
	duplicateTable = "key\ttext\ttooltip\nk\ta\t\nj\tb\t\nk\tc\t\n"
	blankKeyTable  = "key\ttext\ttooltip\n\tlost\t\nk\tHello\t\n"
)

func TestCheckTables(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTable(t, filepath.Join(dir, "a.loc.tsv"), badHeaderTable)
	writeTable(t, filepath.Join(dir, "b.loc.tsv"), duplicateTable)
	writeTable(t, filepath.Join(dir, "c.loc.tsv"), blankKeyTable)
	writeTable(t, filepath.Join(dir, "d.loc.tsv"), "key\ttext\ttooltip\nk\ta\tb\tc\n")

	tests := []struct {
		name   string
		strict bool
		// errs and warns hold the expected problems of a, b, c and d.
		errs  [][]string
		warns [][]string
	}{
		{
			name:   "tolerant",
			strict: false,
			errs: [][]string{
				{"row 1: expected columns"},
				{`row 2: duplicate key "k" in rows 2, 4`},
				nil,
				{"row 2: 4 fields, expected at most 3"},
			},
			warns: [][]string{nil, nil, {"row 2: empty key in rows 2"}, nil},
		},
		{
			name:   "strict",
			strict: true,
			errs: [][]string{
				{"row 1: expected columns"},
				{`row 2: duplicate key "k" in rows 2, 4`},
				{"row 2: empty key in rows 2"},
				{"row 2: 4 fields, expected at most 3"},
			},
			warns: [][]string{nil, nil, nil, nil},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			checks, err := checkTables(dir, "*.loc.tsv", tt.strict)
			require.NoError(t, err)
			require.Len(t, checks, 4)

			for i, c := range checks {
				assert.Len(t, c.validation.Errors, len(tt.errs[i]), c.name)
				for j, want := range tt.errs[i] {
					assert.Contains(t, c.validation.Errors[j].String(), want, c.name)
				}
				assert.Len(t, c.validation.Warnings, len(tt.warns[i]), c.name)
				for j, want := range tt.warns[i] {
					assert.Contains(t, c.validation.Warnings[j].String(), want, c.name)
				}
				assert.Equal(t, len(tt.errs[i]), c.logProblems(), c.name)
			}
		})
	}
}

func TestPlaceholderMismatches(t *testing.T) {
	t.Parallel()

	source := &tsv.Table{Header: tsv.Columns, Rows: []tsv.Row{
		{Key: "coins", Text: "You have %d coins"},
		{Key: "turns", Text: "{0} turns left"},
		{Key: "same", Text: "Untouched %s"},
	}}
	target := &tsv.Table{Header: tsv.Columns, Rows: []tsv.Row{
		{Key: "coins", Text: "У вас монети {0}"},
		{Key: "turns", Text: "Залишилось ходів: {0}"},
		{Key: "same", Text: "Untouched %s"},
		{Key: "extra", Text: "%d"},
	}}

	got := placeholderMismatches(source, target)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], `key "coins"`)
	assert.Contains(t, got[0], "missing %d")
	assert.Contains(t, got[0], "unexpected {0}")
}

func TestConfirmWithoutTerminal(t *testing.T) {
	withStdin(t, "y\n")
	assert.False(t, confirm("Proceed anyway?"))
}

func TestRunMergeValidationGate(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		yes     bool
		wantErr bool
	}{
		{"valid tables merge", validTable, false, false},
		{"problems abort without a terminal", duplicateTable, false, true},
		{"problems proceed with yes", duplicateTable, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, trg, _ := useDirs(t)
			writeTable(t, filepath.Join(src, "names.loc.tsv"), tt.source)
			withStdin(t, "y\n")

			err := runMerge(true, tt.yes, false)
			target := filepath.Join(trg, "names.loc.tsv")
			if tt.wantErr {
				assert.ErrorIs(t, err, errValidationFailed)
				assert.NoFileExists(t, target)
				return
			}
			require.NoError(t, err)
			assert.FileExists(t, target)
		})
	}
}

func TestRunMergeBlankKeysFailStrictGate(t *testing.T) {
	src, trg, _ := useDirs(t)
	writeTable(t, filepath.Join(src, "names.loc.tsv"), validTable)
	writeTable(t, filepath.Join(trg, "names.loc.tsv"), blankKeyTable)
	withStdin(t, "")

	err := runMerge(true, false, false)
	assert.ErrorIs(t, err, errValidationFailed)
}

func TestRunValidate(t *testing.T) {
	src, trg, _ := useDirs(t)
	writeTable(t, filepath.Join(src, "names.loc.tsv"), validTable)

	writeTable(t, filepath.Join(trg, "names.loc.tsv"), "key\ttext\ttooltip\nk\tПривіт %d\t\n\tblank\t\n")
	assert.NoError(t, runValidate(""))

	writeTable(t, filepath.Join(trg, "names.loc.tsv"), duplicateTable)
	assert.ErrorIs(t, runValidate(""), errValidationFailed)

	assert.NoError(t, runValidate(src))
}
