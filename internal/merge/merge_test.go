package merge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"locsync/internal/tsv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table(rows ...tsv.Row) *tsv.Table {
	t := tsv.New()
	t.Rows = rows
	return t
}

func row(key, text string) tsv.Row {
	return tsv.Row{Key: key, Text: text}
}

func TestMergeScenario(t *testing.T) {
	t.Parallel()

	src := table(row("k1", "Hello"), row("k2", "World"))
	trg := table(row("k1", "Bonjour"))

	res := Merge(src, trg, Options{})

	assert.Equal(t, []tsv.Row{row("k1", "Bonjour"), row("k2", "World")}, res.Table.Rows)
	assert.Equal(t, []string{"k2"}, res.Added)
	assert.Empty(t, res.Removed)
	assert.Equal(t, 1, res.Modified)
}

func TestMergeRules(t *testing.T) {
	t.Parallel()

	src := table(
		tsv.Row{Key: "keep", Text: "Sword", Tooltip: "true"},
		row("empty", "Shield"),
		row("new", "Bow"),
		row("same", "Spear"),
		row("dup", "first"),
		row("dup", "second"),
	)
	trg := table(
		tsv.Row{Key: "keep", Text: "Меч", Tooltip: "stale"},
		row("empty", ""),
		row("same", "Spear"),
		row("gone", "Старе"),
		row("dup", "старий"),
		row("dup", "новий"),
	)

	res := Merge(src, trg, Options{})

	assert.Equal(t, []tsv.Row{
		{Key: "keep", Text: "Меч", Tooltip: "true"},
		row("empty", "Shield"),
		row("new", "Bow"),
		row("same", "Spear"),
		row("dup", "новий"),
	}, res.Table.Rows)
	assert.Equal(t, []string{"new"}, res.Added)
	assert.Equal(t, []tsv.Row{row("gone", "Старе")}, res.Removed)
	assert.Equal(t, 2, res.Modified, "empty seeded and new added")
}

func TestMergeNilTarget(t *testing.T) {
	t.Parallel()

	src := table(row("a", "A"), row("b", ""))
	res := Merge(src, nil, Options{})

	assert.Equal(t, src.Rows, res.Table.Rows)
	assert.Equal(t, []string{"a", "b"}, res.Added)
	assert.Equal(t, 1, res.Modified, "empty text is not a modification")
}

func TestMergeIdempotent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		src  *tsv.Table
		trg  *tsv.Table
	}{
		{"empty target", table(row("a", "A"), row("b", "B")), table()},
		{"partial", table(row("a", "A"), row("b", "B"), row("c", "")), table(row("b", "Б"), row("x", "X"))},
		{"blank keys", table(row(" ", "meta"), row("a", "A")), table(row("", "junk"), row("a", ""))},
		{"duplicates", table(row("a", "1"), row("a", "2")), table(row("a", ""), row("a", "Б"))},
	}

	for _, tc := range cases {
		tc := tc
		for _, policy := range []EmptyKeyPolicy{DropEmptyKeys, KeepEmptyKeys} {
			policy := policy
			t.Run(tc.name+"/"+policy.String(), func(t *testing.T) {
				t.Parallel()

				opts := Options{EmptyKeys: policy}
				first := Merge(tc.src, tc.trg, opts)
				second := Merge(tc.src, first.Table, opts)

				assert.Equal(t, first.Table.Rows, second.Table.Rows)
				assert.Empty(t, second.Added)
				assert.Empty(t, second.Removed)
				assert.Zero(t, second.Modified)
				assert.False(t, second.Changed())
			})
		}
	}
}

func TestMergePreservesTranslations(t *testing.T) {
	t.Parallel()

	src := table(row("a", "Apple"), row("b", "Banana"), row("c", "Cherry"))
	trg := table(row("c", "Вишня"), row("a", "Яблуко"))

	res := Merge(src, trg, Options{})
	got := res.Table.TextMap()

	assert.Equal(t, "Яблуко", got["a"])
	assert.Equal(t, "Вишня", got["c"])
	assert.Equal(t, "Banana", got["b"])
	assert.Equal(t, []string{"b"}, res.Added)
}

func TestMergeEmptyKeys(t *testing.T) {
	t.Parallel()

	src := table(row("", "header"), row("a", "A"), row("  ", "spacer"))
	trg := table(row("", "old header"), row("\t", "x"), row("a", "А"))

	dropped := Merge(src, trg, Options{EmptyKeys: DropEmptyKeys})
	assert.Equal(t, []tsv.Row{row("a", "А")}, dropped.Table.Rows)
	assert.Empty(t, dropped.Added)
	assert.Empty(t, dropped.Removed)

	kept := Merge(src, trg, Options{EmptyKeys: KeepEmptyKeys})
	assert.Equal(t, []tsv.Row{row("", "header"), row("a", "А"), row("  ", "spacer")}, kept.Table.Rows)
	assert.Empty(t, kept.Added)
	assert.Empty(t, kept.Removed)
}

func TestParseEmptyKeyPolicy(t *testing.T) {
	t.Parallel()

	p, err := ParseEmptyKeyPolicy("Keep")
	require.NoError(t, err)
	assert.Equal(t, KeepEmptyKeys, p)

	p, err = ParseEmptyKeyPolicy("")
	require.NoError(t, err)
	assert.Equal(t, DropEmptyKeys, p)

	_, err = ParseEmptyKeyPolicy("maybe")
	assert.Error(t, err)
}

func writeTable(t *testing.T, path string, rows ...tsv.Row) {
	t.Helper()
	require.NoError(t, tsv.WriteFile(path, table(rows...)))
}

func readTable(t *testing.T, path string) *tsv.Table {
	t.Helper()
	tbl, err := tsv.LoadFile(path)
	require.NoError(t, err)
	return tbl
}

func TestMergeDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dirs := Dirs{
		Source:   filepath.Join(root, "src"),
		Target:   filepath.Join(root, "trg"),
		Obsolete: filepath.Join(root, "obsolete"),
	}

	writeTable(t, filepath.Join(dirs.Source, "names.loc.tsv"), row("n1", "Alda"), row("n2", "Cairo"))
	writeTable(t, filepath.Join(dirs.Target, "names.loc.tsv"), row("n1", "Альда"), row("n0", "Рим"))
	writeTable(t, filepath.Join(dirs.Source, "units.loc.tsv"), row("u1", "Spearmen"))
	require.NoError(t, os.WriteFile(filepath.Join(dirs.Source, "broken.loc.tsv"), []byte("key\ttext\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dirs.Source, "readme.txt"), []byte("ignored"), 0o644))

	sum, err := MergeDir(context.Background(), dirs, DirOptions{Pattern: "*.loc.tsv"})
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Done)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 2, sum.Added)
	assert.Equal(t, 1, sum.Removed)
	assert.Equal(t, 2, sum.Modified)
	require.Len(t, sum.Files, 3)
	assert.Equal(t, "broken.loc.tsv", sum.Files[0].Name)
	assert.ErrorIs(t, sum.Files[0].Err, tsv.ErrMalformedTable)

	names := readTable(t, filepath.Join(dirs.Target, "names.loc.tsv"))
	assert.Equal(t, []tsv.Row{row("n1", "Альда"), row("n2", "Cairo")}, names.Rows)

	units := readTable(t, filepath.Join(dirs.Target, "units.loc.tsv"))
	assert.Equal(t, []tsv.Row{row("u1", "Spearmen")}, units.Rows)

	archived := readTable(t, filepath.Join(dirs.Obsolete, "names.loc.tsv"))
	assert.Equal(t, []tsv.Row{row("n0", "Рим")}, archived.Rows)
	assert.NoFileExists(t, filepath.Join(dirs.Obsolete, "units.loc.tsv"))

	// A second run changes nothing and keeps the archive.
	again, err := MergeDir(context.Background(), dirs, DirOptions{Pattern: "*.loc.tsv"})
	require.NoError(t, err)
	assert.Zero(t, again.Added+again.Removed+again.Modified)
	assert.Equal(t, archived.Rows, readTable(t, filepath.Join(dirs.Obsolete, "names.loc.tsv")).Rows)
}

func TestMergeDirArchiveAccumulates(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dirs := Dirs{
		Source:   filepath.Join(root, "src"),
		Target:   filepath.Join(root, "trg"),
		Obsolete: filepath.Join(root, "obsolete"),
	}
	name := "names.loc.tsv"

	writeTable(t, filepath.Join(dirs.Source, name), row("b", "B"), row("c", "C"))
	writeTable(t, filepath.Join(dirs.Target, name), row("a", "А"), row("b", "Б"), row("c", "В"))
	_, err := MergeDir(context.Background(), dirs, DirOptions{Pattern: "*.loc.tsv"})
	require.NoError(t, err)

	writeTable(t, filepath.Join(dirs.Source, name), row("c", "C"))
	_, err = MergeDir(context.Background(), dirs, DirOptions{Pattern: "*.loc.tsv"})
	require.NoError(t, err)

	archived := readTable(t, filepath.Join(dirs.Obsolete, name))
	assert.Equal(t, []tsv.Row{row("a", "А"), row("b", "Б")}, archived.Rows)
}

func TestMergeDirDryRun(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dirs := Dirs{Source: filepath.Join(root, "src"), Target: filepath.Join(root, "trg"), Obsolete: filepath.Join(root, "obs")}
	writeTable(t, filepath.Join(dirs.Source, "a.loc.tsv"), row("k", "v"))

	sum, err := MergeDir(context.Background(), dirs, DirOptions{Pattern: "*.loc.tsv", DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Added)
	assert.NoDirExists(t, dirs.Target)
}

func TestMergeDirCancelled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dirs := Dirs{Source: filepath.Join(root, "src"), Target: filepath.Join(root, "trg"), Obsolete: filepath.Join(root, "obs")}
	writeTable(t, filepath.Join(dirs.Source, "a.loc.tsv"), row("k", "v"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := MergeDir(ctx, dirs, DirOptions{Pattern: "*.loc.tsv"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMergeDirMissingSource(t *testing.T) {
	t.Parallel()

	_, err := MergeDir(context.Background(), Dirs{Source: filepath.Join(t.TempDir(), "none")}, DirOptions{Pattern: "*.loc.tsv"})
	assert.Error(t, err)
}
