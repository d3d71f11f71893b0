package filewalker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestList(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.loc.tsv"))
	touch(t, filepath.Join(dir, "a.loc.tsv"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "sub", "c.loc.tsv"))

	w, err := NewWalker("*.loc.tsv")
	require.NoError(t, err)

	entries, err := w.List(dir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Rel)
	}
	assert.Equal(t, []string{"a.loc.tsv", "b.loc.tsv"}, names)
}

func TestWalk(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, filepath.Join(root, "z.lua"))
	touch(t, filepath.Join(root, "campaigns", "main", "lists.lua"))
	touch(t, filepath.Join(root, "campaigns", "main", "lists.txt"))

	w, err := NewWalker("*.lua")
	require.NoError(t, err)

	entries, err := w.Walk(root)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, filepath.Join("campaigns", "main", "lists.lua"), entries[0].Rel)
	assert.Equal(t, filepath.Join(root, "z.lua"), entries[1].Path)
}

func TestMissingRoot(t *testing.T) {
	t.Parallel()

	w, err := NewWalker("*.lua")
	require.NoError(t, err)

	_, err = w.List(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.lua")
	touch(t, file)
	_, err = w.Walk(file)
	assert.ErrorIs(t, err, ErrNotDirectory)
}

func TestInvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := NewWalker("[")
	assert.Error(t, err)
}
