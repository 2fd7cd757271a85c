package fsutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugify-dev/plugify/internal/fsutil"
	"github.com/plugify-dev/plugify/pkg/plugify"
)

func TestWalkNonRecursive(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pplugin"), []byte("{}"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.pplugin"), []byte("{}"), 0o644))

	fs := fsutil.New()
	entries, err := fs.Walk(dir, plugify.WalkOptions{Recursive: false})
	require.NoError(t, err)

	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name] = true
	}
	assert.True(t, names["a.pplugin"])
	assert.False(t, names["b.pplugin"])
}

func TestWalkExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pplugin"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte(""), 0o644))

	fs := fsutil.New()
	entries, err := fs.Walk(dir, plugify.WalkOptions{Recursive: true, ExtensionFilter: []string{".pplugin"}})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.pplugin", entries[0].Name)
}

func TestReadMissingFileReportsNotFound(t *testing.T) {
	fs := fsutil.New()
	_, err := fs.ReadTextFile("/nonexistent/path.pplugin")
	require.Error(t, err)
	assert.ErrorIs(t, err, plugify.ErrFileNotFound)
}

func TestExistsIsDirIsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "x.txt")
	require.NoError(t, os.WriteFile(file, []byte("hi"), 0o644))

	fs := fsutil.New()
	assert.True(t, fs.Exists(dir))
	assert.True(t, fs.IsDirectory(dir))
	assert.True(t, fs.IsFile(file))
	assert.False(t, fs.IsDirectory(file))
}
