package fsutil

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

func TestFindFilesByExtension_RecursiveAndSorted(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.hcl"))
	touch(t, filepath.Join(dir, "nested", "deep", "a.hcl"))
	touch(t, filepath.Join(dir, "ignored.txt"))

	files, err := FindFilesByExtension(dir, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "b.hcl"),
		filepath.Join(dir, "nested", "deep", "a.hcl"),
	}, files)
}

func TestFindFilesByExtension_FileRoot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workspace.hcl")
	touch(t, path)

	files, err := FindFilesByExtension(path, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestFindFilesByExtension_FileRootWrongExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	touch(t, path)

	files, err := FindFilesByExtension(path, ".hcl")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFindFilesByExtension_MissingRoot(t *testing.T) {
	_, err := FindFilesByExtension(filepath.Join(t.TempDir(), "absent"), ".hcl")
	require.Error(t, err)
}

func TestFindFilesByExtension_EmptyExtensionPanics(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = FindFilesByExtension(t.TempDir(), "")
	})
}
