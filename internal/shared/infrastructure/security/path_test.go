package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPath(t *testing.T) {
	dir := t.TempDir()
	resolvedDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	file := filepath.Join(dir, "catalogs.yaml")
	require.NoError(t, os.WriteFile(file, []byte("catalogs: []\n"), 0o600))

	got, err := CleanPath(filepath.Join(dir, "sub", "..", "catalogs.yaml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(resolvedDir, "catalogs.yaml"), got)

	got, err = CleanPath(filepath.Join(resolvedDir, "new.db"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(resolvedDir, "new.db"), got)

	for _, bad := range []string{"", "  ", "a;rm -rf", "$(id).yaml", "x|y", "a\nb"} {
		_, err := CleanPath(bad)
		assert.ErrorIs(t, err, ErrForbiddenPath, bad)
	}
}

func TestCleanPath_Symlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.yaml")
	require.NoError(t, os.WriteFile(target, nil, 0o600))
	link := filepath.Join(dir, "link.yaml")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	got, err := CleanPath(link)
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(target)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCleanPathInDir(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	inside := filepath.Join(dir, "data", "chief.db")

	_, err = CleanPathInDir(inside, dir)
	require.NoError(t, err)

	_, err = CleanPathInDir(filepath.Join(dir, "..", "escape.db"), dir)
	assert.ErrorIs(t, err, ErrForbiddenPath)

	_, err = CleanPathInDir(dir+"-sibling", dir)
	assert.ErrorIs(t, err, ErrForbiddenPath)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "catalogs.yaml")
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0o600))

	f, err := Open(file)
	require.NoError(t, err)
	defer f.Close()

	_, err = Open(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Open("catalogs.yaml;ls")
	assert.ErrorIs(t, err, ErrForbiddenPath)
}
