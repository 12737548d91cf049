package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	resolved, err := ResolvePath("~/docs")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "docs"), resolved)

	_, err = ResolvePath("")
	assert.Error(t, err)

	abs, err := ResolvePath("./a/../b")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(abs))
}

func TestEnsureDirAndExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	assert.True(t, DirExists(dir))
	assert.False(t, FileExists(dir))

	// idempotent
	require.NoError(t, EnsureDir(dir))

	file := filepath.Join(dir, "f.md")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	assert.True(t, FileExists(file))
	assert.False(t, DirExists(file))
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.md")
	dst := filepath.Join(dir, "nested", "dst.md")
	require.NoError(t, os.WriteFile(src, []byte("content"), 0o644))

	require.NoError(t, CopyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}
