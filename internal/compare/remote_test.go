package compare

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardhub/stdsync/internal/remote"
)

func TestCompareWithRemote(t *testing.T) {
	local := t.TempDir()
	writeFile(t, local, "docs/core/same.md", "identical")
	writeFile(t, local, "docs/core/changed.md", "local version")
	writeFile(t, local, "docs/core/local-only.md", "not on remote")
	writeFile(t, local, "docs/testing/excluded.md", "other category")

	remoteRoot := t.TempDir()
	writeFile(t, remoteRoot, "docs/core/same.md", "identical")
	writeFile(t, remoteRoot, "docs/core/changed.md", "remote version")
	writeFile(t, remoteRoot, "docs/security/remote-only.md", "new upstream doc")

	cmp := New()
	r, err := cmp.CompareWithRemote(context.Background(), local, "security", remote.NewDirSource(remoteRoot))
	require.NoError(t, err)

	assert.Equal(t, []string{"docs/security/remote-only.md"}, r.Added)
	assert.Equal(t, []string{"docs/core/changed.md"}, r.Modified)
	assert.Equal(t, []string{"docs/core/local-only.md"}, r.Removed)
	assert.Equal(t, []string{"docs/core/same.md"}, r.Unchanged)
}

func TestCompareWithRemote_BlankCategory(t *testing.T) {
	cmp := New()
	_, err := cmp.CompareWithRemote(context.Background(), t.TempDir(), "  ", remote.NewDirSource(t.TempDir()))

	var cmpErr *ComparisonError
	require.ErrorAs(t, err, &cmpErr)
	assert.Contains(t, cmpErr.Error(), "category")
}

func TestCompareWithRemote_MissingRoot(t *testing.T) {
	cmp := New()
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	_, err := cmp.CompareWithRemote(context.Background(), missing, "core", remote.NewDirSource(t.TempDir()))

	var cmpErr *ComparisonError
	require.ErrorAs(t, err, &cmpErr)
	assert.Equal(t, missing, cmpErr.Path)
}
