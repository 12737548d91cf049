package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesCategory(t *testing.T) {
	// base set is always included
	assert.True(t, MatchesCategory("docs/core/formatting.md", "security"))
	assert.True(t, MatchesCategory("docs/core/nested/deep.md", "security"))

	// requested category subset
	assert.True(t, MatchesCategory("docs/security/auth.md", "security"))
	assert.False(t, MatchesCategory("docs/testing/unit.md", "security"))

	// outside the docs tree
	assert.False(t, MatchesCategory("README.md", "security"))
}

func writeCorpusFile(t *testing.T, root, relPath string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(relPath))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(relPath), 0o644))
}

func TestDiscoverFiles(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "docs/core/a.md")
	writeCorpusFile(t, root, "docs/security/b.md")
	writeCorpusFile(t, root, "docs/testing/c.md")
	writeCorpusFile(t, root, "docs/core/notes.tmp")
	writeCorpusFile(t, root, "README.md")

	ign := NewIgnoreList(root)
	ign.Load()

	files, err := DiscoverFiles(root, "security", ign)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"docs/core/a.md", "docs/security/b.md"}, files)

	// base category alone
	files, err = DiscoverFiles(root, BaseCategory, ign)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"docs/core/a.md"}, files)
}
