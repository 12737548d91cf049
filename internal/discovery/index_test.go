package discovery

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardhub/stdsync/internal/corpus"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := OpenIndex(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, "core", CategoryOf("docs/core/a.md"))
	assert.Equal(t, "security", CategoryOf("docs/security/nested/b.md"))
	assert.Empty(t, CategoryOf("README.md"))
	assert.Empty(t, CategoryOf("docs/orphan.md"))
	assert.Empty(t, CategoryOf("other/core/a.md"))
}

func TestIndex_UpsertGet(t *testing.T) {
	idx := newTestIndex(t)

	doc := &Document{
		Path:      "docs/core/a.md",
		Hash:      corpus.HashBytes([]byte("alpha")),
		Category:  "core",
		Size:      5,
		IndexedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, idx.Upsert(doc))

	got, err := idx.Get("docs/core/a.md")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, doc.Hash, got.Hash)
	assert.Equal(t, "core", got.Category)
	assert.Equal(t, int64(5), got.Size)
	assert.True(t, doc.IndexedAt.Equal(got.IndexedAt))

	// replace, not duplicate
	doc.Hash = corpus.HashBytes([]byte("alpha v2"))
	require.NoError(t, idx.Upsert(doc))
	count, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIndex_GetAbsent(t *testing.T) {
	idx := newTestIndex(t)

	got, err := idx.Get("docs/core/missing.md")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIndex_ByCategory(t *testing.T) {
	idx := newTestIndex(t)
	now := time.Now().UTC()
	for _, p := range []string{"docs/core/b.md", "docs/core/a.md", "docs/security/c.md"} {
		require.NoError(t, idx.Upsert(&Document{
			Path: p, Hash: corpus.HashBytes([]byte(p)), Category: CategoryOf(p), Size: 1, IndexedAt: now,
		}))
	}

	paths, err := idx.ByCategory("core")
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/core/a.md", "docs/core/b.md"}, paths)
}
