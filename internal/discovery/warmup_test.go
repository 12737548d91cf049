package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardhub/stdsync/internal/cache"
	"github.com/standardhub/stdsync/internal/corpus"
)

func writeFile(t *testing.T, root, relPath, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(relPath))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestWarmer_PopulatesCacheAndIndex(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/core/a.md", "alpha")
	writeFile(t, root, "docs/security/b.md", "bravo")
	writeFile(t, root, "README.md", "outside the docs tree")

	store, err := cache.New(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	idx := newTestIndex(t)

	w := NewWarmer(root, store, idx)
	require.True(t, w.Start(context.Background()))
	w.Wait()

	status := w.Status()
	assert.False(t, status.Running)
	assert.Equal(t, 2, status.Indexed)
	assert.NoError(t, status.LastError)
	assert.False(t, status.CompletedAt.IsZero())

	assert.True(t, store.HasContent(corpus.HashBytes([]byte("alpha"))))
	assert.True(t, store.HasContent(corpus.HashBytes([]byte("bravo"))))

	doc, err := idx.Get("docs/security/b.md")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "security", doc.Category)
}

func TestWarmer_StartIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/core/a.md", "content")

	w := NewWarmer(root, nil, nil)

	// a warm-up marked in flight refuses to start another
	w.running.Store(true)
	assert.False(t, w.Start(context.Background()))
	w.running.Store(false)

	require.True(t, w.Start(context.Background()))
	w.Wait()

	// after completion a new warm-up may start again
	assert.True(t, w.Start(context.Background()))
	w.Wait()
}

func TestWarmer_FailuresAreCapturedNotPropagated(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/core/good.md", "fine")
	bad := filepath.Join(root, "docs", "core", "bad.md")
	require.NoError(t, os.WriteFile(bad, []byte("unreadable"), 0o644))
	require.NoError(t, os.Chmod(bad, 0o000))
	t.Cleanup(func() { os.Chmod(bad, 0o644) })

	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	w := NewWarmer(root, nil, newTestIndex(t))
	require.True(t, w.Start(context.Background()))
	w.Wait()

	status := w.Status()
	assert.Equal(t, 1, status.Indexed)
	assert.Equal(t, 1, status.Skipped)
	assert.Error(t, status.LastError)
}

func TestWarmer_Cancellation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/core/a.md", "alpha")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewWarmer(root, nil, nil)
	require.True(t, w.Start(ctx))
	w.Wait()

	status := w.Status()
	assert.False(t, status.Running)
	assert.ErrorIs(t, status.LastError, context.Canceled)
	assert.WithinDuration(t, time.Now(), status.CompletedAt, time.Minute)
}
