package syncer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardhub/stdsync/internal/cache"
)

func TestCalculateCacheHitRatio_Defined(t *testing.T) {
	store, err := cache.New(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	// empty path list and absent cache are both 0.0, not errors
	assert.Equal(t, 0.0, CalculateCacheHitRatio(nil, store))
	assert.Equal(t, 0.0, CalculateCacheHitRatio([]string{}, store))
	assert.Equal(t, 0.0, CalculateCacheHitRatio([]string{"/tmp/whatever"}, nil))
}

func TestCalculateCacheHitRatio_PartialCoverage(t *testing.T) {
	dir := t.TempDir()
	cached := filepath.Join(dir, "cached.md")
	uncached := filepath.Join(dir, "uncached.md")
	require.NoError(t, os.WriteFile(cached, []byte("in cache"), 0o644))
	require.NoError(t, os.WriteFile(uncached, []byte("not in cache"), 0o644))

	store, err := cache.New(filepath.Join(dir, "cache"))
	require.NoError(t, err)
	_, err = store.Put([]byte("in cache"))
	require.NoError(t, err)

	ratio := CalculateCacheHitRatio([]string{cached, uncached}, store)
	assert.Equal(t, 0.5, ratio)

	ratio = CalculateCacheHitRatio([]string{cached}, store)
	assert.Equal(t, 1.0, ratio)
}

func TestGitSyncNeeded_DefaultThreshold(t *testing.T) {
	assert.True(t, GitSyncNeeded(0.7, DefaultHitRatioThreshold))
	assert.False(t, GitSyncNeeded(0.9, DefaultHitRatioThreshold))

	// non-positive threshold falls back to the default
	assert.True(t, GitSyncNeeded(0.7, 0))
	assert.False(t, GitSyncNeeded(0.9, 0))
}

func TestGitSyncNeeded_OverriddenThreshold(t *testing.T) {
	// overriding to 0.5 flips both default-threshold answers
	assert.False(t, GitSyncNeeded(0.7, 0.5))
	assert.True(t, GitSyncNeeded(0.4, 0.5))
	assert.False(t, GitSyncNeeded(0.9, 0.5))
}
