package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardhub/stdsync/internal/syncer"
)

func newBoundViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(newBoundViper(t))
	require.NoError(t, err)

	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, syncer.DefaultHitRatioThreshold, cfg.HitRatioThreshold)
	assert.Contains(t, cfg.CacheDir, "stdsync")
	assert.NoError(t, cfg.Validate())
}

func TestFromViper_EnvOverrides(t *testing.T) {
	t.Setenv("STDSYNC_CACHE_DIR", filepath.Join(t.TempDir(), "cachehome"))
	t.Setenv("STDSYNC_CACHE_HIT_THRESHOLD", "0.5")
	t.Setenv("STDSYNC_DATA_DIR", filepath.Join(t.TempDir(), "data"))

	cfg, err := FromViper(newBoundViper(t))
	require.NoError(t, err)

	assert.Contains(t, cfg.CacheDir, "cachehome")
	assert.Equal(t, 0.5, cfg.HitRatioThreshold)
	assert.Contains(t, cfg.DataDir, "data")
}

func TestFromViper_HomeExpansion(t *testing.T) {
	t.Setenv("STDSYNC_DATA_DIR", "~/standards-docs")

	cfg, err := FromViper(newBoundViper(t))
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(cfg.DataDir, "~"))
	assert.True(t, strings.HasSuffix(cfg.DataDir, "standards-docs"))
}

func TestValidate(t *testing.T) {
	cfg := &Config{DataDir: "/tmp/x", HitRatioThreshold: 0.8}
	assert.NoError(t, cfg.Validate())

	assert.Error(t, (&Config{DataDir: "", HitRatioThreshold: 0.8}).Validate())
	assert.Error(t, (&Config{DataDir: "/tmp/x", HitRatioThreshold: 1.5}).Validate())
	assert.Error(t, (&Config{DataDir: "/tmp/x", HitRatioThreshold: 0.8, Categories: []string{""}}).Validate())
}

func TestDerivedPaths(t *testing.T) {
	cfg := &Config{CacheDir: "/tmp/stdsync-cache"}
	assert.Equal(t, filepath.Join("/tmp/stdsync-cache", "content"), cfg.ContentCacheDir())
	assert.Equal(t, filepath.Join("/tmp/stdsync-cache", "index.db"), cfg.IndexPath())
}
