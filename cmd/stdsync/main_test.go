package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"sync", "status", "clear", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestSyncCmd_Flags(t *testing.T) {
	cmd := newSyncCmd()

	for _, flag := range []string{"force", "refresh", "dry-run", "no-cache", "warm-index", "category"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "missing flag %s", flag)
	}

	require.NoError(t, cmd.Flags().Parse([]string{"--force", "-C", "security", "-C", "testing"}))
	force, err := cmd.Flags().GetBool("force")
	require.NoError(t, err)
	assert.True(t, force)
	cats, err := cmd.Flags().GetStringSlice("category")
	require.NoError(t, err)
	assert.Equal(t, []string{"security", "testing"}, cats)
}

func TestLoadConfig_EnvThreshold(t *testing.T) {
	t.Setenv("STDSYNC_CACHE_HIT_THRESHOLD", "0.5")
	t.Setenv("STDSYNC_DATA_DIR", t.TempDir())

	cfg, err := loadConfig(rootCmd)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.HitRatioThreshold)
}
