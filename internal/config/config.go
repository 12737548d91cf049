// Package config consolidates every environment and flag read into one
// value constructed once and threaded through constructors.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/standardhub/stdsync/internal/syncer"
	"github.com/standardhub/stdsync/internal/utils"
)

// EnvPrefix namespaces all environment overrides: STDSYNC_CACHE_DIR,
// STDSYNC_CACHE_HIT_THRESHOLD, STDSYNC_DATA_DIR, STDSYNC_SOURCE_DIR.
const EnvPrefix = "STDSYNC"

var (
	home, _        = os.UserHomeDir()
	DefaultDataDir = filepath.Join(home, "standards")
)

// Config is the single configuration value of the process.
type Config struct {
	// DataDir is the consumer's local directory tree (the sync target).
	DataDir string

	// SourceDir is the local materialization of the remote corpus
	// (the sync source).
	SourceDir string

	// CacheDir overrides where the content cache and sync state live.
	// Empty means the platform default cache directory.
	CacheDir string

	// StatePath explicitly overrides the sync state file location.
	StatePath string

	// HitRatioThreshold is the cache coverage below which a remote fetch
	// is forced.
	HitRatioThreshold float64

	// Categories to sync; empty means just the base set.
	Categories []string
}

// DefaultCacheDir returns the platform cache directory for this tool.
func DefaultCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve platform cache dir: %w", err)
	}
	return filepath.Join(base, "stdsync"), nil
}

// FromViper builds the Config from an already-bound viper instance
// (flags > environment > defaults).
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DataDir:           v.GetString("data_dir"),
		SourceDir:         v.GetString("source_dir"),
		CacheDir:          v.GetString("cache_dir"),
		StatePath:         v.GetString("state_path"),
		HitRatioThreshold: v.GetFloat64("cache_hit_threshold"),
		Categories:        v.GetStringSlice("categories"),
	}

	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
	if cfg.HitRatioThreshold <= 0 {
		cfg.HitRatioThreshold = syncer.DefaultHitRatioThreshold
	}

	var err error
	if cfg.DataDir, err = utils.ResolvePath(cfg.DataDir); err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	if cfg.SourceDir != "" {
		if cfg.SourceDir, err = utils.ResolvePath(cfg.SourceDir); err != nil {
			return nil, fmt.Errorf("resolve source dir: %w", err)
		}
	}
	if cfg.CacheDir == "" {
		if cfg.CacheDir, err = DefaultCacheDir(); err != nil {
			return nil, err
		}
	} else if cfg.CacheDir, err = utils.ResolvePath(cfg.CacheDir); err != nil {
		return nil, fmt.Errorf("resolve cache dir: %w", err)
	}

	return cfg, nil
}

// Validate checks the invariants the rest of the system relies on.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data dir cannot be empty")
	}
	if c.HitRatioThreshold <= 0 || c.HitRatioThreshold > 1 {
		return fmt.Errorf("cache hit threshold must be in (0, 1], got %v", c.HitRatioThreshold)
	}
	for _, cat := range c.Categories {
		if cat == "" {
			return fmt.Errorf("categories must be non-empty strings")
		}
	}
	return nil
}

// ContentCacheDir is where cache blobs live.
func (c *Config) ContentCacheDir() string {
	return filepath.Join(c.CacheDir, "content")
}

// IndexPath is where the discovery index database lives.
func (c *Config) IndexPath() string {
	return filepath.Join(c.CacheDir, "index.db")
}
