// Package cache implements the content-addressable store the sync core uses
// to avoid recomputing and retransferring identical content. Blobs are kept
// on disk keyed by their SHA-256 hash, fronted by an in-memory LRU layer.
package cache

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/standardhub/stdsync/internal/corpus"
	"github.com/standardhub/stdsync/internal/utils"
)

const (
	// hotEntries bounds the in-memory layer.
	hotEntries = 512

	// hotMaxBlobSize keeps large blobs out of the in-memory layer.
	hotMaxBlobSize = 1 << 20
)

// Error is a typed cache failure: corruption, permission loss or an
// unreadable/unwritable store. Callers may bypass the cache and recompute.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("cache %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrCorrupted marks an entry whose stored bytes no longer hash to its key.
var ErrCorrupted = fmt.Errorf("cache entry corrupted")

// Stats is a snapshot of the hit/miss counters.
type Stats struct {
	Hits   uint64
	Misses uint64
}

// ContentCache is a content-addressable blob store. It is safe for
// concurrent use; the background warm-up worker and the foreground sync
// share one instance.
type ContentCache struct {
	rootDir string
	hot     *lru.Cache[string, []byte]
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// New opens (or creates) a content cache rooted at rootDir.
func New(rootDir string) (*ContentCache, error) {
	if err := utils.EnsureDir(rootDir); err != nil {
		return nil, &Error{Op: "open", Path: rootDir, Err: err}
	}

	hot, err := lru.New[string, []byte](hotEntries)
	if err != nil {
		return nil, fmt.Errorf("create hot layer: %w", err)
	}

	return &ContentCache{
		rootDir: rootDir,
		hot:     hot,
	}, nil
}

// RootDir returns the on-disk location of the store.
func (c *ContentCache) RootDir() string { return c.rootDir }

// entryPath shards entries by the first two hash characters, git-style.
func (c *ContentCache) entryPath(hash string) string {
	return filepath.Join(c.rootDir, hash[:2], hash)
}

// Put stores content under its SHA-256 hash and returns the hash. It is
// idempotent: identical content produces the same hash with at most one
// physical write. Re-putting present content counts as a hit, a fresh write
// as a miss.
func (c *ContentCache) Put(content []byte) (string, error) {
	hash := corpus.HashBytes(content)
	path := c.entryPath(hash)

	if utils.FileExists(path) {
		c.hits.Add(1)
		c.addHot(hash, content)
		return hash, nil
	}
	c.misses.Add(1)

	if err := utils.EnsureParent(path); err != nil {
		return "", &Error{Op: "put", Path: path, Err: err}
	}

	// Write-temp-then-rename so a reader never sees a partial blob. A
	// concurrent double-write is benign: both rename the same content.
	tmp, err := os.CreateTemp(filepath.Dir(path), hash+".tmp.*")
	if err != nil {
		return "", &Error{Op: "put", Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return "", &Error{Op: "put", Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return "", &Error{Op: "put", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return "", &Error{Op: "put", Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", &Error{Op: "put", Path: path, Err: err}
	}
	success = true

	c.addHot(hash, content)
	slog.Debug("cache put", "hash", hash, "size", len(content))
	return hash, nil
}

// Get returns the content stored under hash, or ok=false if absent. A stored
// entry that no longer hashes to its key surfaces a *Error wrapping
// ErrCorrupted.
func (c *ContentCache) Get(hash string) ([]byte, bool, error) {
	if !corpus.ValidHash(hash) {
		c.misses.Add(1)
		return nil, false, nil
	}

	if content, ok := c.hot.Get(hash); ok {
		c.hits.Add(1)
		return content, true, nil
	}

	path := c.entryPath(hash)
	content, err := os.ReadFile(path)
	if err != nil {
		c.misses.Add(1)
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, &Error{Op: "get", Path: path, Err: err}
	}

	if corpus.HashBytes(content) != hash {
		c.misses.Add(1)
		c.hot.Remove(hash)
		return nil, false, &Error{Op: "get", Path: path, Err: ErrCorrupted}
	}

	c.hits.Add(1)
	c.addHot(hash, content)
	return content, true, nil
}

// HasContent reports whether the hash is present, counting toward the
// hit/miss ratio.
func (c *ContentCache) HasContent(hash string) bool {
	if corpus.ValidHash(hash) {
		if c.hot.Contains(hash) || utils.FileExists(c.entryPath(hash)) {
			c.hits.Add(1)
			return true
		}
	}
	c.misses.Add(1)
	return false
}

// Stats returns a snapshot of the hit/miss counters.
func (c *ContentCache) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}

// HitRatio returns hits/(hits+misses), or 0 before any lookup.
func (c *ContentCache) HitRatio() float64 {
	s := c.Stats()
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

func (c *ContentCache) addHot(hash string, content []byte) {
	if len(content) <= hotMaxBlobSize {
		c.hot.Add(hash, content)
	}
}
