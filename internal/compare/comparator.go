// Package compare implements the stateless comparison engine: file and tree
// equality, manifest construction and manifest-level diffing.
package compare

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/standardhub/stdsync/internal/cache"
	"github.com/standardhub/stdsync/internal/corpus"
)

// ComparisonError reports a comparison that could not be made: a required
// file missing where both are mandated, a blank category, or a non-existent
// comparison root.
type ComparisonError struct {
	Reason string
	Path   string
	Err    error
}

func (e *ComparisonError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("comparison failed: %s: %s", e.Reason, e.Path)
	}
	return fmt.Sprintf("comparison failed: %s", e.Reason)
}

func (e *ComparisonError) Unwrap() error { return e.Err }

// memoEntry reuses a computed hash while the file's size and mtime are
// unchanged.
type memoEntry struct {
	size    int64
	modTime time.Time
	hash    string
}

// Comparator hashes and compares files and trees. The content cache is
// optional: behavior is identical without it, only recomputation cost
// differs.
type Comparator struct {
	cache *cache.ContentCache

	mu    sync.Mutex
	memo  map[string]memoEntry
	group singleflight.Group
}

type Option func(*Comparator)

// WithCache routes hashed content through a content cache so later
// operations can avoid recomputation and refetching.
func WithCache(c *cache.ContentCache) Option {
	return func(cmp *Comparator) {
		cmp.cache = c
	}
}

func New(opts ...Option) *Comparator {
	cmp := &Comparator{
		memo: make(map[string]memoEntry),
	}
	for _, opt := range opts {
		opt(cmp)
	}
	return cmp
}

// HashFile returns the SHA-256 hash of the file at path. Results are
// memoized against size+mtime, duplicate concurrent requests for the same
// path are collapsed, and hashed content is stored in the cache when one is
// configured.
func (c *Comparator) HashFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	if entry, ok := c.memo[path]; ok && entry.size == info.Size() && entry.modTime.Equal(info.ModTime()) {
		c.mu.Unlock()
		return entry.hash, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(path, func() (any, error) {
		content, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}

		var hash string
		if c.cache != nil {
			h, err := c.cache.Put(content)
			if err != nil {
				// degraded mode: cache unavailable, hash directly
				slog.Warn("cache unavailable, hashing directly", "path", path, "error", err)
				hash = corpus.HashBytes(content)
			} else {
				hash = h
			}
		} else {
			hash = corpus.HashBytes(content)
		}

		c.mu.Lock()
		c.memo[path] = memoEntry{size: info.Size(), modTime: info.ModTime(), hash: hash}
		c.mu.Unlock()
		return hash, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// FilesIdentical reports whether two files have identical content. Differing
// sizes answer false without reading content; a missing file on either side
// answers false rather than erroring.
func (c *Comparator) FilesIdentical(a, b string) (bool, error) {
	infoA, err := os.Stat(a)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	infoB, err := os.Stat(b)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	if infoA.Size() != infoB.Size() {
		return false, nil
	}
	if filepath.Clean(a) == filepath.Clean(b) {
		return true, nil
	}

	hashA, err := c.HashFile(a)
	if err != nil {
		return false, err
	}
	hashB, err := c.HashFile(b)
	if err != nil {
		return false, err
	}
	return hashA == hashB, nil
}

// CreateManifest hashes the given root-relative paths into a manifest.
// Unreadable or missing paths are skipped with a warning rather than
// aborting the batch.
func (c *Comparator) CreateManifest(root string, relPaths []string) corpus.Manifest {
	manifest := make(corpus.Manifest, len(relPaths))
	for _, relPath := range relPaths {
		relPath = corpus.NormPath(relPath)
		hash, err := c.HashFile(filepath.Join(root, filepath.FromSlash(relPath)))
		if err != nil {
			slog.Warn("skipping unreadable file", "path", relPath, "error", err)
			continue
		}
		manifest[relPath] = hash
	}
	return manifest
}

// DetectModifications returns the root-relative paths whose current hash
// differs from the base manifest, plus paths absent from it entirely. Paths
// present only in the base manifest are deliberately not reported; removal
// detection is a separate, broader contract.
func (c *Comparator) DetectModifications(base corpus.Manifest, root string, currentPaths []string) []string {
	var modified []string
	for _, relPath := range currentPaths {
		relPath = corpus.NormPath(relPath)
		hash, err := c.HashFile(filepath.Join(root, filepath.FromSlash(relPath)))
		if err != nil {
			slog.Warn("skipping unhashable file", "path", relPath, "error", err)
			continue
		}
		if baseHash, ok := base[relPath]; !ok || baseHash != hash {
			modified = append(modified, relPath)
		}
	}
	return modified
}

// DiffData describes two files side by side.
type DiffData struct {
	Identical bool
	SizeA     int64
	SizeB     int64
	HashA     string
	HashB     string
	MTimeA    time.Time
	MTimeB    time.Time
}

// Diff returns size, hash and mtime data for both files. Unlike
// FilesIdentical, both files must exist; a missing file surfaces a
// *ComparisonError.
func (c *Comparator) Diff(a, b string) (*DiffData, error) {
	infoA, err := os.Stat(a)
	if err != nil {
		return nil, &ComparisonError{Reason: "file does not exist", Path: a, Err: err}
	}
	infoB, err := os.Stat(b)
	if err != nil {
		return nil, &ComparisonError{Reason: "file does not exist", Path: b, Err: err}
	}

	hashA, err := c.HashFile(a)
	if err != nil {
		return nil, &ComparisonError{Reason: "failed to hash", Path: a, Err: err}
	}
	hashB, err := c.HashFile(b)
	if err != nil {
		return nil, &ComparisonError{Reason: "failed to hash", Path: b, Err: err}
	}

	return &DiffData{
		Identical: hashA == hashB,
		SizeA:     infoA.Size(),
		SizeB:     infoB.Size(),
		HashA:     hashA,
		HashB:     hashB,
		MTimeA:    infoA.ModTime(),
		MTimeB:    infoB.ModTime(),
	}, nil
}
