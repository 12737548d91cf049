package discovery

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/standardhub/stdsync/internal/cache"
	"github.com/standardhub/stdsync/internal/corpus"
)

// WarmupStatus is the queryable outcome of the last (or current) warm-up.
type WarmupStatus struct {
	Running     bool
	Indexed     int
	Skipped     int
	LastError   error
	CompletedAt time.Time
}

// Warmer populates the content cache and document index from the corpus
// tree in the background. Warm-up never blocks or crashes the foreground:
// failures are captured and exposed only through Status.
type Warmer struct {
	root  string
	cache *cache.ContentCache
	index *Index

	running atomic.Bool
	wg      sync.WaitGroup

	mu     sync.Mutex
	status WarmupStatus
}

func NewWarmer(root string, c *cache.ContentCache, index *Index) *Warmer {
	return &Warmer{
		root:  root,
		cache: c,
		index: index,
	}
}

// Start launches a background warm-up. Returns false if one is already in
// flight: starting warm-up is idempotent.
func (w *Warmer) Start(ctx context.Context) bool {
	if !w.running.CompareAndSwap(false, true) {
		return false
	}

	w.mu.Lock()
	w.status = WarmupStatus{Running: true}
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
	return true
}

// Wait blocks until the current warm-up (if any) finishes. Intended for
// shutdown and tests.
func (w *Warmer) Wait() {
	w.wg.Wait()
}

// Status returns a snapshot of the warm-up state.
func (w *Warmer) Status() WarmupStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

func (w *Warmer) run(ctx context.Context) {
	indexed := 0
	skipped := 0
	var lastErr error

	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			slog.Warn("warmup: skipping unreadable entry", "path", path, "error", walkErr)
			skipped++
			lastErr = walkErr
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(w.root, path)
		if err != nil {
			skipped++
			lastErr = err
			return nil
		}
		relPath = corpus.NormPath(relPath)

		category := CategoryOf(relPath)
		if category == "" {
			return nil
		}

		if err := w.warmFile(path, relPath, category); err != nil {
			slog.Warn("warmup: skipping file", "path", relPath, "error", err)
			skipped++
			lastErr = err
			return nil
		}
		indexed++
		return nil
	})
	if err != nil {
		lastErr = err
	}

	w.mu.Lock()
	w.status = WarmupStatus{
		Indexed:     indexed,
		Skipped:     skipped,
		LastError:   lastErr,
		CompletedAt: time.Now(),
	}
	w.mu.Unlock()
	w.running.Store(false)

	slog.Debug("warmup done", "indexed", indexed, "skipped", skipped)
}

func (w *Warmer) warmFile(path, relPath, category string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	hash := corpus.HashBytes(content)
	if w.cache != nil {
		if h, err := w.cache.Put(content); err == nil {
			hash = h
		} else {
			// cache trouble degrades to index-only warm-up
			slog.Warn("warmup: cache put failed", "path", relPath, "error", err)
		}
	}

	if w.index == nil {
		return nil
	}
	return w.index.Upsert(&Document{
		Path:      relPath,
		Hash:      hash,
		Category:  category,
		Size:      int64(len(content)),
		IndexedAt: time.Now().UTC(),
	})
}
