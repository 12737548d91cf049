// Package syncer drives an end-to-end incremental sync: it decides whether
// the remote materialization needs a refresh, copies files under an explicit
// overwrite policy and records the resulting state on success.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/standardhub/stdsync/internal/cache"
	"github.com/standardhub/stdsync/internal/compare"
	"github.com/standardhub/stdsync/internal/corpus"
	"github.com/standardhub/stdsync/internal/remote"
	"github.com/standardhub/stdsync/internal/syncstate"
	"github.com/standardhub/stdsync/internal/utils"
)

// SyncError is a fatal, non-retryable precondition failure.
type SyncError struct {
	Msg  string
	Path string
}

func (e *SyncError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("sync failed: %s: %s", e.Msg, e.Path)
	}
	return fmt.Sprintf("sync failed: %s", e.Msg)
}

// StatsCollector observes per-file sync outcomes. Implementations must not
// affect sync correctness.
type StatsCollector interface {
	RecordCopied(path string, size int64)
	RecordSkipped(path string)
	RecordError(path string, err error)
}

// noopStats is the null object used when no collector is supplied, so call
// sites never branch on presence.
type noopStats struct{}

func (noopStats) RecordCopied(string, int64) {}
func (noopStats) RecordSkipped(string)       {}
func (noopStats) RecordError(string, error)  {}

// SyncOptions control one sync run.
type SyncOptions struct {
	Force      bool
	Verbose    bool
	ForceGit   bool
	DryRun     bool
	Categories []string
}

// FileError pairs a path with the error that kept it from syncing.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// SyncResult reports one sync run.
type SyncResult struct {
	RunID    string
	Copied   []string
	Skipped  []string
	Errors   []FileError
	HitRatio float64
	Fetched  bool
	Duration time.Duration
}

// Orchestrator combines cache, comparator and state into the sync use case.
// The cache and stats collector are both optional; correctness is identical
// with or without them.
type Orchestrator struct {
	sourceRoot string
	targetRoot string
	cache      *cache.ContentCache
	stats      StatsCollector
	cmp        *compare.Comparator
	state      *syncstate.Store
	fetcher    remote.Fetcher
	threshold  float64
}

type Option func(*Orchestrator)

func WithCache(c *cache.ContentCache) Option {
	return func(o *Orchestrator) { o.cache = c }
}

func WithStats(s StatsCollector) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.stats = s
		}
	}
}

func WithStateStore(s *syncstate.Store) Option {
	return func(o *Orchestrator) { o.state = s }
}

func WithFetcher(f remote.Fetcher) Option {
	return func(o *Orchestrator) { o.fetcher = f }
}

func WithThreshold(t float64) Option {
	return func(o *Orchestrator) { o.threshold = t }
}

func New(sourceRoot, targetRoot string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sourceRoot: sourceRoot,
		targetRoot: targetRoot,
		stats:      noopStats{},
		threshold:  DefaultHitRatioThreshold,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.cmp = compare.New(compare.WithCache(o.cache))
	return o
}

// Sync copies the source tree's category-filtered files into the target
// tree. A target file is overwritten only if force is set, it does not yet
// exist, or it is provably identical to the source; otherwise it is skipped
// to protect local edits. On success (and outside dry-run) a fresh sync
// state record supersedes the prior one; a failed sync never touches it.
func (o *Orchestrator) Sync(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	if !utils.DirExists(o.sourceRoot) {
		return nil, &SyncError{Msg: "source tree does not exist", Path: o.sourceRoot}
	}

	start := time.Now()
	result := &SyncResult{
		RunID:   uuid.NewString(),
		Copied:  []string{},
		Skipped: []string{},
	}
	log := slog.With("run_id", result.RunID)

	categories := opts.Categories
	if len(categories) == 0 {
		categories = []string{corpus.BaseCategory}
	}

	relPaths, err := o.discover(categories)
	if err != nil {
		return nil, err
	}

	result.HitRatio = CalculateCacheHitRatio(o.absSourcePaths(relPaths), o.cache)
	needFetch := opts.ForceGit || o.GitSyncNeeded(result.HitRatio)
	log.Info("sync run", "files", len(relPaths), "hit_ratio", result.HitRatio,
		"fetch", needFetch, "categories", categories, "dry_run", opts.DryRun)

	if needFetch && o.fetcher != nil {
		if err := o.fetcher.Refresh(ctx); err != nil {
			// stale materialization still syncs; the refresh failure is
			// reported, not fatal
			log.Warn("remote refresh failed, syncing from existing materialization", "error", err)
			result.Errors = append(result.Errors, FileError{Path: o.sourceRoot, Err: err})
		} else {
			result.Fetched = true
			if relPaths, err = o.discover(categories); err != nil {
				return nil, err
			}
		}
	}

	for _, relPath := range relPaths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		o.syncFile(relPath, opts, result, log)
	}

	result.Duration = time.Since(start)

	if !opts.DryRun && o.state != nil {
		manifest := o.cmp.CreateManifest(o.targetRoot, result.Copied)
		for _, p := range result.Skipped {
			if h, err := o.cmp.HashFile(filepath.Join(o.targetRoot, filepath.FromSlash(p))); err == nil {
				manifest[p] = h
			}
		}
		err := o.state.Save(&syncstate.SyncMetadata{
			Categories:    categories,
			Manifest:      manifest,
			TotalFiles:    len(result.Copied) + len(result.Skipped),
			CacheHitRatio: result.HitRatio,
			SyncDuration:  result.Duration,
		})
		if err != nil {
			return nil, fmt.Errorf("record sync state: %w", err)
		}
	}

	log.Info("sync done", "copied", len(result.Copied), "skipped", len(result.Skipped),
		"errors", len(result.Errors), "took", result.Duration)
	return result, nil
}

func (o *Orchestrator) discover(categories []string) ([]string, error) {
	ignore := corpus.NewIgnoreList(o.sourceRoot)
	ignore.Load()

	seen := make(map[string]struct{})
	var relPaths []string
	for _, category := range categories {
		files, err := corpus.DiscoverFiles(o.sourceRoot, category, ignore)
		if err != nil {
			return nil, fmt.Errorf("discover source files: %w", err)
		}
		for _, f := range files {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			relPaths = append(relPaths, f)
		}
	}
	return relPaths, nil
}

func (o *Orchestrator) absSourcePaths(relPaths []string) []string {
	abs := make([]string, len(relPaths))
	for i, p := range relPaths {
		abs[i] = filepath.Join(o.sourceRoot, filepath.FromSlash(p))
	}
	return abs
}

// syncFile applies the overwrite policy to one file. Per-file failures are
// collected, never fatal to the batch.
func (o *Orchestrator) syncFile(relPath string, opts SyncOptions, result *SyncResult, log *slog.Logger) {
	src := filepath.Join(o.sourceRoot, filepath.FromSlash(relPath))
	dst := filepath.Join(o.targetRoot, filepath.FromSlash(relPath))

	overwrite := opts.Force || !utils.FileExists(dst)
	if !overwrite {
		identical, err := o.cmp.FilesIdentical(src, dst)
		if err != nil {
			result.Errors = append(result.Errors, FileError{Path: relPath, Err: err})
			o.stats.RecordError(relPath, err)
			return
		}
		overwrite = identical
	}

	if !overwrite {
		// target exists with local changes and force is off
		if opts.Verbose {
			log.Info("skipping locally modified file", "path", relPath)
		}
		result.Skipped = append(result.Skipped, relPath)
		o.stats.RecordSkipped(relPath)
		return
	}

	if opts.DryRun {
		result.Copied = append(result.Copied, relPath)
		return
	}

	if err := utils.CopyFile(src, dst); err != nil {
		log.Warn("copy failed", "path", relPath, "error", err)
		result.Errors = append(result.Errors, FileError{Path: relPath, Err: err})
		o.stats.RecordError(relPath, err)
		return
	}

	if opts.Verbose {
		log.Info("copied", "path", relPath)
	}
	result.Copied = append(result.Copied, relPath)
	var size int64
	if info, err := os.Stat(src); err == nil {
		size = info.Size()
	}
	o.stats.RecordCopied(relPath, size)
}
