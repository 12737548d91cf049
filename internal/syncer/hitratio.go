package syncer

import (
	"log/slog"

	"github.com/standardhub/stdsync/internal/cache"
	"github.com/standardhub/stdsync/internal/corpus"
)

// DefaultHitRatioThreshold is the cache coverage below which a remote fetch
// is considered necessary.
const DefaultHitRatioThreshold = 0.8

// CalculateCacheHitRatio returns the fraction of the given files whose
// content is already present in the cache, in [0, 1]. An empty path list or
// an absent cache yields 0.0 rather than an error.
func CalculateCacheHitRatio(paths []string, c *cache.ContentCache) float64 {
	if len(paths) == 0 || c == nil {
		return 0.0
	}

	hits := 0
	counted := 0
	for _, path := range paths {
		hash, err := corpus.HashFile(path)
		if err != nil {
			slog.Debug("skipping unhashable file in hit-ratio calc", "path", path, "error", err)
			continue
		}
		counted++
		if c.HasContent(hash) {
			hits++
		}
	}

	if counted == 0 {
		return 0.0
	}
	return float64(hits) / float64(counted)
}

// GitSyncNeeded reports whether cache coverage is too low to synthesize the
// sync purely from cache, forcing a real remote fetch. A non-positive
// threshold falls back to the default.
func GitSyncNeeded(hitRatio, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultHitRatioThreshold
	}
	return hitRatio < threshold
}

// GitSyncNeeded applies the orchestrator's configured threshold.
func (o *Orchestrator) GitSyncNeeded(hitRatio float64) bool {
	return GitSyncNeeded(hitRatio, o.threshold)
}
