package compare

import (
	"context"
	"strings"

	"github.com/standardhub/stdsync/internal/corpus"
	"github.com/standardhub/stdsync/internal/remote"
	"github.com/standardhub/stdsync/internal/utils"
)

// CompareWithRemote discovers the local files for a category (base set plus
// the category's subset) and classifies them against the remote manifest for
// the same filter. Local-only paths are removed, remote-only paths are
// added.
func (c *Comparator) CompareWithRemote(ctx context.Context, localRoot, category string, src remote.Source) (*Result, error) {
	if strings.TrimSpace(category) == "" {
		return nil, &ComparisonError{Reason: "category cannot be blank"}
	}
	if !utils.DirExists(localRoot) {
		return nil, &ComparisonError{Reason: "local root does not exist", Path: localRoot}
	}

	ignore := corpus.NewIgnoreList(localRoot)
	ignore.Load()

	localPaths, err := corpus.DiscoverFiles(localRoot, category, ignore)
	if err != nil {
		return nil, &ComparisonError{Reason: "failed to discover local files", Path: localRoot, Err: err}
	}
	localManifest := c.CreateManifest(localRoot, localPaths)

	remoteManifest, err := src.Manifest(ctx, category)
	if err != nil {
		return nil, &ComparisonError{Reason: "failed to acquire remote manifest", Err: err}
	}

	// remote is the target state: local-only => removed, remote-only => added
	return Partition(localManifest, remoteManifest), nil
}
