// Package remote defines the transport-free seam to the corpus origin. The
// core never assumes how bytes travel; it only consumes manifests and
// materialized content through these interfaces.
package remote

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/standardhub/stdsync/internal/corpus"
)

// Source supplies, for a requested category, a remote manifest and a means
// to materialize remote bytes on demand.
type Source interface {
	// Manifest returns path -> content hash for the base set plus the
	// requested category's subset.
	Manifest(ctx context.Context, category string) (corpus.Manifest, error)

	// Fetch returns the content of one corpus file by its manifest path.
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// Fetcher refreshes the local materialization of the remote corpus (for
// example by updating a git checkout). Timeouts are the Fetcher's concern.
type Fetcher interface {
	Refresh(ctx context.Context) error
}

// DirSource serves a corpus out of a local directory tree, typically a
// checkout the Fetcher maintains.
type DirSource struct {
	root   string
	ignore *corpus.IgnoreList
}

var _ Source = (*DirSource)(nil)

func NewDirSource(root string) *DirSource {
	ignore := corpus.NewIgnoreList(root)
	ignore.Load()
	return &DirSource{root: root, ignore: ignore}
}

func (s *DirSource) Root() string { return s.root }

func (s *DirSource) Manifest(ctx context.Context, category string) (corpus.Manifest, error) {
	files, err := corpus.DiscoverFiles(s.root, category, s.ignore)
	if err != nil {
		return nil, fmt.Errorf("remote manifest: %w", err)
	}

	manifest := make(corpus.Manifest, len(files))
	for _, relPath := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hash, err := corpus.HashFile(filepath.Join(s.root, filepath.FromSlash(relPath)))
		if err != nil {
			return nil, fmt.Errorf("remote manifest hash %s: %w", relPath, err)
		}
		manifest[relPath] = hash
	}
	return manifest, nil
}

func (s *DirSource) Fetch(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(corpus.NormPath(path))))
	if err != nil {
		return nil, fmt.Errorf("remote fetch %s: %w", path, err)
	}
	return content, nil
}
