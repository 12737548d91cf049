package corpus

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// DocsDir is the directory under the corpus root that holds all
	// standards documents.
	DocsDir = "docs"

	// BaseCategory is always included in every filtered file set.
	BaseCategory = "core"
)

// CategoryPatterns returns the doublestar patterns selecting the base set
// plus the requested category's subset.
func CategoryPatterns(category string) []string {
	patterns := []string{fmt.Sprintf("%s/%s/**", DocsDir, BaseCategory)}
	if category != BaseCategory {
		patterns = append(patterns, fmt.Sprintf("%s/%s/**", DocsDir, category))
	}
	return patterns
}

// MatchesCategory reports whether the slash-normalized relative path belongs
// to the base set or the given category's subset.
func MatchesCategory(relPath, category string) bool {
	for _, pattern := range CategoryPatterns(category) {
		ok, err := doublestar.Match(pattern, relPath)
		if err != nil {
			slog.Error("bad category pattern", "pattern", pattern, "error", err)
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

// DiscoverFiles walks root and returns the slash-normalized relative paths of
// all regular files in the base set plus the requested category's subset.
// An ignore list may be nil. Unreadable entries are skipped with a warning.
func DiscoverFiles(root, category string, ignore *IgnoreList) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			slog.Warn("skipping unreadable entry", "path", p, "error", walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(root, p)
		if err != nil {
			return fmt.Errorf("rel path for %s: %w", p, err)
		}
		relPath = NormPath(relPath)

		if ignore != nil && ignore.ShouldIgnore(relPath) {
			return nil
		}
		if !MatchesCategory(relPath, category) {
			return nil
		}

		files = append(files, relPath)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover files under %s: %w", root, err)
	}

	return files, nil
}
