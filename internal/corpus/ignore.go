package corpus

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFileName is an optional per-corpus ignore file at the corpus root,
// using gitignore syntax.
const IgnoreFileName = ".stdsyncignore"

var defaultIgnoreLines = []string{
	IgnoreFileName,
	// editors
	".vscode",
	".idea",
	// general excludes
	".git",
	"*.tmp",
	"*.log",
	"logs/",
	// OS-specific
	".DS_Store",
	"Thumbs.db",
}

// IgnoreList decides which relative paths are excluded from manifests and
// sync operations.
type IgnoreList struct {
	baseDir string
	ignore  *gitignore.GitIgnore
}

func NewIgnoreList(baseDir string) *IgnoreList {
	return &IgnoreList{baseDir: baseDir}
}

// Load compiles the default rules plus any rules found in the corpus's
// ignore file. Safe to call again to pick up changes.
func (l *IgnoreList) Load() {
	lines := make([]string, 0, len(defaultIgnoreLines))
	lines = append(lines, defaultIgnoreLines...)

	ignorePath := filepath.Join(l.baseDir, IgnoreFileName)
	if file, err := os.Open(ignorePath); err == nil {
		defer file.Close()

		rules := 0
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			lines = append(lines, line)
			rules++
		}
		slog.Debug("loaded ignore rules", "path", ignorePath, "rules", rules)
	}

	l.ignore = gitignore.CompileIgnoreLines(lines...)
}

// ShouldIgnore reports whether the slash-normalized relative path is
// excluded. An unloaded list ignores nothing beyond the defaults.
func (l *IgnoreList) ShouldIgnore(relPath string) bool {
	if l.ignore == nil {
		l.Load()
	}
	return l.ignore.MatchesPath(relPath)
}
