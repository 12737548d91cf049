// Package syncstate persists the record of the last successful sync and
// classifies current file sets against it. Writes are atomic
// (write-temp-then-rename) so readers only ever observe a complete prior or
// complete new state.
package syncstate

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/goccy/go-json"

	"github.com/standardhub/stdsync/internal/corpus"
	"github.com/standardhub/stdsync/internal/utils"
)

const (
	// SchemaVersion is the version written to new state files.
	SchemaVersion = 1

	// StateFileName is the file name under the resolved state directory.
	StateFileName = "sync_state.json"
)

// supportedSchemaVersions lists the versions Load will trust. Anything else
// is treated as no state at all, never partially.
var supportedSchemaVersions = []int{SchemaVersion}

// ValidationError reports malformed metadata caught before any disk I/O.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// SyncStateError wraps an I/O failure during state persistence, naming the
// failing path.
type SyncStateError struct {
	Path string
	Err  error
}

func (e *SyncStateError) Error() string {
	return fmt.Sprintf("sync state %s: %v", e.Path, e.Err)
}

func (e *SyncStateError) Unwrap() error { return e.Err }

// RecordMetadata carries optional bookkeeping about the sync that produced a
// record.
type RecordMetadata struct {
	TotalFiles     int     `json:"total_files"`
	CacheHitRatio  float64 `json:"cache_hit_ratio"`
	SyncDurationMS int64   `json:"sync_duration_ms"`
}

// Record is the durable state of the last successful sync. Records are
// wholly superseded on the next successful sync, never mutated in place.
type Record struct {
	SchemaVersion int             `json:"version"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceVersion string          `json:"source_version,omitempty"`
	Categories    []string        `json:"categories"`
	Manifest      corpus.Manifest `json:"manifest"`
	Metadata      RecordMetadata  `json:"metadata"`
}

// SyncMetadata is the input to Save.
type SyncMetadata struct {
	SourceVersion string
	Categories    []string
	Manifest      corpus.Manifest
	TotalFiles    int
	CacheHitRatio float64
	SyncDuration  time.Duration
}

// ResolveStatePath picks the state file location: explicit path, then the
// cache-directory override, then the platform cache directory. Paths get
// home-directory expansion.
func ResolveStatePath(explicit, cacheDirOverride string) (string, error) {
	if explicit != "" {
		return utils.ResolvePath(explicit)
	}
	if cacheDirOverride != "" {
		dir, err := utils.ResolvePath(cacheDirOverride)
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, StateFileName), nil
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve platform cache dir: %w", err)
	}
	return filepath.Join(cacheDir, "stdsync", StateFileName), nil
}

// Store reads and writes the sync state file at one resolved path.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// FilePath returns the resolved state file path.
func (s *Store) FilePath() string { return s.path }

func validate(meta *SyncMetadata) error {
	if meta == nil {
		return &ValidationError{Msg: "metadata cannot be nil"}
	}
	if meta.Categories == nil {
		return &ValidationError{Msg: "categories must be a list of strings"}
	}
	for _, cat := range meta.Categories {
		if cat == "" {
			return &ValidationError{Msg: "categories must be non-empty strings"}
		}
	}
	for path, hash := range meta.Manifest {
		if !corpus.ValidHash(hash) {
			return &ValidationError{Msg: fmt.Sprintf("invalid hash for file %q: %q", path, hash)}
		}
	}
	return nil
}

// Save validates the metadata, then atomically replaces the state file.
// Validation failures leave the prior state untouched; so does any write
// failure, since the write happens in a temp file renamed into place.
func (s *Store) Save(meta *SyncMetadata) error {
	if err := validate(meta); err != nil {
		return err
	}

	record := &Record{
		SchemaVersion: SchemaVersion,
		Timestamp:     time.Now().UTC(),
		SourceVersion: meta.SourceVersion,
		Categories:    meta.Categories,
		Manifest:      meta.Manifest,
		Metadata: RecordMetadata{
			TotalFiles:     meta.TotalFiles,
			CacheHitRatio:  meta.CacheHitRatio,
			SyncDurationMS: meta.SyncDuration.Milliseconds(),
		},
	}
	if record.Manifest == nil {
		record.Manifest = corpus.Manifest{}
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return &SyncStateError{Path: s.path, Err: err}
	}

	if err := s.writeAtomic(data); err != nil {
		slog.Error("failed to persist sync state", "path", s.path, "error", err)
		return &SyncStateError{Path: s.path, Err: err}
	}

	slog.Debug("sync state saved", "path", s.path, "files", record.Metadata.TotalFiles)
	return nil
}

// writeAtomic writes data to a temp file in the state directory and renames
// it into place. The temp file is removed on any failure.
func (s *Store) writeAtomic(data []byte) error {
	if err := utils.EnsureParent(s.path); err != nil {
		return fmt.Errorf("ensure state directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename temp state file: %w", err)
	}

	success = true
	return nil
}

// Load returns the last recorded state, or nil when no usable state exists:
// missing file, unreadable file, parse failure, missing required keys or an
// unsupported schema version all yield nil. Callers treat nil as "do a full
// sync".
func (s *Store) Load() *Record {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("sync state unreadable, treating as absent", "path", s.path, "error", err)
		}
		return nil
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		slog.Warn("sync state unparsable, treating as absent", "path", s.path, "error", err)
		return nil
	}

	if !slices.Contains(supportedSchemaVersions, record.SchemaVersion) {
		slog.Warn("sync state schema not supported, treating as absent",
			"path", s.path, "version", record.SchemaVersion)
		return nil
	}
	if record.Timestamp.IsZero() || record.Categories == nil || record.Manifest == nil {
		slog.Warn("sync state missing required keys, treating as absent", "path", s.path)
		return nil
	}

	return &record
}

// Exists reports whether a state file is present, without validating it.
func (s *Store) Exists() bool {
	return utils.FileExists(s.path)
}

// Clear removes the state file. Clearing an already-absent state succeeds.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return &SyncStateError{Path: s.path, Err: err}
	}
	return nil
}

// AgeSeconds returns the age of the recorded state, or ok=false when no
// usable state exists.
func (s *Store) AgeSeconds() (float64, bool) {
	record := s.Load()
	if record == nil {
		return 0, false
	}
	return time.Since(record.Timestamp).Seconds(), true
}
