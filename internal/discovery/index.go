// Package discovery feeds the document-discovery side of the system: a
// sqlite index of corpus documents and the background worker that warms the
// content cache while populating it. Discovery reads the corpus and cache
// but never mutates sync state.
package discovery

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/standardhub/stdsync/internal/corpus"
	"github.com/standardhub/stdsync/internal/db"
)

const indexSchema = `
CREATE TABLE IF NOT EXISTS doc_index (
    path TEXT PRIMARY KEY,
    hash TEXT NOT NULL,
    category TEXT NOT NULL,
    size INTEGER NOT NULL,
    indexed_at TEXT NOT NULL -- RFC3339
);

CREATE INDEX IF NOT EXISTS idx_doc_index_category ON doc_index(category);
CREATE INDEX IF NOT EXISTS idx_doc_index_hash ON doc_index(hash);
`

// Document is one indexed corpus file.
type Document struct {
	Path      string
	Hash      string
	Category  string
	Size      int64
	IndexedAt time.Time
}

// dbDocument is the scan shape; time is stored as TEXT.
type dbDocument struct {
	Path      string `db:"path"`
	Hash      string `db:"hash"`
	Category  string `db:"category"`
	Size      int64  `db:"size"`
	IndexedAt string `db:"indexed_at"`
}

// CategoryOf derives the category from a slash-normalized corpus path, or ""
// for paths outside the docs tree.
func CategoryOf(relPath string) string {
	parts := strings.SplitN(relPath, "/", 3)
	if len(parts) < 3 || parts[0] != corpus.DocsDir {
		return ""
	}
	return parts[1]
}

// Index is the sqlite-backed document index.
type Index struct {
	db *sqlx.DB
}

// OpenIndex opens (or creates) the index at dbPath. Use ":memory:" for an
// ephemeral index.
func OpenIndex(dbPath string) (*Index, error) {
	database, err := db.NewSqliteDB(db.WithPath(dbPath), db.WithMaxOpenConns(1))
	if err != nil {
		return nil, fmt.Errorf("open document index: %w", err)
	}
	if _, err := database.Exec(indexSchema); err != nil {
		database.Close()
		return nil, fmt.Errorf("initialize index schema: %w", err)
	}
	return &Index{db: database}, nil
}

func (i *Index) Close() error {
	return i.db.Close()
}

// Upsert inserts or replaces the row for doc.Path.
func (i *Index) Upsert(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("cannot index nil document")
	}

	row := dbDocument{
		Path:      doc.Path,
		Hash:      doc.Hash,
		Category:  doc.Category,
		Size:      doc.Size,
		IndexedAt: doc.IndexedAt.Format(time.RFC3339),
	}
	query := `INSERT OR REPLACE INTO doc_index (path, hash, category, size, indexed_at)
	          VALUES (:path, :hash, :category, :size, :indexed_at)`
	if _, err := i.db.NamedExec(query, row); err != nil {
		return fmt.Errorf("index %s: %w", doc.Path, err)
	}
	return nil
}

// Get returns the indexed document for path, or nil if absent.
func (i *Index) Get(path string) (*Document, error) {
	var row dbDocument
	err := i.db.Get(&row, "SELECT path, hash, category, size, indexed_at FROM doc_index WHERE path = ?", path)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query %s: %w", path, err)
	}

	indexedAt, err := time.Parse(time.RFC3339, row.IndexedAt)
	if err != nil {
		return nil, fmt.Errorf("parse indexed_at for %s: %w", path, err)
	}
	return &Document{
		Path:      row.Path,
		Hash:      row.Hash,
		Category:  row.Category,
		Size:      row.Size,
		IndexedAt: indexedAt,
	}, nil
}

// ByCategory returns the indexed paths of one category, sorted.
func (i *Index) ByCategory(category string) ([]string, error) {
	var paths []string
	err := i.db.Select(&paths, "SELECT path FROM doc_index WHERE category = ? ORDER BY path", category)
	if err != nil {
		return nil, fmt.Errorf("query category %s: %w", category, err)
	}
	return paths, nil
}

// Count returns the number of indexed documents.
func (i *Index) Count() (int, error) {
	var count int
	if err := i.db.Get(&count, "SELECT COUNT(*) FROM doc_index"); err != nil {
		return 0, fmt.Errorf("count index entries: %w", err)
	}
	return count, nil
}
