// Package mediacache persists link media classifications in SQLite so they
// survive restarts. Store implements content.Cache.
package mediacache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gonkalabs/notetoken/internal/content"
)

const schema = `CREATE TABLE IF NOT EXISTS media_kinds (
    url        TEXT PRIMARY KEY,
    kind       TEXT NOT NULL,
    updated_at TEXT NOT NULL
)`

// opTimeout bounds a single cache read or write.
const opTimeout = 2 * time.Second

// Store is a SQLite-backed media classification cache.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the cache database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mediacache: create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("mediacache: open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("mediacache: apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mediacache: migrate: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Get returns the cached kind for url. Read errors count as misses.
func (s *Store) Get(url string) (content.MediaKind, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var kind string
	err := s.db.QueryRowContext(ctx, `SELECT kind FROM media_kinds WHERE url = ?`, url).Scan(&kind)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("mediacache: read failed", "url", url, "err", err)
		}
		return content.MediaNone, false
	}
	mk := content.MediaKind(kind)
	if !mk.Valid() {
		return content.MediaNone, false
	}
	return mk, true
}

// Put stores a conclusive kind for url. Inconclusive kinds are ignored.
func (s *Store) Put(url string, kind content.MediaKind) {
	if !kind.Valid() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO media_kinds (url, kind, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(url) DO UPDATE SET kind = excluded.kind, updated_at = excluded.updated_at`,
		url, string(kind), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		slog.Warn("mediacache: write failed", "url", url, "err", err)
	}
}

// Len returns the number of cached entries.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM media_kinds`).Scan(&n); err != nil {
		return 0, fmt.Errorf("mediacache: count: %w", err)
	}
	return n, nil
}

var _ content.Cache = (*Store)(nil)
