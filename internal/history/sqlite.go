package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/spboyer/modeleval/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS performance_history (
	category     TEXT    NOT NULL,
	model        TEXT    NOT NULL,
	sample_count INTEGER NOT NULL DEFAULT 0,
	mean_score   REAL    NOT NULL DEFAULT 0,
	win_count    INTEGER NOT NULL DEFAULT 0,
	updated_at   TEXT    NOT NULL,
	PRIMARY KEY (category, model)
);`

// SQLiteStore persists snapshots in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time

	mu    sync.Mutex
	ready bool
}

// OpenSQLite opens the database at path. The file and schema are created on
// first Load or Save, so an unreadable file surfaces as a *models.StorageError
// from those calls.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &models.StorageError{Op: "open", Path: path, Err: err}
	}
	s := NewSQLiteStore(db, path)
	s.ready = false
	return s, nil
}

// NewSQLiteStore wraps an already opened database. The schema must exist.
func NewSQLiteStore(db *sql.DB, path string) *SQLiteStore {
	return &SQLiteStore{db: db, path: path, now: time.Now, ready: true}
}

// ensureSchema sets up the journal mode and table once. A failure is retried
// on the next call.
func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("setting journal mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	s.ready = true
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads every row.
func (s *SQLiteStore) Load(ctx context.Context) (Snapshot, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, &models.StorageError{Op: "load", Path: s.path, Err: err}
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, model, sample_count, mean_score, win_count FROM performance_history`)
	if err != nil {
		return nil, &models.StorageError{Op: "load", Path: s.path, Err: err}
	}
	defer rows.Close()

	snap := make(Snapshot)
	for rows.Next() {
		var e models.PerformanceEntry
		if err := rows.Scan(&e.Category, &e.Model, &e.SampleCount, &e.MeanScore, &e.WinCount); err != nil {
			return nil, &models.StorageError{Op: "load", Path: s.path, Err: err}
		}
		snap[Key{Category: e.Category, Model: e.Model}.String()] = e
	}
	if err := rows.Err(); err != nil {
		return nil, &models.StorageError{Op: "load", Path: s.path, Err: err}
	}
	return snap, nil
}

// Save replaces the table contents with snap in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, snap Snapshot) error {
	if err := s.ensureSchema(ctx); err != nil {
		return &models.StorageError{Op: "save", Path: s.path, Err: err}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &models.StorageError{Op: "save", Path: s.path, Err: err}
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM performance_history`); err != nil {
		return &models.StorageError{Op: "save", Path: s.path, Err: err}
	}

	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	updated := s.now().UTC().Format(time.RFC3339)
	for _, raw := range keys {
		e := snap[raw]
		k, ok := ParseKey(raw)
		if !ok {
			k = Key{Category: e.Category, Model: e.Model}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO performance_history (category, model, sample_count, mean_score, win_count, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			k.Category, k.Model, e.SampleCount, e.MeanScore, e.WinCount, updated)
		if err != nil {
			return &models.StorageError{Op: "save", Path: s.path, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &models.StorageError{Op: "save", Path: s.path, Err: err}
	}
	return nil
}
