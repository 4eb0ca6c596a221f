// Package sqlite persists generation snapshots to a single SQLite table as
// JSON blobs.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ecocore/pkg/domain"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Compile-time contract assertion.
var _ domain.SnapshotStore = (*Store)(nil)

// Store appends one row per committed generation.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the snapshot database at path. An empty path
// defaults to ecocore.db in the working directory.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "ecocore.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
		run_id TEXT PRIMARY KEY,
		generation INTEGER NOT NULL,
		recorded_at TEXT NOT NULL,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create snapshots table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// SaveSnapshot inserts a snapshot row. Duplicate run IDs fail on the
// primary key.
func (s *Store) SaveSnapshot(ctx context.Context, snapshot domain.GenerationSnapshot) error {
	if snapshot.RunID == "" {
		return fmt.Errorf("snapshot requires a run ID")
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (run_id, generation, recorded_at, payload) VALUES (?, ?, ?, ?)`,
		snapshot.RunID, snapshot.Generation, snapshot.RecordedAt.UTC().Format("2006-01-02T15:04:05.999999999Z07:00"), payload,
	); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the row with the highest generation.
func (s *Store) LatestSnapshot(ctx context.Context) (domain.GenerationSnapshot, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM snapshots ORDER BY generation DESC LIMIT 1`,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.GenerationSnapshot{}, false, nil
	}
	if err != nil {
		return domain.GenerationSnapshot{}, false, fmt.Errorf("select latest snapshot: %w", err)
	}
	var snap domain.GenerationSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return domain.GenerationSnapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, true, nil
}

// ListSnapshots returns all rows ordered by generation.
func (s *Store) ListSnapshots(ctx context.Context) ([]domain.GenerationSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM snapshots ORDER BY generation ASC`)
	if err != nil {
		return nil, fmt.Errorf("select snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []domain.GenerationSnapshot
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		var snap domain.GenerationSnapshot
		if err := json.Unmarshal(payload, &snap); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
