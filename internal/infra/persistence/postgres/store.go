// Package postgres provides a Postgres-backed snapshot store mirroring the
// sqlite semantics.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"ecocore/pkg/domain"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

// Compile-time contract assertion.
var _ domain.SnapshotStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/ecocore?sslmode=disable"
)

// sqlOpen is a test seam.
var sqlOpen = sql.Open

// Store appends one row per committed generation to Postgres.
type Store struct {
	db *sql.DB
}

// NewStore opens a Postgres-backed store using the provided DSN (falls
// back to defaultDSN) and ensures the snapshot table exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sqlOpen(defaultDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS snapshots (
		run_id TEXT PRIMARY KEY,
		generation BIGINT NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL,
		payload BYTEA NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create snapshots table: %w", err)
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// SaveSnapshot inserts a snapshot row.
func (s *Store) SaveSnapshot(ctx context.Context, snapshot domain.GenerationSnapshot) error {
	if snapshot.RunID == "" {
		return fmt.Errorf("snapshot requires a run ID")
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (run_id, generation, recorded_at, payload) VALUES ($1, $2, $3, $4)`,
		snapshot.RunID, snapshot.Generation, snapshot.RecordedAt.UTC(), payload,
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
