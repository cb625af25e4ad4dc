// Package cache persists computed snapshots so later startups skip the whole
// pipeline. Snapshots are keyed by window bounds and artifact fingerprint; a
// key mismatch is a miss, not a silent reuse.
package cache

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/gob"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/mrapplexz/hack-digital-ambulance/core/snapshot"
)

// ErrNotFound is returned when no snapshot matches the requested key.
var ErrNotFound = errors.New("cache: snapshot not found")

// Store persists snapshots in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS snapshots (
        key TEXT PRIMARY KEY,
        created_ts INTEGER,
        payload BLOB
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &Store{db: db}, nil
}

// Save writes the snapshot under its key, replacing any previous snapshot
// with the same key.
func (s *Store) Save(ctx context.Context, snap *snapshot.Snapshot) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO snapshots (key, created_ts, payload) VALUES (?, ?, ?)`,
		snap.Key, snap.CreatedAt.UnixNano(), buf.Bytes())
	return err
}

// Load returns the snapshot stored under key, or ErrNotFound.
func (s *Store) Load(ctx context.Context, key string) (*snapshot.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE key = ?`, key)
	return decodeRow(row)
}

// LoadLatest returns the most recently stored snapshot regardless of key.
// This reproduces the fixed-deployment behavior of reusing whatever was
// computed last; callers opt into it explicitly.
func (s *Store) LoadLatest(ctx context.Context) (*snapshot.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `SELECT payload FROM snapshots ORDER BY created_ts DESC, key LIMIT 1`)
	return decodeRow(row)
}

func decodeRow(row *sql.Row) (*snapshot.Snapshot, error) {
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var snap snapshot.Snapshot
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
