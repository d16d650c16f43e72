// Package db provides PostgreSQL-backed snapshot storage for wizard sessions.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/cv-wizard/internal/storage"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

var _ storage.Storage = (*DB)(nil)

// Connect establishes a connection pool to the database and makes sure the
// snapshot table exists. Snapshots older than ttl are treated as absent.
func Connect(ctx context.Context, databaseURL string, ttl time.Duration) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{pool: pool, ttl: ttl}
	if err := db.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the snapshot table when missing.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create snapshot schema: %w", err)
	}
	return nil
}

// Load returns the snapshot stored under key. Expired rows are ignored.
func (db *DB) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var snap Snapshot
	err := db.pool.QueryRow(ctx,
		`SELECT session_key, content, updated_at FROM session_snapshots WHERE session_key = $1`,
		key,
	).Scan(&snap.SessionKey, &snap.Content, &snap.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load snapshot %s: %w", key, err)
	}
	if snap.Expired(db.ttl, time.Now()) {
		return nil, false, nil
	}
	return snap.Content, true, nil
}

// Save overwrites the snapshot stored under key.
func (db *DB) Save(ctx context.Context, key string, data []byte) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO session_snapshots (session_key, content, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (session_key) DO UPDATE SET content = $2, updated_at = NOW()`,
		key, data,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", key, err)
	}
	return nil
}

// Delete removes the snapshot stored under key.
func (db *DB) Delete(ctx context.Context, key string) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM session_snapshots WHERE session_key = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", key, err)
	}
	return nil
}

// PurgeExpired deletes snapshots idle for longer than the configured ttl and
// returns how many rows were removed.
func (db *DB) PurgeExpired(ctx context.Context) (int64, error) {
	if db.ttl <= 0 {
		return 0, nil
	}
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM session_snapshots WHERE updated_at < $1`,
		time.Now().Add(-db.ttl),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}
