// Package sqlite provides a SQLite-backed blob store for single-host deployments.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vaccine-tracker-bot/internal/domain"
	"vaccine-tracker-bot/internal/domain/ports/repository"

	_ "modernc.org/sqlite"
)

var _ repository.BlobStore = (*BlobStore)(nil)

// BlobStore persists blobs in a single-table SQLite database.
type BlobStore struct {
	sqlDB *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*BlobStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// one writer at a time
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS blobs (
		key        TEXT PRIMARY KEY,
		data       BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	)`); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &BlobStore{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *BlobStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.sqlDB.QueryRowContext(ctx, `SELECT data FROM blobs WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: sqlite get %s: %v", domain.ErrStore, key, err)
	}
	return data, nil
}

func (s *BlobStore) Put(ctx context.Context, key string, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO blobs (key, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		key, data, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("%w: sqlite put %s: %v", domain.ErrStore, key, err)
	}
	return nil
}
