package postgres

import (
	"context"
	"errors"
	"fmt"

	"vaccine-tracker-bot/internal/domain"
	"vaccine-tracker-bot/internal/domain/ports/repository"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Ensure interface compliance
var _ repository.BlobStore = (*PostgresBlobStore)(nil)

// PostgresBlobStore keeps each blob as one row of the blobs table.
type PostgresBlobStore struct {
	pool *pgxpool.Pool
}

func NewPostgresBlobStore(pool *pgxpool.Pool) *PostgresBlobStore {
	return &PostgresBlobStore{pool: pool}
}

func (s *PostgresBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	defer observePool(s.pool)
	const sql = `
SELECT data
  FROM blobs
 WHERE key = $1;
`
	var data []byte
	if err := s.pool.QueryRow(ctx, sql, key).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeError("Get blob", err)
	}
	return data, nil
}

func (s *PostgresBlobStore) Put(ctx context.Context, key string, data []byte) error {
	defer observePool(s.pool)
	const sql = `
INSERT INTO blobs (key, data, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE
  SET data       = EXCLUDED.data,
      updated_at = EXCLUDED.updated_at;
`
	if data == nil {
		data = []byte{}
	}
	if _, err := s.pool.Exec(ctx, sql, key, data); err != nil {
		return storeError("Put blob", err)
	}
	return nil
}

func storeError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w: %s: %s (SQLSTATE %s)", domain.ErrStore, op, pgErr.Message, pgErr.Code)
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrStore, op, err)
}
