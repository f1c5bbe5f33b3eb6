package postgres

import (
	"context"
	"fmt"
	"time"

	"vaccine-tracker-bot/internal/infra/metrics"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Connect opens a pool and makes sure the blobs table exists.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.Connect: %w", err)
	}
	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS blobs (
    key        TEXT PRIMARY KEY,
    data       BYTEA NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func observePool(pool *pgxpool.Pool) {
	s := pool.Stat()
	metrics.SetDBPoolStats(s.TotalConns(), s.IdleConns(), s.AcquiredConns())
}
