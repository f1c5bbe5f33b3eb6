package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"vaccine-tracker-bot/internal/config"
	"vaccine-tracker-bot/internal/domain/ports/repository"
	"vaccine-tracker-bot/internal/infra/blob"
	pg "vaccine-tracker-bot/internal/infra/db/postgres"
	"vaccine-tracker-bot/internal/infra/db/sqlite"
	red "vaccine-tracker-bot/internal/infra/redis"
)

type stores struct {
	registry repository.RegistryRepository
	locker   repository.Locker
	closers  []func()
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStores selects the blob store backing the registry. Shared backends get a
// redis lock when redis is configured, so several bot processes can serve one registry.
func openStores(ctx context.Context, cfg *config.Config, redisClient *red.Client, logger *zerolog.Logger) (*stores, error) {
	s := &stores{}
	var store repository.BlobStore

	switch cfg.Store.Backend {
	case "file":
		fs, err := blob.NewFileStore(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("file store: %w", err)
		}
		store = fs
	case "redis":
		store = red.NewBlobStore(redisClient)
	case "postgres":
		pool, err := pg.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		if err := pg.EnsureSchema(ctx, pool); err != nil {
			s.Close()
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
		store = pg.NewPostgresBlobStore(pool)
	case "sqlite":
		db, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		s.closers = append(s.closers, func() { _ = db.Close() })
		store = db
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	if redisClient != nil && cfg.Store.Backend != "file" {
		s.locker = red.NewLocker(redisClient, cfg.Redis.TTL)
		logger.Info().Msg("registry mutations are serialized through redis")
	}
	s.registry = blob.NewRegistryRepo(store, cfg.Store.Key)
	return s, nil
}
