// File: internal/infra/redis/blob_store.go
package redis

import (
	"context"
	"errors"
	"fmt"

	"vaccine-tracker-bot/internal/domain"
	"vaccine-tracker-bot/internal/domain/ports/repository"
)

var _ repository.BlobStore = (*BlobStore)(nil)

// BlobStore keeps whole objects as plain string values without expiry.
type BlobStore struct {
	client RedisClient
	prefix string
}

func NewBlobStore(client RedisClient) *BlobStore {
	return &BlobStore{client: client, prefix: "blob:"}
}

func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, s.prefix+key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: redis get %s: %v", domain.ErrStore, key, err)
	}
	return b, nil
}

func (s *BlobStore) Put(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, data, 0); err != nil {
		return fmt.Errorf("%w: redis set %s: %v", domain.ErrStore, key, err)
	}
	return nil
}
