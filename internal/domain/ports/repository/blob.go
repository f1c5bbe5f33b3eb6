package repository

import "context"

// BlobStore is a durable key/value store with whole-object semantics.
// Get returns domain.ErrNotFound when the key has never been written.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}
