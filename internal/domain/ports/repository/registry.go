package repository

import (
	"context"

	"vaccine-tracker-bot/internal/domain/model"
)

// RegistryRepository persists the full subscription set, read and written as a whole.
// Load on a store that was never written returns an empty set and no error.
type RegistryRepository interface {
	Load(ctx context.Context) ([]model.Subscription, error)
	Save(ctx context.Context, subs []model.Subscription) error
}

// Locker serializes registry mutations across processes sharing one store.
type Locker interface {
	TryLock(ctx context.Context, key string) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}
