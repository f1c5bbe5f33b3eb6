// File: internal/infra/blob/registry_repo.go
package blob

import (
	"context"
	"errors"
	"fmt"

	"vaccine-tracker-bot/internal/domain"
	"vaccine-tracker-bot/internal/domain/model"
	"vaccine-tracker-bot/internal/domain/ports/repository"
)

var _ repository.RegistryRepository = (*RegistryRepo)(nil)

// RegistryRepo stores the whole subscription set as one blob under a fixed key.
type RegistryRepo struct {
	store repository.BlobStore
	key   string
}

func NewRegistryRepo(store repository.BlobStore, key string) *RegistryRepo {
	return &RegistryRepo{store: store, key: key}
}

// Load returns the persisted set; a blob that was never written is an empty registry.
func (r *RegistryRepo) Load(ctx context.Context) ([]model.Subscription, error) {
	data, err := r.store.Get(ctx, r.key)
	if errors.Is(err, domain.ErrNotFound) {
		return []model.Subscription{}, nil
	}
	if err != nil {
		if errors.Is(err, domain.ErrStore) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	return DecodeRegistry(data)
}

// Save writes subs unless the blob already holds the same set, so saving what was just
// loaded leaves the persisted bytes untouched, including a legacy unsorted file.
func (r *RegistryRepo) Save(ctx context.Context, subs []model.Subscription) error {
	if data, err := r.store.Get(ctx, r.key); err == nil {
		if current, err := DecodeRegistry(data); err == nil && sameSet(current, normalize(subs)) {
			return nil
		}
	}
	if err := r.store.Put(ctx, r.key, EncodeRegistry(subs)); err != nil {
		if errors.Is(err, domain.ErrStore) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	return nil
}

// sameSet compares two normalized registries.
func sameSet(a, b []model.Subscription) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
