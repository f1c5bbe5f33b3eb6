// File: internal/usecase/registry_uc.go
package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"vaccine-tracker-bot/internal/domain"
	"vaccine-tracker-bot/internal/domain/model"
	"vaccine-tracker-bot/internal/domain/ports/repository"
	"vaccine-tracker-bot/internal/infra/logging"
	"vaccine-tracker-bot/internal/infra/metrics"
)

// RegistryListener is told about registry transitions after they are persisted.
type RegistryListener interface {
	Add(sub model.Subscription)
	Remove(recipient model.RecipientID)
}

const registryLockKey = "registry"

// RegistryUseCase owns the canonical subscription list.
//
// Every mutation is a critical section: read the whole registry from the store, modify,
// write the whole registry back. Mutations are serialized in-process by a mutex and, when
// a Locker is configured, across processes sharing the store.
type RegistryUseCase struct {
	repo     repository.RegistryRepository
	locker   repository.Locker
	listener RegistryListener
	retries  int
	backoff  time.Duration
	log      *zerolog.Logger

	mu   sync.Mutex
	subs map[model.RecipientID]model.Subscription
}

func NewRegistryUseCase(repo repository.RegistryRepository, locker repository.Locker, retries int, logger *zerolog.Logger) *RegistryUseCase {
	if retries <= 0 {
		retries = 1
	}
	l := logger.With().Str("component", "RegistryUC").Logger()
	return &RegistryUseCase{
		repo:    repo,
		locker:  locker,
		retries: retries,
		backoff: 100 * time.Millisecond,
		log:     &l,
		subs:    map[model.RecipientID]model.Subscription{},
	}
}

// SetListener registers the component that keeps derived state (scheduler jobs) in sync.
func (uc *RegistryUseCase) SetListener(l RegistryListener) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.listener = l
}

// Load replaces the in-memory registry with the persisted one and returns it sorted by recipient.
func (uc *RegistryUseCase) Load(ctx context.Context) ([]model.Subscription, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	current, err := uc.read(ctx)
	if err != nil {
		return nil, err
	}
	uc.subs = current
	metrics.SetRegistrySubscribers(len(current))
	return sorted(current), nil
}

// Subscribe adds recipient. Subscribing a recipient that is already present is a no-op
// whatever the region; changing the region takes an unsubscribe first.
func (uc *RegistryUseCase) Subscribe(ctx context.Context, recipient model.RecipientID, regionCode string) (model.SubscribeOutcome, error) {
	if strings.TrimSpace(string(recipient)) == "" {
		return "", fmt.Errorf("%w: empty recipient", domain.ErrInvalidArgument)
	}
	sub := model.Subscription{Recipient: recipient, Region: strings.ToUpper(strings.TrimSpace(regionCode))}
	return uc.mutate(ctx, func(current map[model.RecipientID]model.Subscription) model.SubscribeOutcome {
		if _, ok := current[recipient]; ok {
			return model.OutcomeAlreadySubscribed
		}
		current[recipient] = sub
		return model.OutcomeSubscribed
	})
}

// Unsubscribe removes recipient; removing an absent recipient is a no-op.
func (uc *RegistryUseCase) Unsubscribe(ctx context.Context, recipient model.RecipientID) (model.SubscribeOutcome, error) {
	return uc.mutate(ctx, func(current map[model.RecipientID]model.Subscription) model.SubscribeOutcome {
		if _, ok := current[recipient]; !ok {
			return model.OutcomeNotSubscribed
		}
		delete(current, recipient)
		return model.OutcomeUnsubscribed
	})
}

// Get returns the recipient's subscription from the in-memory registry.
func (uc *RegistryUseCase) Get(recipient model.RecipientID) (model.Subscription, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	s, ok := uc.subs[recipient]
	return s, ok
}

func (uc *RegistryUseCase) IsSubscribed(recipient model.RecipientID) bool {
	_, ok := uc.Get(recipient)
	return ok
}

// List returns every subscription sorted by recipient.
func (uc *RegistryUseCase) List() []model.Subscription {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return sorted(uc.subs)
}

func (uc *RegistryUseCase) Count() int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return len(uc.subs)
}

// mutate runs one read-modify-write transition. The in-memory registry and the listener
// change only after the store accepted the new registry. A no-op transition still
// resynchronizes both with the store.
func (uc *RegistryUseCase) mutate(ctx context.Context, apply func(map[model.RecipientID]model.Subscription) model.SubscribeOutcome) (model.SubscribeOutcome, error) {
	defer logging.TraceDuration(uc.log, "RegistryUC.mutate")()
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.locker != nil {
		token, err := uc.locker.TryLock(ctx, registryLockKey)
		if err != nil {
			metrics.IncRegistryMutation("error")
			return "", err
		}
		defer func() {
			if err := uc.locker.Unlock(context.WithoutCancel(ctx), registryLockKey, token); err != nil {
				uc.log.Warn().Err(err).Msg("failed to release registry lock")
			}
		}()
	}

	current, err := uc.read(ctx)
	if err != nil {
		metrics.IncRegistryMutation("error")
		return "", err
	}

	outcome := apply(current)
	if outcome != model.OutcomeAlreadySubscribed && outcome != model.OutcomeNotSubscribed {
		if err := uc.write(ctx, sorted(current)); err != nil {
			metrics.IncRegistryMutation("error")
			uc.log.Error().Err(err).Str("outcome", string(outcome)).Msg("registry transition rejected")
			return "", err
		}
	}
	// diff against what the listener last saw; other processes may have written the store
	uc.notify(uc.subs, current)
	uc.subs = current
	metrics.IncRegistryMutation(string(outcome))
	metrics.SetRegistrySubscribers(len(current))
	return outcome, nil
}

// notify replays the difference between two registries on the listener.
func (uc *RegistryUseCase) notify(before, after map[model.RecipientID]model.Subscription) {
	if uc.listener == nil {
		return
	}
	for r := range before {
		if _, ok := after[r]; !ok {
			uc.listener.Remove(r)
		}
	}
	for r, s := range after {
		if old, ok := before[r]; !ok || old != s {
			uc.listener.Add(s)
		}
	}
}

func (uc *RegistryUseCase) read(ctx context.Context) (map[model.RecipientID]model.Subscription, error) {
	var (
		list []model.Subscription
		err  error
	)
	err = uc.retry(ctx, "load", func() error {
		list, err = uc.repo.Load(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make(map[model.RecipientID]model.Subscription, len(list))
	for _, s := range list {
		out[s.Recipient] = s
	}
	return out, nil
}

func (uc *RegistryUseCase) write(ctx context.Context, subs []model.Subscription) error {
	return uc.retry(ctx, "save", func() error { return uc.repo.Save(ctx, subs) })
}

// retry runs op up to uc.retries times with a linear backoff.
func (uc *RegistryUseCase) retry(ctx context.Context, name string, op func() error) error {
	var err error
	for attempt := 1; attempt <= uc.retries; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt == uc.retries {
			break
		}
		metrics.IncRegistryStoreRetry()
		uc.log.Warn().Err(err).Str("op", name).Int("attempt", attempt).Msg("registry store failure, retrying")
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s: %v", domain.ErrStore, name, ctx.Err())
		case <-time.After(time.Duration(attempt) * uc.backoff):
		}
	}
	return fmt.Errorf("%w: %s failed after %d attempts: %v", domain.ErrStore, name, uc.retries, err)
}

func sorted(m map[model.RecipientID]model.Subscription) []model.Subscription {
	out := make([]model.Subscription, 0, len(m))
	for _, s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Recipient < out[j].Recipient })
	return out
}
