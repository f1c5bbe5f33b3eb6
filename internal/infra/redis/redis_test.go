//go:build !integration

package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"vaccine-tracker-bot/internal/domain"
)

func TestBlobStore(t *testing.T) {
	ctx := context.Background()

	t.Run("should map a missing key to not found", func(t *testing.T) {
		s := NewBlobStore(newMemClient())
		if _, err := s.Get(ctx, "registry"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("should store under a prefixed key", func(t *testing.T) {
		mc := newMemClient()
		s := NewBlobStore(mc)
		if err := s.Put(ctx, "registry", []byte("1\n")); err != nil {
			t.Fatalf("Put: %v", err)
		}
		if string(mc.data["blob:registry"]) != "1\n" {
			t.Errorf("unexpected raw data %q", mc.data["blob:registry"])
		}
		got, err := s.Get(ctx, "registry")
		if err != nil || string(got) != "1\n" {
			t.Errorf("got %q, %v", got, err)
		}
	})

	t.Run("should wrap write failures as store errors", func(t *testing.T) {
		mc := newMemClient()
		mc.failSet = errors.New("connection refused")
		if err := NewBlobStore(mc).Put(ctx, "registry", nil); !errors.Is(err, domain.ErrStore) {
			t.Errorf("expected ErrStore, got %v", err)
		}
	})
}

func TestRateLimiter(t *testing.T) {
	ctx := context.Background()
	mc := newMemClient()
	rl := NewRateLimiter(mc)
	key := ChatCommandKey(42)

	for i := 1; i <= 3; i++ {
		ok, err := rl.Allow(ctx, key, 2, time.Minute)
		if err != nil {
			t.Fatalf("Allow: %v", err)
		}
		if want := i <= 2; ok != want {
			t.Errorf("call %d: expected %v, got %v", i, want, ok)
		}
	}
	if mc.expires[key] != time.Minute {
		t.Errorf("expected the window to be set on the first hit, got %v", mc.expires[key])
	}
}
