//go:build !integration

package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"vaccine-tracker-bot/internal/domain"
)

func TestBlobStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "registry.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	t.Run("should return not found before the first write", func(t *testing.T) {
		if _, err := store.Get(ctx, "registry"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("should replace the previous object", func(t *testing.T) {
		for _, body := range []string{"1\n", "1\n2\tLIG\n"} {
			if err := store.Put(ctx, "registry", []byte(body)); err != nil {
				t.Fatalf("Put: %v", err)
			}
		}
		got, err := store.Get(ctx, "registry")
		if err != nil || string(got) != "1\n2\tLIG\n" {
			t.Errorf("got %q, %v", got, err)
		}
	})

	t.Run("should survive a reopen", func(t *testing.T) {
		if err := store.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		reopened, err := Open(path)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		t.Cleanup(func() { _ = reopened.Close() })
		got, err := reopened.Get(ctx, "registry")
		if err != nil || string(got) != "1\n2\tLIG\n" {
			t.Errorf("got %q, %v", got, err)
		}
	})

	t.Run("should require a path", func(t *testing.T) {
		if _, err := Open("  "); err == nil {
			t.Error("expected an error")
		}
	})
}
