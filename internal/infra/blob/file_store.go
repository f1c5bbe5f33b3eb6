// File: internal/infra/blob/file_store.go
package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vaccine-tracker-bot/internal/domain"
	"vaccine-tracker-bot/internal/domain/ports/repository"
)

var _ repository.BlobStore = (*FileStore)(nil)

// FileStore keeps each blob as a file under dir. Writes go through a temp file and a
// rename, so a reader never observes a partially written object.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create dir: %v", domain.ErrStore, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("%w: invalid key %q", domain.ErrInvalidArgument, key)
	}
	return filepath.Join(s.dir, key), nil
}

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrStore, key, err)
	}
	return b, nil
}

func (s *FileStore) Put(ctx context.Context, key string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, "."+key+".*")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", domain.ErrStore, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %v", domain.ErrStore, key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync %s: %v", domain.ErrStore, key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", domain.ErrStore, key, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("%w: rename %s: %v", domain.ErrStore, key, err)
	}
	return nil
}
