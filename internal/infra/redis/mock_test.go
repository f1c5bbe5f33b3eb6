//go:build !integration

package redis

import (
	"context"
	"strconv"
	"sync"
	"time"

	"vaccine-tracker-bot/internal/domain"
)

// memClient is an in-memory RedisClient; expirations are recorded, not enforced.
type memClient struct {
	mu      sync.Mutex
	data    map[string][]byte
	expires map[string]time.Duration
	failSet error
}

func newMemClient() *memClient {
	return &memClient{data: map[string][]byte{}, expires: map[string]time.Duration{}}
}

func (m *memClient) Ping(ctx context.Context) error { return nil }

func (m *memClient) Set(ctx context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet != nil {
		return m.failSet
	}
	switch v := value.(type) {
	case []byte:
		m.data[key] = append([]byte(nil), v...)
	case string:
		m.data[key] = []byte(v)
	}
	return nil
}

func (m *memClient) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (m *memClient) SetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	m.mu.Lock()
	_, exists := m.data[key]
	m.mu.Unlock()
	if exists {
		return false, nil
	}
	return true, m.Set(ctx, key, value, exp)
}

func (m *memClient) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(string(m.data[key]), 10, 64)
	n++
	m.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

func (m *memClient) Expire(ctx context.Context, key string, exp time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expires[key] = exp
	return nil
}

func (m *memClient) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memClient) Close() error { return nil }
