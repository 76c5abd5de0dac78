package result

import (
	"context"
	"time"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn func(ctx context.Context, key, path string, data []byte) error
	setFn     func(ctx context.Context, key string, value []byte) error
	expireFn  func(ctx context.Context, key string, ttl time.Duration) error

	written map[string][]byte
	ttls    map[string]time.Duration
}

func newMockStore() *mockStore {
	return &mockStore{written: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	m.written[key] = data
	return nil
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	m.written[key] = value
	return nil
}

func (m *mockStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if m.expireFn != nil {
		return m.expireFn(ctx, key, ttl)
	}
	m.ttls[key] = ttl
	return nil
}
