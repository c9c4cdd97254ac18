package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]time.Duration
	err  error
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]time.Duration)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = ttl
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.data[key]
	return ok, nil
}

func TestTokenStore_RevokeLifecycle(t *testing.T) {
	ctx := context.Background()
	mock := newMockStore()
	store := &TokenStore{store: mock}

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Hour))

	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, time.Hour, mock.data["storefront:revoked:jti-1"])

	revoked, err = store.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenStore_RevokeExpiredIsNoop(t *testing.T) {
	mock := newMockStore()
	store := &TokenStore{store: mock}

	require.NoError(t, store.Revoke(context.Background(), "jti-1", -time.Second))
	assert.Empty(t, mock.data)
}

func TestTokenStore_PropagatesErrors(t *testing.T) {
	mock := newMockStore()
	mock.err = errors.New("connection refused")
	store := &TokenStore{store: mock}

	assert.Error(t, store.Revoke(context.Background(), "jti-1", time.Minute))
	_, err := store.IsRevoked(context.Background(), "jti-1")
	assert.Error(t, err)
}
