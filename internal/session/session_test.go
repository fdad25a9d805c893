package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"resto-ledger/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryBackend is an in-memory Backend for tests.
type memoryBackend struct {
	mu        sync.Mutex
	values    map[string]string
	getErr    error
	setErr    error
	deleteErr error
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{values: make(map[string]string)}
}

func (m *memoryBackend) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryBackend) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *memoryBackend) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.values, key)
	return nil
}

func testUser() model.User {
	return model.User{ID: "u1", Name: "Rosa", Email: "rosa@example.com"}
}

func TestStore_SetCurrentAndRestore(t *testing.T) {
	ctx := context.Background()
	backend := newMemoryBackend()

	store := NewStore(backend, zerolog.Nop())
	assert.False(t, store.IsAuthenticated())
	assert.Nil(t, store.Current())

	require.NoError(t, store.SetCurrent(ctx, testUser()))
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "true", backend.values[KeyLoggedIn])
	assert.Contains(t, backend.values[KeyCurrentUser], `"id":"u1"`)

	id, err := store.CurrentUserID()
	require.NoError(t, err)
	assert.Equal(t, "u1", id)

	// A fresh store over the same backend picks the user up again.
	restored := NewStore(backend, zerolog.Nop())
	require.NoError(t, restored.Load(ctx))
	require.NotNil(t, restored.Current())
	assert.Equal(t, "Rosa", restored.Current().Name)
}

func TestStore_LoadWithoutSession(t *testing.T) {
	store := NewStore(newMemoryBackend(), zerolog.Nop())

	require.NoError(t, store.Load(context.Background()))
	assert.False(t, store.IsAuthenticated())

	_, err := store.CurrentUserID()
	assert.ErrorIs(t, err, model.ErrNotAuthenticated)
}

func TestStore_LoadDiscardsCorruptEntry(t *testing.T) {
	backend := newMemoryBackend()
	backend.values[KeyCurrentUser] = "{not json"
	backend.values[KeyLoggedIn] = "true"

	store := NewStore(backend, zerolog.Nop())
	require.NoError(t, store.Load(context.Background()))

	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, backend.values)
}

func TestStore_LoadBackendError(t *testing.T) {
	backend := newMemoryBackend()
	backend.getErr = errors.New("disk unavailable")

	store := NewStore(backend, zerolog.Nop())
	err := store.Load(context.Background())

	assert.Error(t, err)
	assert.False(t, store.IsAuthenticated())
}

func TestStore_SetCurrentPersistFailure(t *testing.T) {
	backend := newMemoryBackend()
	backend.setErr = errors.New("read-only")

	store := NewStore(backend, zerolog.Nop())
	err := store.SetCurrent(context.Background(), testUser())

	assert.Error(t, err)
	assert.False(t, store.IsAuthenticated())
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	backend := newMemoryBackend()
	store := NewStore(backend, zerolog.Nop())
	require.NoError(t, store.SetCurrent(ctx, testUser()))

	require.NoError(t, store.Clear(ctx))

	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, backend.values)
}

func TestStore_ClearAlwaysDropsMemoryState(t *testing.T) {
	ctx := context.Background()
	backend := newMemoryBackend()
	store := NewStore(backend, zerolog.Nop())
	require.NoError(t, store.SetCurrent(ctx, testUser()))

	backend.deleteErr = errors.New("gone")
	err := store.Clear(ctx)

	assert.Error(t, err)
	assert.False(t, store.IsAuthenticated())
}

func TestStore_Subscribe(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMemoryBackend(), zerolog.Nop())

	var seen []string
	unsubscribe := store.Subscribe(func(user *model.User) {
		if user == nil {
			seen = append(seen, "<nil>")
			return
		}
		seen = append(seen, user.ID)
	})

	require.NoError(t, store.SetCurrent(ctx, testUser()))
	require.NoError(t, store.Clear(ctx))

	unsubscribe()
	unsubscribe()
	require.NoError(t, store.SetCurrent(ctx, testUser()))

	assert.Equal(t, []string{"u1", "<nil>"}, seen)
}

func TestStore_ListenerCanReadStore(t *testing.T) {
	store := NewStore(newMemoryBackend(), zerolog.Nop())

	var authenticated bool
	store.Subscribe(func(user *model.User) {
		authenticated = store.IsAuthenticated()
	})

	require.NoError(t, store.SetCurrent(context.Background(), testUser()))
	assert.True(t, authenticated)
}

func TestStore_CurrentReturnsCopy(t *testing.T) {
	store := NewStore(newMemoryBackend(), zerolog.Nop())
	require.NoError(t, store.SetCurrent(context.Background(), testUser()))

	u := store.Current()
	u.Name = "changed"

	assert.Equal(t, "Rosa", store.Current().Name)
}
