package chain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/tablemind/internal/adapters/secrets/file"
	"github.com/bnema/tablemind/internal/domain"
	"github.com/bnema/tablemind/internal/ports"
)

type memoryStore struct {
	mu      sync.Mutex
	values  map[string]string
	getErr  error
	getCall int
}

var _ ports.SecretStore = (*memoryStore)(nil)

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.getCall++
	if m.getErr != nil {
		return "", m.getErr
	}
	value, ok := m.values[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrSecretNotFound, key)
	}
	return value, nil
}

func (m *memoryStore) Put(_ context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

func TestGetPrefersPrimary(t *testing.T) {
	t.Parallel()

	primary := newMemoryStore()
	fallback := newMemoryStore()
	primary.values["tablemind/api_key"] = "from-primary"
	fallback.values["tablemind/api_key"] = "from-fallback"

	store, err := NewStore(primary, fallback, fallback)
	require.NoError(t, err)

	value, err := store.Get(context.Background(), "tablemind/api_key")
	require.NoError(t, err)
	assert.Equal(t, "from-primary", value)
	assert.Zero(t, fallback.getCall)
}

func TestGetFallsBack(t *testing.T) {
	t.Parallel()

	primary := newMemoryStore()
	fallback := newMemoryStore()
	fallback.values["tablemind/api_key"] = "from-fallback"

	store, err := NewStore(primary, fallback, fallback)
	require.NoError(t, err)

	value, err := store.Get(context.Background(), "tablemind/api_key")
	require.NoError(t, err)
	assert.Equal(t, "from-fallback", value)
}

func TestGetMissingEverywhere(t *testing.T) {
	t.Parallel()

	store, err := NewStore(newMemoryStore(), newMemoryStore(), newMemoryStore())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "tablemind/api_key")
	require.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestGetSkipsFallbackOnCancellation(t *testing.T) {
	t.Parallel()

	primary := newMemoryStore()
	primary.getErr = context.Canceled
	fallback := newMemoryStore()
	fallback.values["tablemind/api_key"] = "from-fallback"

	store, err := NewStore(primary, fallback, fallback)
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "tablemind/api_key")
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, fallback.getCall)
}

func TestGetJoinsDistinctFailures(t *testing.T) {
	t.Parallel()

	primary := newMemoryStore()
	primary.getErr = errors.New("primary exploded")
	fallback := newMemoryStore()

	store, err := NewStore(primary, fallback, fallback)
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "tablemind/api_key")
	require.Error(t, err)
	assert.ErrorIs(t, err, primary.getErr)
	assert.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestWritesGoToWritableStore(t *testing.T) {
	t.Parallel()

	primary := newMemoryStore()
	fallback := newMemoryStore()

	store, err := NewStore(primary, fallback, fallback)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "tablemind/api_key", "sk-test"))
	assert.Equal(t, "sk-test", fallback.values["tablemind/api_key"])
	assert.Empty(t, primary.values)

	require.NoError(t, store.Delete(ctx, "tablemind/api_key"))
	assert.Empty(t, fallback.values)
}

func TestNewStoreValidation(t *testing.T) {
	t.Parallel()

	mem := newMemoryStore()

	_, err := NewStore(nil, mem, mem)
	assert.Error(t, err)
	_, err = NewStore(mem, nil, mem)
	assert.Error(t, err)
	_, err = NewStore(mem, mem, nil)
	assert.Error(t, err)
}

func TestNewEnvFirstWithFileFallback(t *testing.T) {
	t.Setenv("TM_API_KEY", "")

	root := t.TempDir()
	store, err := NewEnvFirstWithFileFallback(root)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "tablemind/api_key", "sk-from-file"))

	value, err := store.Get(ctx, "tablemind/api_key")
	require.NoError(t, err)
	assert.Equal(t, "sk-from-file", value)

	// The file store received the write.
	files := file.NewStore(root)
	value, err = files.Get(ctx, "tablemind/api_key")
	require.NoError(t, err)
	assert.Equal(t, "sk-from-file", value)

	t.Setenv("TM_API_KEY", "sk-from-env")
	value, err = store.Get(ctx, "tablemind/api_key")
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", value)
}
