package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, TokenKey)
	require.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, TokenKey, "abc", 0))

	got, err := store.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	exists, err := store.Exists(ctx, TokenKey)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, TokenKey))
	require.NoError(t, store.Delete(ctx, TokenKey))

	exists, err = store.Exists(ctx, TokenKey)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	exerciseStore(t, NewFileStore(path))
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	require.NoError(t, NewFileStore(path).Set(ctx, UserKey, `{"id":3}`, 0))

	got, err := NewFileStore(path).Get(ctx, UserKey)
	require.NoError(t, err)
	assert.Equal(t, `{"id":3}`, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStore_TTL(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))

	require.NoError(t, store.Set(ctx, "short", "v", time.Nanosecond))
	time.Sleep(time.Millisecond)

	_, err := store.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o600))

	_, err := NewFileStore(path).Get(context.Background(), TokenKey)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestFileStore_CorruptFileIsReplacedOnWrite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o600))

	store := NewFileStore(path)
	require.NoError(t, store.Set(ctx, TokenKey, "fresh", 0))

	got, err := store.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "oops")
}

func TestFileStore_NullFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("null"), 0o600))

	store := NewFileStore(path)
	require.NoError(t, store.Set(ctx, TokenKey, "abc", 0))

	got, err := store.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
}

func TestFileStore_CorruptFileIsRemovedOnDelete(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o600))

	require.NoError(t, NewFileStore(path).Delete(ctx, TokenKey))

	_, err := os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRedisStore(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	exerciseStore(t, NewRedisStoreFromClient(client, "test:"))
}

func TestRedisStore_PrefixAndTTL(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	ctx := context.Background()
	store, closeStore := NewRedisStore(m.Addr(), "", 0, "storefront:")
	defer closeStore()

	require.NoError(t, store.Set(ctx, TokenKey, "abc", time.Second))
	assert.True(t, m.Exists("storefront:token"))

	m.FastForward(2 * time.Second)

	_, err = store.Get(ctx, TokenKey)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestManager_WithRedisStore(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	ctx := context.Background()
	store, closeStore := NewRedisStore(m.Addr(), "", 0, "storefront:")
	defer closeStore()

	first := NewManager(store)
	require.NoError(t, first.SetAuth(ctx, "t", &User{ID: 1, Username: "a"}))

	second := NewManager(store)
	require.NoError(t, second.Load(ctx))
	assert.Equal(t, "t", second.Token())
	assert.Equal(t, "a", second.User().Username)
}
