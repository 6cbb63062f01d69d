package confstore

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore connects to the Redis instance named by RWSE_TEST_REDIS_ADDR
// and skips when none is available.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	addr := os.Getenv("RWSE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("RWSE_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	store := New(client)
	store.key = "rwse:test:confusion_sets"
	t.Cleanup(func() {
		_ = store.Clear(context.Background())
		_ = client.Close()
	})
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	groups := [][]string{{"their", "there"}, {"to", "too", "two"}}
	require.NoError(t, store.Save(ctx, groups))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, groups, loaded)
}

func TestStoreLoadEmpty(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Clear(ctx))
	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
