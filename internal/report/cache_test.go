package report

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	_ "github.com/atlas-ledger/atlas-ledger/testing"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestFetchJSONPopulatesOnce(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "report", "tb", "2025-01")
	require.NoError(t, err)

	calls := 0
	loader := func(context.Context) (interface{}, error) {
		calls++
		return map[string]string{"total": "130.00"}, nil
	}

	var first map[string]string
	require.NoError(t, cache.FetchJSON(ctx, key, &first, loader))
	var second map[string]string
	require.NoError(t, cache.FetchJSON(ctx, key, &second, loader))

	require.Equal(t, 1, calls, "second fetch must be served from cache")
	require.Equal(t, first, second)
}

func TestBumpInvalidates(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	before, err := cache.BuildKey(ctx, "report", "tb", "2025-01")
	require.NoError(t, err)
	require.NoError(t, cache.Bump(ctx))
	after, err := cache.BuildKey(ctx, "report", "tb", "2025-01")
	require.NoError(t, err)

	require.NotEqual(t, before, after, "version bump must change keys")
}

func TestNilCacheFallsThrough(t *testing.T) {
	var cache *Cache
	calls := 0
	var out map[string]int
	err := cache.FetchJSON(context.Background(), "k", &out, func(context.Context) (interface{}, error) {
		calls++
		return map[string]int{"n": 1}, nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
	require.Equal(t, 1, out["n"])
}
