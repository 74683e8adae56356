package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	assert.Equal(t, CacheKey("transcript", "dQw4w9WgXcQ", "en,ta"), CacheKey("transcript", "dQw4w9WgXcQ", "en,ta"))
	assert.NotEqual(t, CacheKey("transcript", "dQw4w9WgXcQ", "en"), CacheKey("transcript", "dQw4w9WgXcQ", "ta"))
	assert.NotEqual(t, CacheKey("comments", "a:b"), CacheKey("comments:a", "b"))
	assert.Regexp(t, `^yl:[0-9a-f]+$`, CacheKey("test"))
}

func TestCacheGetSet(t *testing.T) {
	InitCache("", time.Minute, 100, 5*time.Minute)
	ctx := context.Background()
	key := CacheKey("sentiment", "vid", "100")

	_, ok := CacheGet(ctx, key)
	assert.False(t, ok, "empty cache")

	CacheSet(ctx, key, []byte(`{"positive":3}`))
	got, ok := CacheGet(ctx, key)
	require.True(t, ok)
	assert.JSONEq(t, `{"positive":3}`, string(got))
}

func TestCacheExpiration(t *testing.T) {
	InitCache("", time.Millisecond, 100, 5*time.Minute)
	ctx := context.Background()
	key := CacheKey("transcript", "expiring")

	CacheSet(ctx, key, []byte("temp"))
	time.Sleep(5 * time.Millisecond)

	_, ok := CacheGet(ctx, key)
	assert.False(t, ok, "entry outlived its TTL")
}

func TestCacheEviction(t *testing.T) {
	InitCache("", time.Minute, 3, 5*time.Minute)
	ctx := context.Background()

	for i := range 5 {
		CacheSet(ctx, CacheKey("evict", fmt.Sprint(i)), []byte(fmt.Sprint(i)))
	}

	count := 0
	resultCache.l1.Range(func(_, _ any) bool {
		count++
		return true
	})
	assert.LessOrEqual(t, count, 3)
}

func TestCacheStats(t *testing.T) {
	InitCache("", time.Minute, 100, 5*time.Minute)
	cacheHits.Store(0)
	cacheMisses.Store(0)
	ctx := context.Background()
	key := CacheKey("stats")

	CacheGet(ctx, key)
	CacheSet(ctx, key, []byte("x"))
	CacheGet(ctx, key)
	CacheGet(ctx, key)

	hits, misses := CacheStats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
}

func TestInitCache_StopsPreviousCleanupLoop(t *testing.T) {
	InitCache("", time.Minute, 10, time.Hour)
	first := resultCache
	CacheSet(context.Background(), CacheKey("reinit"), []byte("old"))

	InitCache("", time.Minute, 10, time.Hour)
	require.NotSame(t, first, resultCache)

	select {
	case <-first.stop:
	default:
		t.Fatal("previous cleanup loop still running")
	}
	select {
	case <-resultCache.stop:
		t.Fatal("new cache stopped")
	default:
	}

	_, ok := CacheGet(context.Background(), CacheKey("reinit"))
	assert.False(t, ok, "entries carried over into new cache")
}

func TestInitCache_BadRedisURLKeepsL1(t *testing.T) {
	InitCache("not-a-url://", time.Minute, 10, time.Hour)
	assert.Nil(t, resultCache.rdb)

	ctx := context.Background()
	CacheSet(ctx, CacheKey("l1only"), []byte("v"))
	got, ok := CacheGet(ctx, CacheKey("l1only"))
	require.True(t, ok)
	assert.Equal(t, "v", string(got))
}
