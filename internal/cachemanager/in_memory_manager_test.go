package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type snapshotKey string

type exampleStruct struct {
	ID   int
	Name string
}

func TestNewInMemoryCacheManager(t *testing.T) {
	require.NotPanics(t, func() {
		NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)
	})
}

func TestInMemoryCacheManager_GetExistingValue_StructType(t *testing.T) {
	cache := NewInMemoryCacheManager[snapshotKey, exampleStruct]("snapshots", DefaultExpiration, DefaultCleanupInterval)
	example := exampleStruct{ID: 1, Name: "scene"}
	cache.Set(context.Background(), "scene", example, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "scene")
	require.True(t, ok)
	require.Equal(t, example, got)
}

func TestInMemoryCacheManager_GetMissing(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("snapshots", DefaultExpiration, DefaultCleanupInterval)

	got, ok := cache.Get(context.Background(), "missing")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_GetWithInvalidValueType(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("snapshots", DefaultExpiration, DefaultCleanupInterval)
	cache.cache.Set("scene", 123, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "scene")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_Expiry(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("snapshots", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), "scene", "v", 20*time.Millisecond)

	require.Eventually(t, func() bool {
		_, ok := cache.Get(context.Background(), "scene")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestInMemoryCacheManager_GetWithRefresh(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("snapshots", DefaultExpiration, DefaultCleanupInterval)
	ctx := context.Background()

	_, ok := cache.GetWithRefresh(ctx, "scene", time.Minute)
	require.False(t, ok)

	cache.Set(ctx, "scene", "v", 50*time.Millisecond)
	got, ok := cache.GetWithRefresh(ctx, "scene", time.Hour)
	require.True(t, ok)
	require.Equal(t, "v", got)

	_, expiry, found := cache.cache.GetWithExpiration("scene")
	require.True(t, found)
	require.True(t, time.Until(expiry) > time.Minute)
}

func TestInMemoryCacheManager_DeleteFlushLen(t *testing.T) {
	cache := NewInMemoryCacheManager[string, int]("snapshots", DefaultExpiration, DefaultCleanupInterval)
	ctx := context.Background()
	cache.Set(ctx, "a", 1, 0)
	cache.Set(ctx, "b", 2, 0)
	cache.Set(ctx, "c", 3, 0)
	require.Equal(t, 3, cache.Len())

	require.NoError(t, cache.Delete(ctx))
	require.NoError(t, cache.Delete(ctx, "a", "missing"))
	require.Equal(t, 2, cache.Len())
	_, ok := cache.Get(ctx, "a")
	require.False(t, ok)

	require.NoError(t, cache.Flush(ctx))
	require.Equal(t, 0, cache.Len())
}
