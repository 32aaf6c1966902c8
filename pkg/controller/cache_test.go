package controller_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubealex/kubealex.eda/pkg/controller"
)

func TestMemoryLookupCache(t *testing.T) {
	cache := controller.NewMemoryLookupCache()
	ctx := context.Background()

	_, err := cache.Fetch(ctx, "project:demo")
	require.ErrorIs(t, err, controller.ErrCacheMiss)

	require.NoError(t, cache.Write(ctx, "project:demo", 7))

	id, err := cache.Fetch(ctx, "project:demo")
	require.NoError(t, err)
	assert.Equal(t, 7, id)
	require.NoError(t, cache.Close())
}

func TestRedisLookupCache(t *testing.T) {
	server := miniredis.RunT(t)
	ctx := context.Background()

	cache, err := controller.NewRedisLookupCache(ctx, &controller.RedisCacheConfig{
		Addr: server.Addr(),
		TTL:  time.Minute,
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	_, err = cache.Fetch(ctx, "project:demo")
	require.ErrorIs(t, err, controller.ErrCacheMiss)

	require.NoError(t, cache.Write(ctx, "project:demo", 7))

	id, err := cache.Fetch(ctx, "project:demo")
	require.NoError(t, err)
	assert.Equal(t, 7, id)

	// Entries expire with the configured TTL.
	server.FastForward(2 * time.Minute)
	_, err = cache.Fetch(ctx, "project:demo")
	require.ErrorIs(t, err, controller.ErrCacheMiss)
}

func TestRedisLookupCache_ConnectFailure(t *testing.T) {
	_, err := controller.NewRedisLookupCache(context.Background(), &controller.RedisCacheConfig{
		Addr: "127.0.0.1:1",
	}, zerolog.Nop())
	require.Error(t, err)
}

func TestProjectID_UsesLookupCache(t *testing.T) {
	var apiCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/eda/v1/projects/", func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
		writeJSON(t, w, http.StatusOK, map[string]any{
			"count":   1,
			"results": []controller.Project{{ID: 7, Name: "demo project"}},
		})
	})
	client, cache := newCachedClient(t, mux)

	id, err := client.ProjectID(context.Background(), "demo project")
	require.NoError(t, err)
	assert.Equal(t, 7, id)

	// The write-back happens in the background; wait for it to land.
	require.Eventually(t, func() bool {
		cachedID, cacheErr := cache.Fetch(context.Background(), "project:demo project")
		return cacheErr == nil && cachedID == 7
	}, time.Second, 10*time.Millisecond)

	id, err = client.ProjectID(context.Background(), "demo project")
	require.NoError(t, err)
	assert.Equal(t, 7, id)
	assert.Equal(t, int32(1), apiCalls.Load(), "second lookup should be served from cache")
}

func newCachedClient(t *testing.T, handler http.Handler) (*controller.Client, controller.LookupCache) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cache := controller.NewMemoryLookupCache()
	client, err := controller.NewClient(&controller.Config{
		URL:      server.URL,
		Username: "admin",
		Password: "secret",
	}, zerolog.Nop(), controller.WithLookupCache(cache))
	require.NoError(t, err)
	return client, cache
}
