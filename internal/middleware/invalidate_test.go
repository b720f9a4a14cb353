package middleware

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidator_ClearsKnownRoutes(t *testing.T) {
	store, mr := setupStore(t)
	inv := NewInvalidator(store, newTestLogger())
	ctx := context.Background()

	require.NoError(t, mr.Set(CacheKey("/api/blogs"), `{"data":[]}`))
	require.NoError(t, mr.Set(CacheKey("/api/blogs/42"), `{"id":"42"}`))
	require.NoError(t, mr.Set(CacheKey("/api/blogs/43"), `{"id":"43"}`))

	inv.InvalidateBlogList(ctx)
	inv.InvalidateBlog(ctx, "42")

	assert.False(t, mr.Exists(CacheKey("/api/blogs")))
	assert.False(t, mr.Exists(CacheKey("/api/blogs/42")))
	assert.True(t, mr.Exists(CacheKey("/api/blogs/43")))
}

func TestInvalidator_NilStoreNoop(t *testing.T) {
	inv := NewInvalidator(nil, newTestLogger())
	ctx := context.Background()

	inv.InvalidateBlogList(ctx)
	inv.InvalidateBlog(ctx, "42")
}

// A mutation followed by invalidation must make the next list request
// recompute instead of serving the stale cached page.
func TestInvalidator_FreshnessAfterWrite(t *testing.T) {
	store, _ := setupStore(t)
	inv := NewInvalidator(store, newTestLogger())
	hits := 0
	r := cachedRouter(store, &hits)
	ctx := context.Background()

	require.Equal(t, "MISS", doRequest(r, http.MethodGet, "/api/blogs").Header().Get(HeaderCache))
	require.Equal(t, "HIT", doRequest(r, http.MethodGet, "/api/blogs").Header().Get(HeaderCache))
	require.Equal(t, 1, hits)

	inv.InvalidateBlogList(ctx)

	assert.Equal(t, "MISS", doRequest(r, http.MethodGet, "/api/blogs").Header().Get(HeaderCache))
	assert.Equal(t, 2, hits)
}
