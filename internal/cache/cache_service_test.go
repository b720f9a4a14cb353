package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhushyanth-h-m/blog-api/internal/models"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func setupCacheService(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := NewRedisClientFromAddr(mr.Addr())
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	return NewCacheService(client, newTestLogger()), mr
}

func TestCacheService_SetGetRoundtrip(t *testing.T) {
	svc, mr := setupCacheService(t)
	ctx := context.Background()

	blog := &models.Blog{ID: "42", Title: "A", Status: models.StatusPublished}
	require.True(t, svc.SetBlog(ctx, "42", blog))

	// The persisted key format is a cross-process contract.
	assert.True(t, mr.Exists("blog-apiblogs:detail:42"))

	var got models.Blog
	require.True(t, svc.GetBlog(ctx, "42", &got))
	assert.Equal(t, *blog, got)
}

func TestCacheService_GetMissingReturnsFalse(t *testing.T) {
	svc, _ := setupCacheService(t)
	ctx := context.Background()

	var blog models.Blog
	assert.False(t, svc.GetBlog(ctx, "nope", &blog))

	var user models.User
	assert.False(t, svc.GetUser(ctx, "nope", &user))

	var list models.BlogList
	assert.False(t, svc.GetBlogList(ctx, models.BlogFilters{}, &list))

	var results []models.Blog
	assert.False(t, svc.GetSearchResults(ctx, "nope", nil, &results))
}

func TestCacheService_CorruptEntryIsMiss(t *testing.T) {
	svc, mr := setupCacheService(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("blog-apiblogs:detail:bad", "{not json"))

	var blog models.Blog
	assert.False(t, svc.GetBlog(ctx, "bad", &blog))
}

func TestCacheService_DeleteIdempotence(t *testing.T) {
	svc, _ := setupCacheService(t)
	ctx := context.Background()

	require.True(t, svc.SetBlog(ctx, "1", &models.Blog{ID: "1"}))

	assert.True(t, svc.Delete(ctx, "blogs", "detail:1"))
	assert.False(t, svc.Delete(ctx, "blogs", "detail:1"))
}

func TestCacheService_DeleteByPatternScope(t *testing.T) {
	svc, _ := setupCacheService(t)
	ctx := context.Background()

	list := &models.BlogList{Data: []models.Blog{{ID: "1"}}}
	require.True(t, svc.SetBlogList(ctx, models.BlogFilters{Page: 1}, list))
	require.True(t, svc.SetBlogList(ctx, models.BlogFilters{Page: 2}, list))
	require.True(t, svc.SetBlog(ctx, "1", &models.Blog{ID: "1"}))
	require.True(t, svc.SetUser(ctx, "u1", &models.User{ID: "u1"}))

	deleted := svc.DeleteByPattern(ctx, "blogs:list:*")
	assert.Equal(t, int64(2), deleted)

	var got models.BlogList
	assert.False(t, svc.GetBlogList(ctx, models.BlogFilters{Page: 1}, &got))
	assert.False(t, svc.GetBlogList(ctx, models.BlogFilters{Page: 2}, &got))

	var blog models.Blog
	assert.True(t, svc.GetBlog(ctx, "1", &blog))
	var user models.User
	assert.True(t, svc.GetUser(ctx, "u1", &user))
}

func TestCacheService_DeleteByPatternNoMatches(t *testing.T) {
	svc, _ := setupCacheService(t)

	assert.Equal(t, int64(0), svc.DeleteByPattern(context.Background(), "blogs:list:*"))
}

func TestCacheService_InvalidateBlogCaches(t *testing.T) {
	svc, _ := setupCacheService(t)
	ctx := context.Background()

	require.True(t, svc.SetBlog(ctx, "42", &models.Blog{ID: "42", Title: "A"}))
	require.True(t, svc.SetBlogList(ctx, models.BlogFilters{}, &models.BlogList{}))
	require.True(t, svc.SetSearchResults(ctx, "go", nil, []models.Blog{{ID: "42"}}))
	require.True(t, svc.SetUser(ctx, "u1", &models.User{ID: "u1"}))

	deleted := svc.InvalidateBlogCaches(ctx, "42")
	assert.Equal(t, int64(3), deleted)

	var blog models.Blog
	assert.False(t, svc.GetBlog(ctx, "42", &blog))
	var list models.BlogList
	assert.False(t, svc.GetBlogList(ctx, models.BlogFilters{}, &list))
	var results []models.Blog
	assert.False(t, svc.GetSearchResults(ctx, "go", nil, &results))

	// User entries are untouched by a blog sweep.
	var user models.User
	assert.True(t, svc.GetUser(ctx, "u1", &user))
}

func TestCacheService_InvalidateUserCaches(t *testing.T) {
	svc, mr := setupCacheService(t)
	ctx := context.Background()

	require.True(t, svc.SetUser(ctx, "u1", &models.User{ID: "u1"}))
	require.True(t, svc.Set(ctx, "auth", "u1:token", "tok", 0))
	require.True(t, svc.SetBlog(ctx, "42", &models.Blog{ID: "42"}))

	deleted := svc.InvalidateUserCaches(ctx, "u1")
	assert.Equal(t, int64(2), deleted)

	var user models.User
	assert.False(t, svc.GetUser(ctx, "u1", &user))
	assert.False(t, mr.Exists("blog-apiauth:u1:token"))

	var blog models.Blog
	assert.True(t, svc.GetBlog(ctx, "42", &blog))
}

func TestCacheService_TTLPolicy(t *testing.T) {
	svc, mr := setupCacheService(t)
	ctx := context.Background()

	require.True(t, svc.SetBlog(ctx, "1", &models.Blog{ID: "1"}))
	assert.Equal(t, 1800*time.Second, mr.TTL("blog-apiblogs:detail:1"))

	require.True(t, svc.SetSearchResults(ctx, "go", nil, []models.Blog{{ID: "1"}}))
	searchEntry := "blog-apisearch:results:" + fingerprint(searchKey{"go", nil})
	assert.Equal(t, 600*time.Second, mr.TTL(searchEntry))

	require.True(t, svc.Set(ctx, "system", "blog_count", 7, 0))
	assert.Equal(t, defaultTTL, mr.TTL("blog-apiblog_count"))

	require.True(t, svc.Set(ctx, "analytics", "weekly_stats", 1, 90*time.Second))
	assert.Equal(t, 90*time.Second, mr.TTL("blog-apiweekly_stats"))
}

func TestFingerprint_OrderIndependent(t *testing.T) {
	a := map[string]interface{}{"status": "published", "sort": "createdAt"}
	b := map[string]interface{}{"sort": "createdAt", "status": "published"}

	assert.Equal(t, fingerprint(a), fingerprint(b))
	assert.NotEqual(t, fingerprint(a), fingerprint(map[string]interface{}{"status": "draft"}))
}

func TestCacheService_ListKeyedByFilters(t *testing.T) {
	svc, _ := setupCacheService(t)
	ctx := context.Background()

	one := &models.BlogList{Data: []models.Blog{{ID: "1"}}}
	two := &models.BlogList{Data: []models.Blog{{ID: "2"}}}
	require.True(t, svc.SetBlogList(ctx, models.BlogFilters{Status: "published"}, one))
	require.True(t, svc.SetBlogList(ctx, models.BlogFilters{Status: "draft"}, two))

	var got models.BlogList
	require.True(t, svc.GetBlogList(ctx, models.BlogFilters{Status: "published"}, &got))
	assert.Equal(t, "1", got.Data[0].ID)
	require.True(t, svc.GetBlogList(ctx, models.BlogFilters{Status: "draft"}, &got))
	assert.Equal(t, "2", got.Data[0].ID)
}

func TestCacheService_DisabledStore(t *testing.T) {
	svc := NewCacheService(nil, newTestLogger())
	ctx := context.Background()

	var blog models.Blog
	assert.False(t, svc.GetBlog(ctx, "1", &blog))
	assert.False(t, svc.SetBlog(ctx, "1", &models.Blog{ID: "1"}))
	assert.False(t, svc.Delete(ctx, "blogs", "detail:1"))
	assert.Equal(t, int64(0), svc.DeleteByPattern(ctx, "blogs:*"))
	assert.Nil(t, svc.GetStats(ctx))

	health := svc.HealthCheck(ctx)
	assert.Equal(t, "down", health.Status)
	assert.NotEmpty(t, health.Error)
}

func TestCacheService_HealthCheck(t *testing.T) {
	svc, mr := setupCacheService(t)
	ctx := context.Background()

	health := svc.HealthCheck(ctx)
	assert.Equal(t, "up", health.Status)

	mr.Close()
	health = svc.HealthCheck(ctx)
	assert.Equal(t, "down", health.Status)
	assert.NotEmpty(t, health.Error)
}

func TestParseInfo(t *testing.T) {
	info := "# Memory\r\nused_memory:1024\r\nused_memory_human:1.00K\r\n\r\n"

	parsed := parseInfo(info)
	assert.Equal(t, float64(1024), parsed["used_memory"])
	assert.Equal(t, "1.00K", parsed["used_memory_human"])
	assert.NotContains(t, parsed, "# Memory")
}
