package middleware

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/dhushyanth-h-m/blog-api/internal/cache"
)

// Invalidator deletes response-cache entries for known routes. Write
// handlers call it after a successful mutation. Every operation is best
// effort: a stale entry expires via TTL anyway, so a failed delete must
// never block a successful write from returning.
type Invalidator struct {
	store *cache.RedisClient
	log   *logrus.Logger
}

// NewInvalidator builds an invalidator over the given store client. A nil
// store turns every call into a no-op.
func NewInvalidator(store *cache.RedisClient, log *logrus.Logger) *Invalidator {
	return &Invalidator{store: store, log: log}
}

func (i *Invalidator) clear(ctx context.Context, key string) {
	if !i.store.Enabled() {
		return
	}
	if _, err := i.store.Del(ctx, key); err != nil {
		i.log.WithError(err).WithField("key", key).Error("cache invalidation error")
		return
	}
	i.log.WithField("key", key).Info("cache invalidated")
}

// InvalidateBlogList drops the cached "list all blogs" response.
func (i *Invalidator) InvalidateBlogList(ctx context.Context) {
	i.clear(ctx, CacheKey("/api/blogs"))
}

// InvalidateBlog drops the cached "single blog" response for id.
func (i *Invalidator) InvalidateBlog(ctx context.Context, id string) {
	i.clear(ctx, CacheKey("/api/blogs/"+id))
}
