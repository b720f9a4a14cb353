package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/dhushyanth-h-m/blog-api/internal/cache"
)

// cacheKeyPrefix namespaces response-cache entries in the shared store.
// The full key is the prefix plus the literal request path and query
// string; other processes rely on this format for manual invalidation.
const cacheKeyPrefix = "__cache__"

// HeaderCache is the response header carrying the cache state for the
// request: HIT, MISS, DISABLED or ERROR.
const HeaderCache = "X-Cache"

// CacheKey returns the store key the response cache uses for a request
// path (including any query string).
func CacheKey(path string) string {
	return cacheKeyPrefix + path
}

// ResponseCache caches successful GET responses for ttl. Hits are served
// without invoking downstream handlers; a missing or unreachable store
// disables caching for the request but never fails it.
func ResponseCache(store *cache.RedisClient, log *logrus.Logger, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		if !store.Available(ctx) {
			log.Warn("cache store not reachable, skipping response cache")
			c.Header(HeaderCache, "DISABLED")
			c.Next()
			return
		}

		key := CacheKey(c.Request.URL.RequestURI())
		body, err := store.GetRaw(ctx, key)
		if err == nil {
			log.WithField("key", key).Debug("response cache HIT")
			c.Header(HeaderCache, "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(body))
			c.Abort()
			return
		}
		if !errors.Is(err, redis.Nil) {
			log.WithError(err).WithField("key", key).Error("response cache read error")
			c.Header(HeaderCache, "ERROR")
			c.Next()
			return
		}

		log.WithField("key", key).Debug("response cache MISS")
		c.Header(HeaderCache, "MISS")

		writer := &captureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer
		c.Next()

		// Only successful responses are cached; store errors are logged
		// and the client still gets its response.
		if writer.Status() == http.StatusOK && writer.body.Len() > 0 {
			if err := store.SetRaw(ctx, key, writer.body.String(), ttl); err != nil {
				log.WithError(err).WithField("key", key).Error("response cache write error")
			}
		}
	}
}

// captureWriter duplicates everything written to the response into a
// buffer so the middleware can store the body after the handler ran.
type captureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
