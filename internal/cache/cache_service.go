package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/dhushyanth-h-m/blog-api/internal/models"
)

// keyPrefix namespaces every CacheService entry in the shared store. The
// resulting key format <keyPrefix><categoryPrefix><identifier> is stable:
// other processes rely on it for manual invalidation.
const keyPrefix = "blog-api"

// defaultTTL applies to categories without their own TTL policy.
const defaultTTL = 3600 * time.Second

type categoryConfig struct {
	ttl    time.Duration
	prefix string
}

// cacheConfig maps each category to its TTL policy and key prefix.
// Unrecognized categories get an empty prefix and the default TTL.
var cacheConfig = map[string]categoryConfig{
	"blogs":  {ttl: 1800 * time.Second, prefix: "blogs:"},
	"users":  {ttl: 3600 * time.Second, prefix: "users:"},
	"auth":   {ttl: 900 * time.Second, prefix: "auth:"},
	"search": {ttl: 600 * time.Second, prefix: "search:"},
}

// CacheService is the single point of access to the cache store. It owns
// key construction, per-category TTLs and JSON (de)serialization. Every
// operation is best effort: a missing or broken store degrades to
// nil/false/zero results, never to an error the caller must handle.
type CacheService struct {
	store *RedisClient
	log   *logrus.Logger
}

// NewCacheService builds a cache service on the given store client. A nil
// store is allowed and leaves the service permanently degraded.
func NewCacheService(store *RedisClient, log *logrus.Logger) *CacheService {
	return &CacheService{store: store, log: log}
}

// Enabled reports whether a store is wired in at all.
func (s *CacheService) Enabled() bool {
	return s.store.Enabled()
}

func (s *CacheService) generateKey(category, identifier string) string {
	cfg := cacheConfig[category]
	return keyPrefix + cfg.prefix + identifier
}

func (s *CacheService) ttlFor(category string, override time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	if cfg, ok := cacheConfig[category]; ok {
		return cfg.ttl
	}
	return defaultTTL
}

// Get reads the entry for category/identifier into dest. It reports whether
// a usable value was found; store absence, a missing key and malformed JSON
// all count as a miss.
func (s *CacheService) Get(ctx context.Context, category, identifier string, dest interface{}) bool {
	if !s.store.Enabled() {
		s.log.Warn("cache store not available for GET operation")
		return false
	}

	key := s.generateKey(category, identifier)
	if err := s.store.Get(ctx, key, dest); err != nil {
		if errors.Is(err, redis.Nil) {
			s.log.WithField("key", key).Debug("cache MISS")
		} else {
			s.log.WithError(err).WithField("key", key).Error("cache GET error")
		}
		return false
	}

	s.log.WithField("key", key).Debug("cache HIT")
	return true
}

// Set writes value under category/identifier with the category TTL, or with
// ttlOverride when positive. It reports whether the write went through.
func (s *CacheService) Set(ctx context.Context, category, identifier string, value interface{}, ttlOverride time.Duration) bool {
	if !s.store.Enabled() {
		s.log.Warn("cache store not available for SET operation")
		return false
	}

	key := s.generateKey(category, identifier)
	ttl := s.ttlFor(category, ttlOverride)
	if err := s.store.Set(ctx, key, value, ttl); err != nil {
		s.log.WithError(err).WithField("key", key).Error("cache SET error")
		return false
	}

	s.log.WithFields(logrus.Fields{"key": key, "ttl": ttl}).Debug("cache SET")
	return true
}

// Delete removes the entry for category/identifier and reports whether a
// key was actually removed.
func (s *CacheService) Delete(ctx context.Context, category, identifier string) bool {
	if !s.store.Enabled() {
		s.log.Warn("cache store not available for DEL operation")
		return false
	}

	key := s.generateKey(category, identifier)
	removed, err := s.store.Del(ctx, key)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Error("cache DEL error")
		return false
	}
	return removed > 0
}

// DeleteByPattern removes every key matching the glob pattern (the global
// prefix is prepended) and returns how many were deleted.
func (s *CacheService) DeleteByPattern(ctx context.Context, pattern string) int64 {
	if !s.store.Enabled() {
		s.log.Warn("cache store not available for DEL PATTERN operation")
		return 0
	}

	fullPattern := keyPrefix + pattern
	keys, err := s.store.Keys(ctx, fullPattern)
	if err != nil {
		s.log.WithError(err).WithField("pattern", fullPattern).Error("cache DEL PATTERN error")
		return 0
	}
	if len(keys) == 0 {
		return 0
	}

	removed, err := s.store.Del(ctx, keys...)
	if err != nil {
		s.log.WithError(err).WithField("pattern", fullPattern).Error("cache DEL PATTERN error")
		return 0
	}

	s.log.WithFields(logrus.Fields{"pattern": fullPattern, "deleted": removed}).Debug("cache DEL PATTERN")
	return removed
}

// fingerprint hashes a filter/query object into a deterministic cache
// identifier. encoding/json writes map keys in sorted order and struct
// fields in declaration order, so logically equal filters always collide.
func fingerprint(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte("{}")
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// GetBlogList reads the cached list page for the given filters.
func (s *CacheService) GetBlogList(ctx context.Context, filters interface{}, dest *models.BlogList) bool {
	return s.Get(ctx, "blogs", "list:"+fingerprint(filters), dest)
}

// SetBlogList caches a list page under the filter fingerprint.
func (s *CacheService) SetBlogList(ctx context.Context, filters interface{}, data *models.BlogList) bool {
	return s.Set(ctx, "blogs", "list:"+fingerprint(filters), data, 0)
}

// GetBlog reads the cached detail record for a blog post.
func (s *CacheService) GetBlog(ctx context.Context, blogID string, dest *models.Blog) bool {
	return s.Get(ctx, "blogs", "detail:"+blogID, dest)
}

// SetBlog caches a blog post detail record.
func (s *CacheService) SetBlog(ctx context.Context, blogID string, blog *models.Blog) bool {
	return s.Set(ctx, "blogs", "detail:"+blogID, blog, 0)
}

// GetUser reads a cached user profile.
func (s *CacheService) GetUser(ctx context.Context, userID string, dest *models.User) bool {
	return s.Get(ctx, "users", "profile:"+userID, dest)
}

// SetUser caches a user profile. Callers strip credentials first.
func (s *CacheService) SetUser(ctx context.Context, userID string, user *models.User) bool {
	return s.Set(ctx, "users", "profile:"+userID, user, 0)
}

type searchKey struct {
	Query   string      `json:"query"`
	Filters interface{} `json:"filters"`
}

// GetSearchResults reads cached search results for query+filters.
func (s *CacheService) GetSearchResults(ctx context.Context, query string, filters interface{}, dest *[]models.Blog) bool {
	return s.Get(ctx, "search", "results:"+fingerprint(searchKey{query, filters}), dest)
}

// SetSearchResults caches search results for query+filters.
func (s *CacheService) SetSearchResults(ctx context.Context, query string, filters interface{}, results []models.Blog) bool {
	return s.Set(ctx, "search", "results:"+fingerprint(searchKey{query, filters}), results, 0)
}

// InvalidateBlogCaches sweeps every blog list and search-result entry, plus
// the detail entry for blogID when given. Invalidation is a blunt pattern
// sweep, not a reverse index.
func (s *CacheService) InvalidateBlogCaches(ctx context.Context, blogID string) int64 {
	patterns := []string{"blogs:list:*", "search:results:*"}
	if blogID != "" {
		patterns = append(patterns, "blogs:detail:"+blogID)
	}

	var total int64
	for _, pattern := range patterns {
		total += s.DeleteByPattern(ctx, pattern)
	}

	s.log.WithField("deleted", total).Info("invalidated blog-related cache entries")
	return total
}

// InvalidateUserCaches sweeps every user entry, plus the auth entries for
// userID when given.
func (s *CacheService) InvalidateUserCaches(ctx context.Context, userID string) int64 {
	patterns := []string{"users:*"}
	if userID != "" {
		patterns = append(patterns, "auth:"+userID+":*")
	}

	var total int64
	for _, pattern := range patterns {
		total += s.DeleteByPattern(ctx, pattern)
	}

	s.log.WithField("deleted", total).Info("invalidated user-related cache entries")
	return total
}

// Stats is a snapshot of the store's memory, keyspace and operational
// counters, intended to back an operational endpoint.
type Stats struct {
	Memory    map[string]interface{} `json:"memory"`
	Keyspace  map[string]interface{} `json:"keyspace"`
	Stats     map[string]interface{} `json:"stats"`
	Timestamp time.Time              `json:"timestamp"`
}

// GetStats collects store statistics, or nil when the store is unusable.
func (s *CacheService) GetStats(ctx context.Context) *Stats {
	if !s.store.Enabled() {
		return nil
	}

	memory, err := s.store.Info(ctx, "memory")
	if err != nil {
		s.log.WithError(err).Error("cache stats error")
		return nil
	}
	keyspace, err := s.store.Info(ctx, "keyspace")
	if err != nil {
		s.log.WithError(err).Error("cache stats error")
		return nil
	}
	stats, err := s.store.Info(ctx, "stats")
	if err != nil {
		s.log.WithError(err).Error("cache stats error")
		return nil
	}

	return &Stats{
		Memory:    parseInfo(memory),
		Keyspace:  parseInfo(keyspace),
		Stats:     parseInfo(stats),
		Timestamp: time.Now().UTC(),
	}
}

// parseInfo turns a Redis INFO section into a key/value map, converting
// numeric values as it goes.
func parseInfo(info string) map[string]interface{} {
	result := make(map[string]interface{})
	for _, line := range strings.Split(info, "\r\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			result[key] = n
		} else {
			result[key] = value
		}
	}
	return result
}

// Health reports the outcome of a store liveness probe.
type Health struct {
	Status    string    `json:"status"` // "up" or "down"
	LatencyMs int64     `json:"latency_ms,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthCheck probes the store and measures the round trip.
func (s *CacheService) HealthCheck(ctx context.Context) Health {
	now := time.Now().UTC()
	if !s.store.Enabled() {
		return Health{Status: "down", Error: "cache store not connected", Timestamp: now}
	}

	start := time.Now()
	if err := s.store.Ping(ctx); err != nil {
		return Health{Status: "down", Error: err.Error(), Timestamp: now}
	}

	return Health{
		Status:    "up",
		LatencyMs: time.Since(start).Milliseconds(),
		Timestamp: now,
	}
}
