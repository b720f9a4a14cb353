package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dhushyanth-h-m/blog-api/internal/cache"
	"github.com/dhushyanth-h-m/blog-api/internal/database"
)

var startTime = time.Now()

// HealthHandler backs the operational endpoints.
type HealthHandler struct {
	db    *database.Postgres
	cache *cache.CacheService
	log   *logrus.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db *database.Postgres, cacheService *cache.CacheService, log *logrus.Logger) *HealthHandler {
	return &HealthHandler{db: db, cache: cacheService, log: log}
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(c *gin.Context) {
	dbStatus := "up"
	if h.db == nil {
		dbStatus = "down"
	} else if err := h.db.HealthCheck(c.Request.Context()); err != nil {
		h.log.WithError(err).Warn("database health check failed")
		dbStatus = "down"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"message":   "server is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(startTime).Round(time.Second).String(),
		"database":  dbStatus,
	})
}

// CacheHealth handles GET /api/health/cache: store liveness plus the
// memory/keyspace/operational counters from the store.
func (h *HealthHandler) CacheHealth(c *gin.Context) {
	health := h.cache.HealthCheck(c.Request.Context())

	payload := gin.H{"success": true, "health": health}
	if stats := h.cache.GetStats(c.Request.Context()); stats != nil {
		payload["stats"] = stats
	}

	c.JSON(http.StatusOK, payload)
}
