// Command warm-cache runs one cache warming pass against the configured
// database and cache store. It can be run manually or from cron.
package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/dhushyanth-h-m/blog-api/internal/cache"
	"github.com/dhushyanth-h-m/blog-api/internal/config"
	"github.com/dhushyanth-h-m/blog-api/internal/database"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logrus.New()

	ctx := context.Background()

	db, err := database.NewPostgres(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	store := cache.NewRedisClient(cfg)
	if !store.Enabled() {
		log.Fatal("REDIS_HOST not set, nothing to warm")
	}
	defer store.Close()

	blogRepo := database.NewBlogRepository(db.Pool(), log)
	userRepo := database.NewUserRepository(db.Pool(), log)
	cacheService := cache.NewCacheService(store, log)
	warmer := cache.NewWarmer(cacheService, database.NewWarmSource(blogRepo, userRepo), log)

	result := warmer.WarmCache(ctx)
	if !result.Success {
		log.WithField("error", result.Error).Error("cache warming failed")
		os.Exit(1)
	}

	log.WithField("warmed", result.WarmedCount).Info("cache warming completed")
	for category, count := range result.Categories {
		log.WithFields(logrus.Fields{"category": category, "entries": count}).Info("warmed category")
	}
}
