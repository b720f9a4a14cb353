package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/dhushyanth-h-m/blog-api/internal/cache"
	"github.com/dhushyanth-h-m/blog-api/internal/config"
	"github.com/dhushyanth-h-m/blog-api/internal/database"
	"github.com/dhushyanth-h-m/blog-api/internal/handlers"
	"github.com/dhushyanth-h-m/blog-api/internal/middleware"
	"github.com/dhushyanth-h-m/blog-api/internal/services"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logrus.New()

	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		log.WithError(err).Fatal("failed to initialize database schema")
	}

	// The cache store is optional: a nil client leaves every caching
	// component in pass-through mode.
	store := cache.NewRedisClient(cfg)
	if store.Enabled() {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := store.Ping(pingCtx); err != nil {
			log.WithError(err).Warn("cache store not reachable, continuing uncached")
		} else {
			log.Info("connected to cache store")
		}
		cancel()
		defer store.Close()
	} else {
		log.Warn("REDIS_HOST not set, caching disabled")
	}

	blogRepo := database.NewBlogRepository(db.Pool(), log)
	userRepo := database.NewUserRepository(db.Pool(), log)

	cacheService := cache.NewCacheService(store, log)
	invalidator := middleware.NewInvalidator(store, log)
	warmer := cache.NewWarmer(cacheService, database.NewWarmSource(blogRepo, userRepo), log)

	authService := services.NewAuthService(userRepo, cacheService, log, cfg.Server.JWTSecret, cfg.Server.TokenExpiry)
	blogService := services.NewBlogService(blogRepo, cacheService, log)

	authHandler := handlers.NewAuthHandler(authService, log)
	blogHandler := handlers.NewBlogHandler(blogService, invalidator, log)
	healthHandler := handlers.NewHealthHandler(db, cacheService, log)

	router := gin.Default()
	requireAuth := middleware.JWTAuth(cfg.Server.JWTSecret)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/profile", requireAuth, authHandler.Profile)

		blogs := api.Group("/blogs")
		blogs.GET("", middleware.ResponseCache(store, log, cfg.Cache.ListTTL), blogHandler.List)
		blogs.GET("/search", blogHandler.Search)
		blogs.GET("/:id", middleware.ResponseCache(store, log, cfg.Cache.DetailTTL), blogHandler.Get)
		blogs.POST("", requireAuth, blogHandler.Create)
		blogs.PUT("/:id", requireAuth, blogHandler.Update)
		blogs.DELETE("/:id", requireAuth, blogHandler.Delete)

		api.GET("/users/:id", authHandler.GetUser)
		api.GET("/health", healthHandler.Health)
		api.GET("/health/cache", healthHandler.CacheHealth)
	}

	if store.Enabled() {
		if cfg.Cache.WarmOnStart {
			go func() {
				result := warmer.WarmCache(ctx)
				if result.Success {
					log.WithField("warmed", result.WarmedCount).Info("startup cache warming completed")
				} else {
					log.WithField("error", result.Error).Warn("startup cache warming failed")
				}
			}()
		}
		if cfg.Cache.WarmInterval > 0 {
			warmer.Schedule(cfg.Cache.WarmInterval)
			defer warmer.Stop()
		}
	}

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown error")
	}
}
