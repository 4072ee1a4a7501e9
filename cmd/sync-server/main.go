package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/profpocket/pocket-api/api/swagger"
	"github.com/profpocket/pocket-api/internal/handler"
	"github.com/profpocket/pocket-api/internal/insight"
	"github.com/profpocket/pocket-api/internal/middleware"
	"github.com/profpocket/pocket-api/internal/repository"
	"github.com/profpocket/pocket-api/internal/service"
	"github.com/profpocket/pocket-api/pkg/cache"
	"github.com/profpocket/pocket-api/pkg/config"
	"github.com/profpocket/pocket-api/pkg/database"
	"github.com/profpocket/pocket-api/pkg/logger"
	corsmiddleware "github.com/profpocket/pocket-api/pkg/middleware/cors"
	reqidmiddleware "github.com/profpocket/pocket-api/pkg/middleware/requestid"
)

// @title Prof Pocket Sync API
// @version 0.1.0
// @description Change-log sync and insight endpoints for the Prof Pocket client
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	// Redis is optional: without it reports are recomputed per request.
	var cacheSvc *service.CacheService
	if redisClient, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, report cache disabled", "error", err)
	} else {
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Insights.CacheTTL, logr, true)
	}

	userRepo := repository.NewUserRepository(db)
	changeRepo := repository.NewChangeRepository(db)

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	syncSvc := service.NewSyncService(changeRepo, cacheSvc, metricsSvc, logr)
	insightSvc := service.NewInsightService(changeRepo, insight.New(nil), cacheSvc, metricsSvc, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	syncHandler := handler.NewSyncHandler(syncSvc)
	insightHandler := handler.NewInsightHandler(insightSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	sync := r.Group("/sync", middleware.JWT(authSvc))
	{
		sync.POST("/push", syncHandler.Push)
		sync.GET("/pull", syncHandler.Pull)
	}

	if cfg.Insights.Enabled {
		insights := r.Group("/insights", middleware.JWT(authSvc))
		{
			insights.POST("/project", insightHandler.Project)
			insights.GET("/class/:classId", insightHandler.ClassReport)
		}
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "insights", cfg.Insights.Enabled)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
