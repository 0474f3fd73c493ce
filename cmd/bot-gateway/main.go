package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/review-bot-api/internal/dispatch"
	"github.com/noah-isme/review-bot-api/internal/handler"
	"github.com/noah-isme/review-bot-api/internal/middleware"
	"github.com/noah-isme/review-bot-api/internal/repository"
	"github.com/noah-isme/review-bot-api/internal/service"
	"github.com/noah-isme/review-bot-api/internal/transport"
	"github.com/noah-isme/review-bot-api/pkg/cache"
	"github.com/noah-isme/review-bot-api/pkg/config"
	"github.com/noah-isme/review-bot-api/pkg/database"
	"github.com/noah-isme/review-bot-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/review-bot-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/review-bot-api/pkg/middleware/requestid"
)

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

	metrics := service.NewMetricsService()

	var cacheService *service.CacheService
	if cfg.Listing.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, listing cache disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheService = service.NewCacheService(cacheRepo, metrics, cfg.Listing.CacheTTL, logr, true)
		}
	}

	presenter := transport.NewWebhookPresenter(cfg.Transport.WebhookURL, cfg.Transport.Timeout, logr)

	reviewRepo := repository.NewReviewRepository(db)
	submission := service.NewSubmissionService(reviewRepo, presenter, metrics, nil, logr, cfg.Moderation.AdminIDs)
	moderation := service.NewModerationService(reviewRepo, presenter, cacheService, metrics, nil, logr, cfg.Moderation.AdminIDs)
	exports := service.NewExportService(reviewRepo, logr, nil, nil)
	auth := service.NewAuthService(nil, logr, service.AuthConfig{
		AdminIDs:           cfg.Moderation.AdminIDs,
		PanelPasswordHash:  cfg.Moderation.PanelPasswordHash,
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
	})

	dispatcher := dispatch.New(submission, moderation, presenter, metrics, logr, cfg.Listing.PageLimit)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	metricsHandler := handler.NewMetricsHandler(metrics)
	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	eventsHandler := handler.NewEventsHandler(dispatcher)
	reviewHandler := handler.NewReviewHandler(moderation, cfg.Listing.PageLimit)
	authHandler := handler.NewAuthHandler(auth)
	moderationHandler := handler.NewModerationHandler(moderation, exports)

	v1 := r.Group("/v1")
	{
		v1.POST("/transport/events", eventsHandler.Receive)

		v1.GET("/reviews", reviewHandler.List)
		v1.GET("/reviews/:id", reviewHandler.Get)

		v1.POST("/auth/login", authHandler.Login)
		v1.POST("/auth/refresh", authHandler.Refresh)
		v1.POST("/auth/logout", authHandler.Logout)

		admin := v1.Group("/admin", middleware.JWT(auth))
		{
			admin.GET("/reviews", moderationHandler.List)
			admin.GET("/reviews/export", moderationHandler.Export)
			admin.GET("/reviews/:id", moderationHandler.Get)
			admin.POST("/reviews/:id/approve", moderationHandler.Approve)
			admin.POST("/reviews/:id/reject", moderationHandler.Reject)
			admin.PATCH("/reviews/:id", moderationHandler.Edit)
			admin.DELETE("/reviews/:id", moderationHandler.Delete)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
