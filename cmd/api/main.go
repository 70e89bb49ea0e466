package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/carbon-tracker-api/api/swagger"
	"github.com/noah-isme/carbon-tracker-api/internal/handler"
	"github.com/noah-isme/carbon-tracker-api/internal/middleware"
	"github.com/noah-isme/carbon-tracker-api/internal/repository"
	"github.com/noah-isme/carbon-tracker-api/internal/service"
	"github.com/noah-isme/carbon-tracker-api/pkg/cache"
	"github.com/noah-isme/carbon-tracker-api/pkg/config"
	"github.com/noah-isme/carbon-tracker-api/pkg/database"
	"github.com/noah-isme/carbon-tracker-api/pkg/export"
	"github.com/noah-isme/carbon-tracker-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/carbon-tracker-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/carbon-tracker-api/pkg/middleware/requestid"
	"github.com/noah-isme/carbon-tracker-api/pkg/storage"
)

// @title Carbon Tracker API
// @version 1.0.0
// @description Organizational carbon footprint tracking and reporting
// @BasePath /api/v1
// @schemes http

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metrics := service.NewMetricsService()

	var cacheService *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	} else {
		defer redisClient.Close() //nolint:errcheck
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheService = service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled)
	}

	reportStorage, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("report storage init failed", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	aggregateRepo := repository.NewAggregateRepository(db)
	contentRepo := repository.NewContentRepository(db)
	reportRepo := repository.NewReportRepository(db)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
	})
	calculatorService := service.NewCalculatorService(recordRepo, categoryRepo, cacheService, metrics, validate, logr)
	recommendationService := service.NewRecommendationService(contentRepo, logr)
	dashboardService := service.NewDashboardService(aggregateRepo, recordRepo, recommendationService, cacheService, cfg.Dashboard.CacheTTL, logr)
	recordService := service.NewRecordService(recordRepo, cacheService, export.NewCSVExporter(), logr)
	contentService := service.NewContentService(contentRepo, validate, logr, cfg.Content.MaxImageSizeBytes)
	userService := service.NewUserService(userRepo, aggregateRepo, recordRepo, logr)
	analyticsService := service.NewAnalyticsService(aggregateRepo, metrics, logr)
	reportService := service.NewReportService(recordRepo, userRepo, reportRepo, aggregateRepo, reportStorage, signer, export.NewPDFReportRenderer(), metrics, logr, service.ReportConfig{
		WorkerConcurrency: cfg.Reports.WorkerConcurrency,
		WorkerRetries:     cfg.Reports.WorkerRetries,
		CleanupInterval:   cfg.Reports.CleanupInterval,
		OrphanTTL:         cfg.Reports.OrphanTTL,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reportService.Start(ctx)
	defer reportService.Stop()

	authHandler := handler.NewAuthHandler(authService)
	calculatorHandler := handler.NewCalculatorHandler(calculatorService)
	categoryHandler := handler.NewCategoryHandler(categoryRepo)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	recordHandler := handler.NewRecordHandler(recordService)
	contentHandler := handler.NewContentHandler(contentService)
	reportHandler := handler.NewReportHandler(reportService)
	userHandler := handler.NewUserHandler(userService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.ResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)

	// download carries its own signed token, no JWT required
	api.GET("/reports/download/:token", reportHandler.Download)

	authed := api.Group("")
	authed.Use(middleware.JWT(authService))

	authed.GET("/profile", authHandler.Profile)
	authed.PUT("/profile", authHandler.UpdateProfile)
	authed.PUT("/profile/password", authHandler.ChangePassword)
	authed.DELETE("/profile", authHandler.DeleteAccount)

	authed.GET("/categories", categoryHandler.List)
	authed.POST("/calculator", calculatorHandler.Calculate)

	authed.GET("/dashboard", dashboardHandler.Summary)
	authed.GET("/tips/personalized", dashboardHandler.Tips)

	authed.GET("/records", recordHandler.History)
	authed.GET("/records/:id", recordHandler.Detail)
	authed.DELETE("/records/:id", recordHandler.Delete)

	authed.GET("/content", contentHandler.List)
	authed.GET("/content/:id", contentHandler.Get)
	authed.GET("/content/:id/image", contentHandler.Image)

	authed.POST("/reports", reportHandler.Generate)
	authed.GET("/reports/:recordID/status", reportHandler.Status)

	admin := authed.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.GET("/users", userHandler.List)
	admin.GET("/users/:id", userHandler.Detail)
	admin.DELETE("/users/:id", userHandler.Delete)
	admin.GET("/records", recordHandler.AdminList)
	admin.GET("/records/export", recordHandler.Export)
	admin.POST("/content", contentHandler.Create)
	admin.PUT("/content/:id", contentHandler.Update)
	admin.DELETE("/content/:id", contentHandler.Delete)
	admin.GET("/analytics", analyticsHandler.Overview)
	admin.GET("/metrics", analyticsHandler.SystemMetrics)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
