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
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/csr-compliance-api/api/swagger"
	"github.com/noah-isme/csr-compliance-api/internal/handler"
	internalmiddleware "github.com/noah-isme/csr-compliance-api/internal/middleware"
	"github.com/noah-isme/csr-compliance-api/internal/models"
	"github.com/noah-isme/csr-compliance-api/internal/repository"
	"github.com/noah-isme/csr-compliance-api/internal/service"
	"github.com/noah-isme/csr-compliance-api/pkg/cache"
	"github.com/noah-isme/csr-compliance-api/pkg/config"
	"github.com/noah-isme/csr-compliance-api/pkg/database"
	"github.com/noah-isme/csr-compliance-api/pkg/jobs"
	"github.com/noah-isme/csr-compliance-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/csr-compliance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/csr-compliance-api/pkg/middleware/requestid"
	"github.com/noah-isme/csr-compliance-api/pkg/storage"
)

// @title CSR Compliance API
// @version 1.0.0
// @description Requirements, documents and versioned evidence files for CSR compliance tracking.
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg, "csr-api")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		logr.Info("database schema applied")
	}

	metrics := service.NewMetricsService()
	checks := map[string]handler.ReadinessCheck{"database": db.PingContext}

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		var redisClient *redis.Client
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		repo := repository.NewCacheRepository(redisClient)
		defer repo.Close() //nolint:errcheck
		cacheRepo = repo
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	files, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	cleanup := jobs.NewQueue("attachment-cleanup", service.AttachmentCleanupHandler(files, metrics, logr), jobs.QueueConfig{
		Workers:    cfg.Cleanup.Workers,
		MaxRetries: cfg.Cleanup.MaxRetries,
		RetryDelay: cfg.Cleanup.RetryDelay,
		Logger:     logr,
	})
	cleanup.Start(ctx)
	defer cleanup.Stop()

	requirementRepo := repository.NewRequirementRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	versionRepo := repository.NewVersionRepository(db)
	validate := service.NewValidator()
	defaultStatus := models.Status(cfg.Domain.DefaultStatus)

	documentSvc := service.NewDocumentService(documentRepo, versionRepo, cacheSvc, metrics, validate, logr)
	requirementSvc := service.NewRequirementService(requirementRepo, documentSvc, cacheSvc, metrics, validate, logr)
	versionSvc := service.NewVersionService(versionRepo, documentRepo, cacheSvc, metrics, validate, logr, service.VersionServiceConfig{DefaultStatus: defaultStatus})
	attachmentSvc := service.NewAttachmentService(versionRepo, files, storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL), cleanup, cacheSvc, metrics, logr, service.AttachmentServiceConfig{
		MaxFileSize:  cfg.Uploads.MaxFileSizeBytes,
		AllowedMIMEs: cfg.Uploads.AllowedMIMEs,
		APIPrefix:    cfg.APIPrefix,
	})
	importSvc := service.NewImportService(requirementRepo, cacheSvc, metrics, validate, logr, defaultStatus)
	reportSvc := service.NewReportService(requirementRepo, nil, nil, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))
	r.MaxMultipartMemory = cfg.Uploads.MaxFileSizeBytes

	metricsHandler := handler.NewMetricsHandler(metrics, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.Handlers{
		Requirements: handler.NewRequirementHandler(requirementSvc),
		Documents:    handler.NewDocumentHandler(documentSvc),
		Versions:     handler.NewVersionHandler(versionSvc, attachmentSvc),
		Import:       handler.NewImportHandler(importSvc),
		Reports:      handler.NewReportHandler(reportSvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
