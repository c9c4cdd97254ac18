package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/e4rthen/storefront-backend/config"
	"github.com/e4rthen/storefront-backend/internal/app/controller"
	"github.com/e4rthen/storefront-backend/internal/app/repository"
	"github.com/e4rthen/storefront-backend/internal/app/service"
	"github.com/e4rthen/storefront-backend/internal/db"
	"github.com/e4rthen/storefront-backend/internal/middleware"
	"github.com/e4rthen/storefront-backend/internal/router"
	"github.com/e4rthen/storefront-backend/internal/scheduler"
	"github.com/e4rthen/storefront-backend/internal/storage"
	"github.com/e4rthen/storefront-backend/pkg/logger"
	"github.com/e4rthen/storefront-backend/pkg/metrics"
	"github.com/e4rthen/storefront-backend/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting Storefront Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Refresh token revocation needs Redis; without it logout is a no-op.
	var revoker service.TokenRevoker
	if cfg.Redis.Enabled() {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Fatal("Failed to initialize Redis", err)
		}
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
		revoker = redis.NewTokenStore(redis.GetClient())
	} else {
		logger.Warn("Redis not configured, refresh token revocation disabled")
	}

	var (
		objectStore      service.ObjectStore
		uploadController *controller.UploadController
	)
	if cfg.S3.Enabled() {
		s3Storage, err := storage.NewS3Storage(context.Background(), cfg.S3)
		if err != nil {
			logger.Fatal("Failed to initialize S3 storage", err)
		}
		objectStore = s3Storage
		uploadController = controller.NewUploadController(s3Storage)
	} else {
		logger.Warn("S3 bucket not configured, uploads and scheduled reports disabled")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storeMetrics := metrics.NewStoreMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	jobMetrics := metrics.NewJobMetrics(registry)

	// Initialize repositories
	database := db.GetDB()
	userRepo := repository.NewUserRepository(database)
	productRepo := repository.NewProductRepository(database)
	cartRepo := repository.NewCartRepository(database)
	orderRepo := repository.NewOrderRepository(database)

	// Initialize services
	authService := service.NewAuthService(
		database,
		userRepo,
		cartRepo,
		revoker,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	productService := service.NewProductService(productRepo)
	cartService := service.NewCartService(cartRepo, productRepo, storeMetrics)
	checkoutService := service.NewCheckoutService(database, cartRepo, orderRepo, storeMetrics)
	orderService := service.NewOrderService(orderRepo)
	reportService := service.NewReportService(orderRepo, objectStore)

	// Setup router
	r := router.NewRouter(
		controller.NewAuthController(authService),
		controller.NewProductController(productService),
		controller.NewCartController(cartService),
		controller.NewCheckoutController(checkoutService),
		controller.NewOrderController(orderService),
		controller.NewReportController(reportService),
		uploadController,
		middleware.NewAuthMiddleware(cfg.JWT.Secret, userRepo),
		httpMetrics,
		registry,
		cfg,
	)

	var reportScheduler *scheduler.ReportScheduler
	if objectStore != nil {
		reportScheduler = scheduler.NewReportScheduler(cfg.Reports.CronSpec, reportService, jobMetrics)
		if err := reportScheduler.Start(); err != nil {
			logger.Fatal("Failed to start report scheduler", err)
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	if reportScheduler != nil {
		reportScheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	logger.Info("Server stopped successfully")
}
