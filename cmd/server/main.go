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

	goredis "github.com/redis/go-redis/v9"

	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app/controller"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/cart"
	"github.com/ikkim/storefront-backend/internal/catalog"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/ikkim/storefront-backend/internal/router"
	"github.com/ikkim/storefront-backend/internal/scheduler"
	"github.com/ikkim/storefront-backend/internal/storage"
	ws "github.com/ikkim/storefront-backend/internal/websocket"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/ikkim/storefront-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	database, err := db.Initialize(&cfg.Database)
	if err != nil {
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
	if err := db.SeedCategories(database); err != nil {
		logger.Warn("Failed to seed categories", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Cart blobs and revoked tokens live in Redis when it is available.
	var (
		cartStorage cart.Storage = cart.NewMemoryStorage()
		revoker     interface {
			service.TokenRevoker
			middleware.RevocationChecker
		} = service.NewMemoryTokenBlacklist()
	)
	if cfg.Redis.Enabled {
		client, err := redis.Connect(ctx, &cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, carts and token blacklist stay in memory", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer closeRedis(client)
			cartStorage = cart.NewRedisStorage(client, cfg.Cart.BlobTTL)
			revoker = redis.NewTokenBlacklist(client)
		}
	}

	var objects service.ObjectStorage
	if cfg.S3.AccessKeyID != "" && cfg.S3.Bucket != "" {
		s3, err := storage.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			logger.Warn("S3 unavailable, uploads are disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			objects = s3
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(database)
	productRepo := repository.NewProductRepository(database)
	categoryRepo := repository.NewCategoryRepository(database)
	orderRepo := repository.NewOrderRepository(database)
	addressRepo := repository.NewAddressRepository(database)
	reviewRepo := repository.NewReviewRepository(database)
	resetRepo := repository.NewPasswordResetRepository(database)

	snapshot := catalog.NewSnapshot(productRepo)
	carts := cart.NewRegistry(cartStorage, cfg.Cart.Namespace)

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		revoker,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	resetService := service.NewPasswordResetService(resetRepo, userRepo, nil)
	productService := service.NewProductService(productRepo, categoryRepo, snapshot)
	categoryService := service.NewCategoryService(categoryRepo)
	reviewService := service.NewReviewService(reviewRepo, productRepo)
	cartService := service.NewCartService(carts, productRepo)
	orderService := service.NewOrderService(database, orderRepo, productRepo, addressRepo, carts)
	addressService := service.NewAddressService(addressRepo)
	uploadService := service.NewUploadService(objects, userRepo)
	dashboardService := service.NewDashboardService(orderRepo, userRepo, productRepo)

	if err := productService.Refresh(ctx); err != nil {
		logger.Warn("Initial catalog load failed, retrying on first request", map[string]interface{}{
			"error": err.Error(),
		})
	}

	hub := ws.NewHub(cartService)
	go hub.Run(ctx)

	housekeeping := scheduler.NewHousekeepingScheduler(resetService, productService, cfg.Catalog.RefreshSpec)
	if err := housekeeping.Start(); err != nil {
		logger.Fatal("Failed to start housekeeping scheduler", err)
	}
	defer housekeeping.Stop()

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, revoker)

	r := router.NewRouter(router.Controllers{
		Auth:      controller.NewAuthController(authService, resetService),
		Product:   controller.NewProductController(productService),
		Category:  controller.NewCategoryController(categoryService),
		Review:    controller.NewReviewController(reviewService),
		Cart:      controller.NewCartController(cartService),
		LiveCart:  controller.NewLiveCartController(hub, cfg.CORS.AllowedOrigins),
		Order:     controller.NewOrderController(orderService),
		Address:   controller.NewAddressController(addressService),
		Upload:    controller.NewUploadController(uploadService),
		Dashboard: controller.NewDashboardController(dashboardService),
	}, authMiddleware, cfg)

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

	<-ctx.Done()
	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully")
}

func closeRedis(client *goredis.Client) {
	if err := client.Close(); err != nil {
		logger.Error("Failed to close Redis connection", err)
	}
}
