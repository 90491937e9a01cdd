package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fuel-nexus/service-backoffice/internal/application"
	"github.com/fuel-nexus/service-backoffice/internal/auth"
	"github.com/fuel-nexus/service-backoffice/internal/cache"
	"github.com/fuel-nexus/service-backoffice/internal/config"
	"github.com/fuel-nexus/service-backoffice/internal/database"
	"github.com/fuel-nexus/service-backoffice/internal/events"
	"github.com/fuel-nexus/service-backoffice/internal/handler"
	"github.com/fuel-nexus/service-backoffice/internal/health"
	"github.com/fuel-nexus/service-backoffice/internal/kafka"
	"github.com/fuel-nexus/service-backoffice/internal/logger"
	"github.com/fuel-nexus/service-backoffice/internal/middleware"
	"github.com/fuel-nexus/service-backoffice/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-backoffice")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-backoffice",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DB, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.CustomerModel{},
			&repository.ProductModel{},
			&repository.BookingModel{},
			&repository.DeliveryModel{},
			&repository.InventoryModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DB.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, 15*time.Minute)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize cache coordinator
	cacheCoordinator := cache.New(cfg.Cache.Size, cfg.Cache.TTL)

	// Initialize repositories
	customerRepo := repository.NewGormCustomerRepository(db)
	productRepo := repository.NewGormProductRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	deliveryRepo := repository.NewGormDeliveryRepository(db)
	inventoryRepo := repository.NewGormInventoryRepository(db)
	txManager := database.NewGormTxManager(db)

	// Initialize application services
	customerService := application.NewCustomerService(customerRepo, cacheCoordinator, log)
	productService := application.NewProductService(productRepo, cacheCoordinator, log)
	bookingService := application.NewBookingService(
		bookingRepo,
		customerRepo,
		productRepo,
		cacheCoordinator,
		kafkaProducer,
		log,
	)
	deliveryService := application.NewDeliveryService(
		deliveryRepo,
		bookingRepo,
		customerRepo,
		inventoryRepo,
		txManager,
		cacheCoordinator,
		kafkaProducer,
		log,
		cfg.Inventory.LowStockThreshold,
	)
	inventoryService := application.NewInventoryService(
		inventoryRepo,
		productRepo,
		cacheCoordinator,
		kafkaProducer,
		log,
		cfg.Inventory.LowStockThreshold,
	)

	// Initialize and start the stock alert consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.Kafka.GroupPrefix + "backoffice-service"
	stockAlertConsumer := events.NewStockAlertConsumer(cfg.Kafka.Brokers, groupID, log)
	defer func() { _ = stockAlertConsumer.Close() }()

	go func() {
		log.Info("starting stock alert consumer")
		if err := stockAlertConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("stock alert consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	customerHandler := handler.NewCustomerHandler(customerService)
	productHandler := handler.NewProductHandler(productService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	deliveryHandler := handler.NewDeliveryHandler(deliveryService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-backoffice")
	healthHandler.RegisterRoutes(router)

	// Register routes
	customerHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	productHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	deliveryHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	inventoryHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-backoffice...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-backoffice stopped")
}
