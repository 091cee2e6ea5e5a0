package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	app_cart "marketplace/internal/app/cart"
	app_catalog "marketplace/internal/app/catalog"
	app_orders "marketplace/internal/app/orders"
	app_reports "marketplace/internal/app/reports"
	app_reviews "marketplace/internal/app/reviews"
	app_settlement "marketplace/internal/app/settlement"
	"marketplace/internal/cache"
	"marketplace/internal/config"
	http_cart "marketplace/internal/handler/http/cart"
	http_catalog "marketplace/internal/handler/http/catalog"
	http_orders "marketplace/internal/handler/http/orders"
	http_reports "marketplace/internal/handler/http/reports"
	http_reviews "marketplace/internal/handler/http/reviews"
	kafka_handler "marketplace/internal/handler/kafka"
	"marketplace/internal/infrastructure/database"
	"marketplace/internal/infrastructure/kafka"
	redisInfra "marketplace/internal/infrastructure/redis"
	"marketplace/internal/middleware"
	"marketplace/internal/outbox"
	"marketplace/internal/payment"
	redis_cart_repo "marketplace/internal/repository/cart_repo/redis"
	postgres_listing_repo "marketplace/internal/repository/listing_repo/postgres"
	postgres_order_repo "marketplace/internal/repository/order_repo/postgres"
	postgres_outbox_repo "marketplace/internal/repository/outbox_repo/postgres"
	postgres_payment_repo "marketplace/internal/repository/payment_repo/postgres"
	postgres_product_repo "marketplace/internal/repository/product_repo/postgres"
	postgres_report_repo "marketplace/internal/repository/report_repo/postgres"
	postgres_review_repo "marketplace/internal/repository/review_repo/postgres"
	redis_session_repo "marketplace/internal/repository/session_repo/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"

	appLogger, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create zap logger: %v\n", err)
		os.Exit(1)
	}
	appLogger.Info("Marketplace service starting...")

	appLogger.Info("Waiting for database to be available...")
	dbConfig := database.DBConfig{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}

	var db *sql.DB
	maxRetries := 10
	retryDelay := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = database.NewPostgresDB(dbConfig)
		if err == nil {
			appLogger.Info("Successfully connected to PostgreSQL database!")
			break
		}
		appLogger.Warn(fmt.Sprintf("Failed to connect to database (attempt %d/%d): %v. Retrying in %s...", i+1, maxRetries, err, retryDelay))
		time.Sleep(retryDelay)
	}
	if db == nil {
		appLogger.Fatal("Could not connect to database after multiple retries. Exiting.", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("Error closing database connection", zap.Error(err))
		}
	}()

	appLogger.Info("Running database migrations...")
	m, err := migrate.New(cfg.MigrationsPath, cfg.DBMigrationConnectionString())
	if err != nil {
		appLogger.Fatal("Failed to create migrate instance", zap.Error(err))
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		appLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}
	appLogger.Info("Database migrations completed successfully (or no new migrations).")

	rdb, err := redisInfra.NewClient(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer rdb.Close()

	topicCtx, topicCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := kafka.EnsureTopics(topicCtx, cfg.KafkaBrokers,
		[]string{cfg.KafkaPaymentEventsTopic, cfg.KafkaSettlementTopic}, appLogger); err != nil {
		appLogger.Warn("Failed to ensure Kafka topics", zap.Error(err))
	}
	topicCancel()

	kafkaProducer := kafka.NewProducer(cfg.KafkaBrokers, appLogger)
	defer func() {
		if err := kafkaProducer.Close(); err != nil {
			appLogger.Error("Error closing Kafka producer", zap.Error(err))
		}
	}()

	responseCache := cache.NewMemory(cfg.CacheTTL, cfg.CacheSweepInterval)
	defer responseCache.Close()

	productRepository := postgres_product_repo.NewProductRepository()
	listingRepository := postgres_listing_repo.NewListingRepository()
	orderRepository := postgres_order_repo.NewOrderRepository(appLogger)
	paymentRepository := postgres_payment_repo.NewPaymentRepository()
	reviewRepository := postgres_review_repo.NewReviewRepository()
	reportRepository := postgres_report_repo.NewReportRepository()
	outboxRepository := postgres_outbox_repo.NewOutboxRepository()
	cartRepository := redis_cart_repo.NewCartRepository(rdb, cfg.CartTTL)
	sessionRepository := redis_session_repo.NewSessionRepository(rdb, cfg.SessionTTL)

	var gatewayProvider payment.Provider
	if cfg.GatewayConfigured() {
		gatewayProvider = payment.NewGatewayProvider(cfg.GatewayBaseURL, cfg.GatewayKeyID, cfg.GatewaySecret)
		appLogger.Info("Payment gateway configured", zap.String("key_id", cfg.GatewayKeyID))
	} else {
		appLogger.Warn("Payment gateway credentials absent, all orders will use demo mode")
	}

	catalogService := app_catalog.NewCatalogService(db, productRepository, listingRepository, orderRepository, reviewRepository, responseCache, appLogger)
	cartService := app_cart.NewCartService(db, cartRepository, listingRepository, productRepository, appLogger)
	orderService := app_orders.NewOrderService(db, orderRepository, listingRepository, paymentRepository, outboxRepository,
		cartRepository, responseCache, gatewayProvider, cfg.GatewayKeyID, cfg.Currency, cfg.KafkaPaymentEventsTopic, appLogger)
	reviewService := app_reviews.NewReviewService(db, reviewRepository, orderRepository, responseCache, appLogger)
	reportService := app_reports.NewReportService(db, reportRepository, appLogger)
	settlementService := app_settlement.NewSettlementService(db, paymentRepository, appLogger)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	outboxProcessor := outbox.NewProcessor(db, outboxRepository, kafkaProducer, cfg.OutboxPollInterval, cfg.OutboxPollTimeout, appLogger)
	outboxProcessor.Start(rootCtx)
	appLogger.Info("Transactional outbox processor started.")

	settlementConsumerHandler := kafka_handler.NewSettlementConsumer(settlementService, appLogger)
	settlementConsumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaSettlementTopic, cfg.KafkaConsumerGroup,
		settlementConsumerHandler.HandleMessage, appLogger)
	go func() {
		if err := settlementConsumer.Consume(rootCtx); err != nil && rootCtx.Err() == nil {
			appLogger.Error("Settlement consumer stopped", zap.Error(err))
		}
	}()
	appLogger.Info("Kafka settlement consumer started.")

	auth := middleware.Authenticate(sessionRepository, appLogger)
	checkoutLimit := middleware.RateLimit(rdb, "checkout", cfg.CheckoutRateLimit, cfg.CheckoutRateWindow, appLogger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	http_catalog.RegisterRoutes(r, catalogService, auth, appLogger)
	http_cart.RegisterRoutes(r, cartService, auth, appLogger)
	http_orders.RegisterRoutes(r, orderService, auth, checkoutLimit, appLogger)
	http_reviews.RegisterRoutes(r, reviewService, auth, appLogger)
	http_reports.RegisterRoutes(r, reportService, auth, appLogger)

	serverAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()
	appLogger.Info("Marketplace service started", zap.String("address", serverAddr))

	<-sigChan

	appLogger.Info("Shutting down marketplace service...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Graceful shutdown failed", zap.Error(err))
	}

	rootCancel()
	outboxProcessor.Stop()
	if err := settlementConsumer.Close(); err != nil {
		appLogger.Error("Error closing settlement consumer", zap.Error(err))
	}
	appLogger.Info("Marketplace service stopped.")
}
