package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/tair/payment-service/docs"
	"github.com/tair/payment-service/internal/payment"
	"github.com/tair/payment-service/internal/payment/domain"
	"github.com/tair/payment-service/internal/payment/handler"
	"github.com/tair/payment-service/internal/payment/vnpay"
	"github.com/tair/payment-service/kafka"
	"github.com/tair/payment-service/pkg/database"
	"github.com/tair/payment-service/pkg/logger"
	"github.com/tair/payment-service/pkg/tracing"
)

func main() {
	// Initialize logger
	serviceName := getEnv("OTEL_SERVICE_NAME", "payment-service")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)

	logLevel := getEnv("LOG_LEVEL", "info")
	logger.SetLevel(logLevel)

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", getEnv("ENVIRONMENT", "development")).
		Str("log_level", logLevel).
		Msg("Starting payment service")

	// Initialize tracer
	tp, err := tracing.InitTracer(serviceName)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	// Load database configuration
	dbConfig := database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "paymentdb"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Connect to database
	db, err := database.NewGormConnection(dbConfig)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	// Run migrations
	if err := db.AutoMigrate(&domain.Payment{}, &domain.ReconcileTask{}); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Logger.Info().Msg("Database initialized successfully")

	// Gateway credentials
	vnpConfig := vnpay.Config{
		TmnCode:    getEnv("VNPAY_TMN_CODE", ""),
		HashSecret: getEnv("VNPAY_HASH_SECRET", ""),
		PayURL:     getEnv("VNPAY_PAY_URL", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"),
		ReturnURL:  getEnv("VNPAY_RETURN_URL", "http://localhost:8083/v1/payment/vnpay/return"),
		APIURL:     getEnv("VNPAY_API_URL", "https://sandbox.vnpayment.vn/merchant_webapi/api/transaction"),
	}
	if err := vnpConfig.Validate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Invalid VNPay configuration")
	}

	// Kafka publisher (optional)
	var publisher *kafka.Publisher
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		publisher, err = kafka.NewPublisher(strings.Split(brokers, ","))
		if err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to initialize Kafka publisher, continuing without events")
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	// Redis client for rate limiting (optional)
	var redisClient *redis.Client
	if addr := getEnv("REDIS_ADDR", ""); addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: getEnv("REDIS_PASSWORD", ""),
		})
	}

	deps := payment.Deps{
		VnpayConfig:        vnpConfig,
		OrderServiceURL:    getEnv("ORDER_SERVICE_URL", "http://localhost:8082"),
		Publisher:          publisher,
		Redis:              redisClient,
		RateLimitPerMinute: 60,
		RateLimitWindow:    time.Minute,
	}

	// Initialize handler and saga coordinator with Wire DI
	app, err := payment.InitializeApp(db, deps)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize payment component")
	}

	logger.Logger.Info().
		Str("order_service_url", deps.OrderServiceURL).
		Bool("kafka_enabled", publisher != nil).
		Bool("rate_limit_enabled", redisClient != nil).
		Msg("Payment component initialized")

	// Reconcile outbox worker
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go app.Coordinator.RunWorker(workerCtx, 30*time.Second)

	// Start HTTP server
	httpPort := getEnv("HTTP_PORT", "8083")
	srv := buildHTTPServer(app.Handler, sqlDB, httpPort)

	go func() {
		logger.Logger.Info().
			Str("port", httpPort).
			Str("metrics_endpoint", "/metrics").
			Msg("HTTP server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")
	stopWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}

func buildHTTPServer(paymentHandler *handler.PaymentHandler, db *sql.DB, port string) *http.Server {
	// Setup router
	router := mux.NewRouter()

	// Register all middlewares using middleware registration system
	handler.RegisterMiddlewares(router, handler.DefaultMiddlewareConfig())

	// Register routes
	paymentHandler.RegisterRoutes(router)

	// Health check endpoint
	paymentHandler.RegisterHealthCheck(router, db)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Swagger UI
	handler.RegisterSwaggerDocs(router, httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return &http.Server{
		Addr:    ":" + port,
		Handler: c.Handler(router),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
