package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parkly/api/routes"
	"parkly/internal/notifications"
	"parkly/internal/payments"
	"parkly/internal/reservations"
	"parkly/internal/shared/config"
	"parkly/internal/shared/database"
	"parkly/internal/shared/middleware"
	"parkly/pkg/logger"
	"parkly/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	appLogger = logger.NewWithWriter(os.Stdout, cfg.LogLevel)
	logger.SetDefault(appLogger)
	appLogger.Info("starting parkly",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("commit", GitCommit),
	)

	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to connect", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled && db.Redis != nil {
		rateLimiter = ratelimit.NewRateLimiter(db.Redis, &ratelimit.Config{
			Enabled:                     cfg.RateLimit.Enabled,
			WindowDuration:              cfg.RateLimit.WindowDuration,
			DefaultRequests:             cfg.RateLimit.DefaultRequests,
			PublicRequests:              cfg.RateLimit.PublicRequests,
			AuthRequests:                cfg.RateLimit.AuthRequests,
			ReservationRequests:         cfg.RateLimit.ReservationRequests,
			ReservationCriticalRequests: cfg.RateLimit.ReservationCriticalRequests,
			AdminRequests:               cfg.RateLimit.AdminRequests,
			UserRequests:                cfg.RateLimit.UserRequests,
			HealthRequests:              cfg.RateLimit.HealthRequests,
			WhitelistedIPs:              cfg.RateLimit.WhitelistedIPs,
		})
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	// Lifecycle events are best-effort: without Kafka the allocator simply doesn't publish.
	var publisher reservations.EventPublisher
	if cfg.Kafka.Enabled {
		producerConfig := notifications.DefaultKafkaProducerConfig()
		producerConfig.Brokers = cfg.Kafka.Brokers
		producerConfig.Topic = cfg.Kafka.EventsTopic

		producer, err := notifications.NewKafkaEventProducer(producerConfig)
		if err != nil {
			appLogger.Error("Failed to initialize event producer, continuing without events", slog.Any("error", err))
		} else {
			publisher = producer
			defer func() {
				if err := producer.Close(); err != nil {
					appLogger.Error("Error closing event producer", slog.Any("error", err))
				}
			}()
		}
	}

	engine, appRouter := setupRouter(cfg, db, rateLimiter, publisher)
	reservationService := appRouter.ReservationService()

	var sweeper *reservations.Sweeper
	if cfg.Reservation.SweepSchedule != "" {
		sweeper, err = reservations.NewSweeper(reservationService, cfg.Reservation.SweepSchedule, time.Minute)
		if err != nil {
			appLogger.Error("Invalid sweep schedule", slog.Any("error", err))
			os.Exit(1)
		}
		sweeper.Start()
	}

	var consumer *payments.Consumer
	if cfg.Kafka.Enabled {
		consumerConfig := payments.DefaultConsumerConfig()
		consumerConfig.Brokers = cfg.Kafka.Brokers
		consumerConfig.GroupID = cfg.Kafka.ConsumerGroup
		consumerConfig.Topics = []string{cfg.Kafka.PaymentsTopic}

		handler := payments.NewHandler(reservationService, 3, cfg.Reservation.RetryBackoff)
		consumer, err = payments.NewConsumer(consumerConfig, handler)
		if err != nil {
			appLogger.Error("Failed to initialize payment consumer, reservations will need manual activation", slog.Any("error", err))
			consumer = nil
		} else {
			consumer.Start(context.Background())
		}
	}

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("api_status", fmt.Sprintf("http://localhost:%s/status", cfg.Port)),
			slog.String("version", cfg.APIVersion),
			slog.String("db_driver", cfg.Database.Driver),
			slog.Bool("redis_cache", db.Redis != nil),
			slog.Bool("rate_limiting", rateLimiter != nil),
			slog.Bool("kafka", publisher != nil),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// stop taking requests first, then drain background work
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}
	if sweeper != nil {
		sweeper.Stop(ctx)
	}
	if consumer != nil {
		if err := consumer.Stop(); err != nil {
			appLogger.Error("Error stopping payment consumer", slog.Any("error", err))
		}
	}

	appLogger.Info("Server exited gracefully")
}

func setupRouter(cfg *config.Config, db *database.DB, rateLimiter *ratelimit.RateLimiter, publisher reservations.EventPublisher) (*gin.Engine, *routes.Router) {
	engine := gin.New()
	appLogger := logger.GetDefault()

	engine.Use(middleware.RequestLogger(appLogger), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Idempotency-Key", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
		appLogger.Info("Rate limiting middleware applied to all routes")
	}

	appRouter := routes.NewRouter(cfg, db, publisher)
	appRouter.SetupRoutes(engine)

	return engine, appRouter
}
