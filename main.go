package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/tutorlab/tutoring-service/internal/config"
	"github.com/tutorlab/tutoring-service/internal/events"
	"github.com/tutorlab/tutoring-service/internal/handlers"
	"github.com/tutorlab/tutoring-service/internal/messenger"
	"github.com/tutorlab/tutoring-service/internal/repositories/postgres"
	"github.com/tutorlab/tutoring-service/internal/services"
	"github.com/tutorlab/tutoring-service/internal/storage"
	"github.com/tutorlab/tutoring-service/internal/utils"
	"github.com/tutorlab/tutoring-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			log.Printf("Warning: Failed to initialize Redis: %v", err)
		}
	}

	// Initialize repositories
	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	tz, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("Invalid TIMEZONE %q: %v", cfg.Timezone, err)
	}

	// Event bus: the in-process channel always carries dispatch; Kafka is an
	// optional mirror for external consumers.
	bus := events.NewGoChannelBus(slogLogger)
	var publisher events.EventPublisher = bus
	if cfg.EventBackend == "kafka" {
		kafkaPublisher, err := events.NewKafkaEventPublisher(cfg.KafkaBrokers, slogLogger)
		if err != nil {
			log.Fatalf("Failed to initialize Kafka publisher: %v", err)
		}
		publisher = events.NewMultiPublisher(bus, kafkaPublisher)
	}

	// Document storage
	store, err := storage.NewLocalDocumentStore(cfg.DocsDir)
	if err != nil {
		log.Fatalf("Failed to initialize document store: %v", err)
	}

	// Outbound messaging
	tg := messenger.NewTelegramMessenger(cfg.BotAPIEndpoint, cfg.BotToken, slogLogger)

	// Initialize services
	serviceManager := services.NewServiceManager(services.ServiceManagerConfig{
		Repo:             repoManager.GetRepository(),
		Publisher:        publisher,
		Subscriber:       bus,
		Messenger:        tg,
		Logger:           slogLogger,
		TokenSecret:      cfg.TokenSecret,
		TokenTTL:         cfg.TokenTTL,
		Timezone:         tz,
		ReminderInterval: cfg.PollInterval,
	})
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Background workers
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	go func() {
		if err := serviceManager.Dispatcher().Run(workerCtx); err != nil {
			slogLogger.Error("Notification dispatcher exited", "error", err)
		}
	}()
	go serviceManager.Reminder().Run(workerCtx)
	if cfg.BotToken != "" {
		poller := messenger.NewLinkPoller(tg, serviceManager.Link(), slogLogger)
		go poller.Run(workerCtx)
	} else {
		slogLogger.Warn("BOT_TOKEN not set, Telegram link poller disabled")
	}

	// Initialize handlers
	handlerManager := handlers.NewHandlerManager(serviceManager, store, logger)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	stopWorkers()

	if err := serviceManager.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down services", "error", err)
	}
	if err := repoManager.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down repositories", "error", err)
	}

	logger.Info("Server exited")
}
