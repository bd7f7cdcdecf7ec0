package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tasleem/config"
	"tasleem/internal/api"
	"tasleem/internal/broker"
	"tasleem/internal/imagehost"
	"tasleem/internal/redisclient"
	"tasleem/internal/service"
	"tasleem/internal/store"
	"tasleem/internal/util"
	"tasleem/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting tasleem api")

	tp, err := util.InitTracer(cfg.Observ.JaegerEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Error shutting down tracer", zap.Error(err))
		}
	}()

	db, err := store.NewStore(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Redis connected")

	var publisher service.EventPublisher = service.NopPublisher{}
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicLedger)
		defer producer.Close()
		publisher = broker.NewEventPublisher(producer)
		logger.Info("Kafka producer initialized", zap.String("topic", cfg.Kafka.TopicLedger))
	}

	var images service.ImageHost
	if cfg.Cloudinary.Configured() {
		cld, err := imagehost.NewCloudinary(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret, cfg.Cloudinary.Folder)
		if err != nil {
			logger.Fatal("Failed to initialize image host", zap.Error(err))
		}
		images = cld
	} else {
		logger.Warn("Cloudinary not configured, image uploads disabled")
	}

	authService := service.NewAuthService(db, redisClient, cfg.Auth.SessionTTL)
	journal := service.NewJournalRecorder(db)

	ctx := context.Background()
	if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminPhone, cfg.Auth.AdminPassword); err != nil {
		logger.Error("Failed to seed admin account", zap.Error(err))
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var journalWorker *worker.JournalWorker
	if cfg.Kafka.Enabled {
		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicLedger, cfg.Kafka.ConsumerGroup)
		journalWorker = worker.NewJournalWorker(consumer, journal)
		go func() {
			if err := journalWorker.Start(workerCtx); err != nil {
				logger.Error("Journal worker error", zap.Error(err))
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	handler := api.NewHandler(api.Services{
		Auth:        authService,
		Orders:      service.NewOrderService(db, publisher),
		Withdrawals: service.NewWithdrawalService(db, publisher),
		Catalog:     service.NewCatalogService(db),
		Promos:      service.NewPromoService(db),
		Images:      service.NewImageService(images),
		Journal:     journal,
	}, cfg.Auth.CookieSecure, map[string]api.ReadinessCheck{
		"database": db.Ping,
		"redis":    redisClient.Ping,
	})
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if journalWorker != nil {
		if err := journalWorker.Stop(); err != nil {
			logger.Warn("Error stopping journal worker", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}
