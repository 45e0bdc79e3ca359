package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paylink-system/services/paylink-service/internal/config"
	"paylink-system/services/paylink-service/internal/handlers"
	"paylink-system/services/paylink-service/internal/lifecycle"
	"paylink-system/services/paylink-service/internal/middleware"
	"paylink-system/services/paylink-service/internal/notify"
	"paylink-system/services/paylink-service/internal/phone"
	"paylink-system/services/paylink-service/internal/repository"
	"paylink-system/shared/kafka"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	pgStore, err := repository.NewPostgresStore(cfg.PostgresDSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Create cached store
	cachedStore := repository.NewCachedStore(pgStore, rdb, 5*time.Minute)

	// Kafka: async producer for audit events, sync producer for SMS hand-off
	eventProducer := kafka.NewProducer(cfg.KafkaBrokers)
	smsProducer, err := kafka.NewSyncProducer(cfg.KafkaBrokers)
	if err != nil {
		logger.Error("failed to start sync Kafka producer", "error", err)
		os.Exit(1)
	}
	dispatcher := notify.NewKafkaDispatcher(smsProducer, cfg.SMSTopic)

	manager := lifecycle.NewManager(
		cachedStore,
		dispatcher,
		phone.NewNormalizer(),
		eventProducer,
		lifecycle.Config{
			LinkBaseURL:   cfg.LinkBaseURL,
			SMSFrom:       cfg.SMSFrom,
			DefaultRegion: cfg.DefaultRegion,
			DefaultTip:    cfg.DefaultTip,
		},
		logger,
	)

	orderHandler := &handlers.OrderHandler{
		Lifecycle: manager,
		Log:       logger,
	}

	// Setup HTTP server with graceful shutdown
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: setupRoutes(orderHandler, rdb),
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("starting paylink service", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer eventProducer.Close()
	defer smsProducer.Close()
	defer pgStore.Close()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server exited properly")
}

func setupRoutes(oh *handlers.OrderHandler, rdb *redis.Client) *http.ServeMux {
	mux := http.NewServeMux()
	limited := middleware.RateLimit(rdb, 60, time.Minute)

	mux.Handle("POST /orders", limited(http.HandlerFunc(oh.HandleCreate)))
	mux.Handle("PUT /orders/{id}", limited(http.HandlerFunc(oh.HandleUpdate)))
	mux.HandleFunc("GET /orders/{id}", oh.HandleGet)
	mux.Handle("POST /orders/{id}/payment-request", limited(http.HandlerFunc(oh.HandleSendPaymentRequest)))
	mux.Handle("POST /orders/{id}/pay", limited(http.HandlerFunc(oh.HandleCapture)))

	// Add health check endpoint for Kubernetes
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return mux
}
