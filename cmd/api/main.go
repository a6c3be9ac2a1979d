package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"commerce-sync-service/config"
	"commerce-sync-service/internal/adapter/deadletter"
	httpHandler "commerce-sync-service/internal/adapter/http/handler"
	pgStorage "commerce-sync-service/internal/adapter/storage/postgres"
	redisStorage "commerce-sync-service/internal/adapter/storage/redis"
	"commerce-sync-service/internal/core/ports"
	"commerce-sync-service/internal/service"
	"commerce-sync-service/internal/worker"
	"commerce-sync-service/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Commerce Sync Service")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Processed-event markers live in Redis by default; Postgres keeps
	// them across Redis restarts at the cost of a SQL round trip.
	var dedupStore ports.DedupStore
	switch cfg.Webhook.DedupBackend {
	case "postgres":
		dedupStore = pgStorage.NewProcessedEventRepo(pool)
	default:
		dedupStore = redisStorage.NewDedupStore(rdb)
	}
	log.Info().Str("backend", cfg.Webhook.DedupBackend).Msg("dedup store initialized")

	// Core services
	sigSvc := service.NewHMACSignatureService()
	dedup := service.NewDeduplicator(dedupStore, cfg.Webhook.PendingLease, log)
	dispatcher := service.NewDispatcher(log)
	service.RegisterDefaultHandlers(dispatcher, log)

	// Optional Kafka dead-letter sink
	var deadLetterSink ports.DeadLetterSink
	if len(cfg.DeadLetter.Brokers) > 0 {
		kafkaSink := deadletter.NewKafkaSink(cfg.DeadLetter, log)
		defer kafkaSink.Close()
		deadLetterSink = kafkaSink
		log.Info().Str("topic", cfg.DeadLetter.Topic).Msg("Kafka dead-letter sink enabled")
	}

	// Async event processor
	processor := worker.NewProcessor(
		dispatcher,
		dedup,
		deadLetterSink,
		cfg.Webhook.QueueSize,
		cfg.Webhook.Workers,
		log,
	)
	processor.Start(ctx)

	// Health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		WebhookSecret:  cfg.Webhook.Secret,
		SigSvc:         sigSvc,
		Dedup:          dedup,
		Queue:          processor,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Drain in-flight events before releasing connections
	processor.Stop()

	log.Info().Msg("Server exited")
}
