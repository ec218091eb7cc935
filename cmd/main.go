package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/homeflux/analytics/internal/analytics"
	"github.com/homeflux/analytics/internal/cache"
	"github.com/homeflux/analytics/internal/config"
	"github.com/homeflux/analytics/internal/database"
	"github.com/homeflux/analytics/internal/ingest"
	"github.com/homeflux/analytics/internal/scheduler"
	"github.com/homeflux/analytics/internal/server"
	"github.com/homeflux/analytics/internal/service"
)

// Command analytics provides an HTTP service for smart-home device usage
// analytics.
//
// The service supports:
//   - Per-owner usage reports (statistics, high-consumption flags,
//     usage patterns, maintenance indicators)
//   - Per-device consumption history and 30-day forecasts
//   - Automation scene recommendations mined from operate events
//   - Kafka ingest of device state-change batches
//   - Prometheus metrics
//
// Usage:
//
//	analytics [flags]
//
// The flags are:
//
//	-config string
//	      path to config file (default "config.yaml")
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Load configuration
	appConfig, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logger
	logger := logrus.New()
	if appConfig.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(appConfig.Logging.Level); err == nil {
		logger.SetLevel(level)
	}

	logger.WithFields(logrus.Fields{
		"port": appConfig.Server.Port,
	}).Info("Starting server")

	// Construct connection string from config
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		appConfig.Database.Host,
		appConfig.Database.Port,
		appConfig.Database.User,
		appConfig.Database.Password,
		appConfig.Database.Name,
		appConfig.Database.SSLMode,
	)

	repo, err := database.NewPostgresRepo(connStr)
	if err != nil {
		logger.Fatalf("Failed to create repository: %v", err)
	}

	// Create a context that will be canceled on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize components
	svc := service.New(repo, repo, repo,
		analytics.PairingMode(appConfig.Analytics.PairingMode), logger)

	store, err := buildResponseCache(appConfig)
	if err != nil {
		logger.Fatalf("Failed to create response cache: %v", err)
	}

	srv := server.New(svc, logger, store, server.Config{
		RateLimit:      appConfig.Server.RateLimit,
		RateLimitBurst: appConfig.Server.RateLimitBurst,
	})

	consumer, err := ingest.NewConsumer(ingest.Config{
		Brokers: appConfig.Kafka.Brokers,
		Topic:   appConfig.Kafka.Topic,
		GroupID: appConfig.Kafka.GroupID,
	}, svc, logger)
	if err != nil {
		logger.Fatalf("Failed to create ingest consumer: %v", err)
	}

	sched := scheduler.NewScheduler(ctx, svc, logger)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", appConfig.Server.Host, appConfig.Server.Port),
		Handler: srv.Router(),
	}

	// Start background services
	errChan := make(chan error, 1)

	go func() {
		if err := consumer.Run(ctx); err != nil {
			errChan <- fmt.Errorf("ingest error: %w", err)
		}
	}()

	go func() {
		if err := sched.Start(); err != nil {
			errChan <- fmt.Errorf("scheduler error: %w", err)
		}
	}()

	// Handle shutdown gracefully
	go handleShutdown(ctx, cancel, httpServer, logger, repo, consumer, sched, errChan)

	logger.WithFields(logrus.Fields{
		"addr": httpServer.Addr,
	}).Info("Starting HTTP server")

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Wait for any error
	if err := <-errChan; err != nil {
		logger.Fatalf("Service error: %v", err)
	}
}

// buildResponseCache picks the cache backend the HTTP layer uses.
func buildResponseCache(cfg *config.Config) (cache.ResponseCache, error) {
	switch cfg.Server.CacheBackend {
	case "redis":
		return cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	default:
		return cache.NewLRU(cfg.Server.CacheSize)
	}
}

// Handle graceful shutdown
func handleShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	httpServer *http.Server,
	logger *logrus.Logger,
	repo *database.PostgresRepo,
	consumer *ingest.Consumer,
	sched *scheduler.Scheduler,
	done chan<- error,
) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		logger.Println("Context canceled, initiating shutdown")
	case sig := <-sigChan:
		logger.Printf("Received signal %v, initiating shutdown", sig)
	}

	// Perform graceful shutdown
	logger.Println("Gracefully stopping server...")
	cancel()
	sched.Stop()
	consumer.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP shutdown error: %v", err)
	}
	logger.Println("Server stopped")

	// Clean up the repository
	repo.Close()
	done <- nil
}
