package main

import (
	"context"   // context package is needed for Redis operations and shutdown
	"errors"    // Server closed detection
	"net/http"  // HTTP server
	"os"        // Signal channel type
	"os/signal" // Graceful shutdown
	"syscall"   // Termination signals

	"finance_wallet/internal/accounts" // Account store
	"finance_wallet/internal/api"      // Custom package for API handlers
	"finance_wallet/internal/auth"     // Credential service
	"finance_wallet/internal/config"   // Custom package for configuration
	"finance_wallet/internal/db"       // Database connection
	"finance_wallet/internal/ledger"   // Wallet ledger
	"finance_wallet/internal/utils"    // Logger and cache

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	utils.InitLogger(cfg.LogLevel, cfg.IsProd)

	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}

	database, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	defer func() {
		if err := db.Close(database); err != nil {
			logrus.WithError(err).Warn("Closing database failed")
		}
	}()

	// Setup Redis client, caching is skipped when no address is configured
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		defer redisClient.Close()
		// Test Redis connection
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
	} else {
		logrus.Warn("REDIS_ADDR not set, caching disabled")
	}

	router, err := api.NewRouter(api.Deps{
		Auth:           auth.NewService(database, cfg.JWTSecret, cfg.JWTTTL),
		Accounts:       accounts.NewStore(database),
		Ledger:         ledger.New(database, cfg.Currency),
		Cache:          utils.NewCache(redisClient, cfg.CacheTTL),
		TrustedProxies: cfg.TrustedProxies,
		IsProd:         cfg.IsProd,
	})
	if err != nil {
		logrus.Fatalf("failed to build router: %v", err)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: router,
	}
	go func() {
		logrus.WithField("port", cfg.AppPort).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
	}
}
