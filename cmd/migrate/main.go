package main

import (
	"finance_wallet/internal/config" // Custom import path (Config)
	"finance_wallet/internal/db"     // Custom import path (Database)
	"finance_wallet/internal/utils"  // Logger setup

	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	utils.InitLogger(cfg.LogLevel, cfg.IsProd)

	database, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	defer db.Close(database)

	if err := db.Migrate(database); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
}
