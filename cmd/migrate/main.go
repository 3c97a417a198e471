package main

import (
	"agencysite/config"
	"agencysite/database"
	"agencysite/logging"
	"context"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	if !cfg.HasDatabase() {
		log.Fatal("DATABASE_URL not set")
	}

	logger, err := logging.New(cfg.LogLevel, cfg.IsDevelopment())
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("failed to connect", zap.Error(err))
	}
	defer db.Close()

	applied, err := db.Migrate(ctx)
	for _, file := range applied {
		fmt.Printf("✓ %s\n", file)
	}
	if err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	if len(applied) == 0 {
		fmt.Println("\nNothing to migrate.")
		return
	}
	fmt.Println("\nAll migrations completed!")
}
