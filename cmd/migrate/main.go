package main

import (
	"fmt"
	"os"

	"kosh/internal/config"
	"kosh/internal/database"
	"kosh/internal/logger"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Migration error: %v", err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: migrate <up|reset|version>")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	manager, err := database.NewManager(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := manager.Close(); err != nil {
			logger.Get().Warnf("database close error: %v", err)
		}
	}()

	switch os.Args[1] {
	case "up":
		if err := manager.Migrate(); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Get().Info("Schema is up to date")

	case "reset":
		if err := manager.Reset(); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		logger.Get().Info("Database reset and reseeded")

	case "version":
		version, err := manager.Version()
		if err != nil {
			return fmt.Errorf("failed to read version: %w", err)
		}
		logger.Get().Infof("Schema version: %d (target %d)", version, database.SchemaVersion)

	default:
		return fmt.Errorf("unknown command: %s (use up, reset, or version)", os.Args[1])
	}

	return nil
}
