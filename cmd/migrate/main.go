package main

import (
	"flag"
	"fmt"
	"path/filepath"

	"product-inventory-api/internal/adapters/storage"

	"github.com/sirupsen/logrus"
)

func main() {
	var (
		dbPath  = flag.String("db", "./data/products.db", "SQLite store file path")
		action  = flag.String("action", "up", "Migration action: up, down, status")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	absDBPath, err := filepath.Abs(*dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to get absolute database path")
	}

	logger.WithFields(logrus.Fields{
		"db_path": absDBPath,
		"action":  *action,
	}).Info("Starting migration tool")

	migrator, err := storage.NewSQLiteMigrator(absDBPath, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open database")
	}
	defer migrator.Close()

	switch *action {
	case "up":
		if err := migrator.Up(); err != nil {
			logger.WithError(err).Fatal("Migration up failed")
		}
	case "down":
		if err := migrator.Down(); err != nil {
			logger.WithError(err).Fatal("Migration down failed")
		}
	case "status":
		if err := showMigrationStatus(migrator); err != nil {
			logger.WithError(err).Fatal("Failed to get migration status")
		}
	default:
		logger.WithField("action", *action).Fatal("Unknown action. Use: up, down, status")
	}

	logger.Info("Migration tool completed successfully")
}

func showMigrationStatus(migrator *storage.SQLiteMigrator) error {
	status, err := migrator.Status()
	if err != nil {
		return err
	}

	fmt.Printf("Migration Status:\n")
	fmt.Printf("  Version: %d\n", status.Version)
	fmt.Printf("  Applied: %t\n", status.Applied)
	fmt.Printf("  Dirty: %t\n", status.Dirty)
	return nil
}
