package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"product-inventory-api/internal/adapters/storage"
	"product-inventory-api/internal/config"
	"product-inventory-api/internal/migration"

	"github.com/sirupsen/logrus"
)

func main() {
	var (
		jsonPath    = flag.String("json", "./data/products.json", "Products JSON file path")
		action      = flag.String("action", "import", "Action: check, import, validate")
		storeType   = flag.String("store", "", "Store type override: dynamodb, memory, sqlite")
		sqlitePath  = flag.String("db", "", "SQLite store file path override")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		dryRun      = flag.Bool("dry-run", false, "Perform a dry run without making changes")
		generateIDs = flag.Bool("generate-ids", false, "Assign a random productId to records without one")
		timeout     = flag.Duration("timeout", 5*time.Minute, "Overall timeout")
	)
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	absJSONPath, err := filepath.Abs(*jsonPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to get absolute JSON path")
	}

	logger.WithFields(logrus.Fields{
		"json_path": absJSONPath,
		"action":    *action,
		"dry_run":   *dryRun,
	}).Info("Starting product import tool")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	opts := migration.ImportOptions{DryRun: *dryRun, GenerateIDs: *generateIDs}

	switch *action {
	case "check":
		err = checkFile(absJSONPath, logger)
	case "import":
		err = withStore(ctx, logger, *storeType, *sqlitePath, opts.DryRun, func(store storage.ItemStore) error {
			return runImport(ctx, migration.NewProductImporter(store, logger), absJSONPath, opts)
		})
	case "validate":
		err = withStore(ctx, logger, *storeType, *sqlitePath, false, func(store storage.ItemStore) error {
			return migration.NewProductImporter(store, logger).Validate(ctx, absJSONPath)
		})
	default:
		logger.WithField("action", *action).Fatal("Unknown action. Use: check, import, validate")
	}
	if err != nil {
		logger.WithError(err).Fatal("Product import tool failed")
	}

	logger.Info("Product import tool completed successfully")
}

// withStore opens the configured item store for the duration of fn.
// Dry runs never touch a store.
func withStore(ctx context.Context, logger *logrus.Logger, storeType, sqlitePath string, dryRun bool, fn func(storage.ItemStore) error) error {
	if dryRun {
		return fn(nil)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if storeType != "" {
		cfg.Store.Type = storeType
	}
	if sqlitePath != "" {
		cfg.Store.SQLitePath = sqlitePath
	}

	store, err := storage.NewFactory(logger).Create(ctx, &cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to create item store: %w", err)
	}
	defer store.Close()

	return fn(store)
}

func checkFile(path string, logger *logrus.Logger) error {
	info, err := os.Stat(path)
	if err != nil {
		logger.Warn("No products file found")
		return fmt.Errorf("products file not found: %s", path)
	}

	records, err := migration.ReadProductsFile(path)
	if err != nil {
		return err
	}

	fmt.Printf("Found %d product records in %s\n", len(records), path)
	fmt.Printf("  Size: %d bytes, Modified: %s\n",
		info.Size(), info.ModTime().Format("2006-01-02 15:04:05"))
	return nil
}

func runImport(ctx context.Context, importer *migration.ProductImporter, path string, opts migration.ImportOptions) error {
	result, err := importer.Import(ctx, path, opts)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Printf("\n=== Import Results ===\n")
	fmt.Printf("Records processed: %d\n", result.Processed)
	fmt.Printf("Products imported: %d\n", result.Imported)
	fmt.Printf("Records skipped: %d\n", result.Skipped)

	if len(result.Warnings) > 0 {
		fmt.Printf("\nWarnings (%d):\n", len(result.Warnings))
		for _, warning := range result.Warnings {
			fmt.Printf("  ! %s\n", warning)
		}
	}

	if len(result.Errors) > 0 {
		fmt.Printf("\nErrors (%d):\n", len(result.Errors))
		for _, errMsg := range result.Errors {
			fmt.Printf("  x %s\n", errMsg)
		}
		return fmt.Errorf("import completed with %d errors", len(result.Errors))
	}

	if opts.DryRun {
		return nil
	}

	fmt.Printf("\nImport completed successfully\n")
	return importer.Validate(ctx, path)
}
