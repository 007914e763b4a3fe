package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"product-inventory-api/internal/config"
)

// Factory creates ItemStore instances based on configuration
type Factory struct {
	logger *logrus.Logger
}

// NewFactory creates a new storage factory
func NewFactory(logger *logrus.Logger) *Factory {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Factory{logger: logger}
}

// Create creates an ItemStore instance based on the provided configuration
func (f *Factory) Create(ctx context.Context, cfg *config.StoreConfig) (ItemStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("store config is required")
	}

	storeType := strings.ToLower(cfg.Type)

	var store ItemStore
	var err error

	switch storeType {
	case config.StoreTypeDynamoDB:
		store, err = f.createDynamoDBStore(ctx, cfg)
	case config.StoreTypeMemory:
		store = NewMemoryItemStore(cfg.ScanPageSize)
	case config.StoreTypeSQLite:
		store, err = NewSQLiteStore(cfg.SQLitePath, cfg.ScanPageSize, f.logger)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create %s store: %w", storeType, err)
	}

	f.logger.WithFields(logrus.Fields{
		"store_type": storeType,
		"table":      cfg.TableName,
	}).Info("Item store created")

	return store, nil
}

func (f *Factory) createDynamoDBStore(ctx context.Context, cfg *config.StoreConfig) (ItemStore, error) {
	if cfg.TableName == "" {
		return nil, fmt.Errorf("table name is required")
	}

	client, err := NewDynamoDBClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return NewDynamoDBStore(client, cfg.TableName, cfg.ConsistentRead), nil
}
