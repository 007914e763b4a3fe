package server

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"product-inventory-api/internal/adapters/storage"
	"product-inventory-api/internal/config"
	"product-inventory-api/internal/handlers"
	"product-inventory-api/internal/middleware"
	"product-inventory-api/internal/router"
)

// Container holds all application dependencies
type Container struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Store    storage.ItemStore
	Products *handlers.ProductHandler
	Router   *router.Router
}

// NewContainer creates a new dependency injection container, building the
// item store described by cfg.Store
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger := middleware.NewLogger(cfg.Log.Level, cfg.Log.Format)

	store, err := storage.NewFactory(logger).Create(ctx, &cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to create item store: %w", err)
	}

	return newContainer(cfg, logger, store), nil
}

// NewContainerWithStore creates a container around an existing store
func NewContainerWithStore(cfg *config.Config, logger *logrus.Logger, store storage.ItemStore) *Container {
	if logger == nil {
		logger = middleware.NewLogger(cfg.Log.Level, cfg.Log.Format)
	}
	return newContainer(cfg, logger, store)
}

func newContainer(cfg *config.Config, logger *logrus.Logger, store storage.ItemStore) *Container {
	products := handlers.NewProductHandler(store, handlers.ProductOptions{
		UpdatableAttributes: cfg.Products.UpdatableAttributes,
		ScanPageSize:        cfg.Store.ScanPageSize,
	}, logger)

	return &Container{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Products: products,
		Router:   router.New(products, logger),
	}
}

// Close cleans up all resources
func (c *Container) Close() error {
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			return fmt.Errorf("failed to close item store: %w", err)
		}
	}
	return nil
}
