package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"product-inventory-api/internal/config"
)

// ContainerManager builds the container once per process and hands the same
// instance to every invocation. Lambda reuses the process between
// invocations, so the store client survives warm starts.
type ContainerManager struct {
	mu        sync.Mutex
	container *Container
	lastUsed  time.Time
	load      func() (*config.Config, error)
}

var (
	globalContainerManager *ContainerManager
	containerManagerOnce   sync.Once
)

// GetContainerManager returns the global container manager instance
func GetContainerManager() *ContainerManager {
	containerManagerOnce.Do(func() {
		globalContainerManager = NewContainerManager(config.GetOptimizedConfig)
	})
	return globalContainerManager
}

// NewContainerManager creates a manager that loads its configuration with load
func NewContainerManager(load func() (*config.Config, error)) *ContainerManager {
	return &ContainerManager{load: load}
}

// GetContainer returns the container, building it on first use. A failed
// build is not cached so the next invocation tries again.
func (cm *ContainerManager) GetContainer(ctx context.Context) (*Container, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.container != nil {
		cm.lastUsed = time.Now()
		return cm.container, nil
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	container, err := NewContainer(ctx, cfg)
	if err != nil {
		return nil, err
	}

	container.Logger.WithFields(logrus.Fields{
		"deployment_mode": config.GetDeploymentMode(),
		"store":           cfg.Store.Type,
	}).Info("Container initialized")

	cm.container = container
	cm.lastUsed = time.Now()
	return container, nil
}

// IsInitialized reports whether the container has been built
func (cm *ContainerManager) IsInitialized() bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.container != nil
}

// LastUsed returns when the container was last handed out
func (cm *ContainerManager) LastUsed() time.Time {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.lastUsed
}

// Cleanup closes the container. The next GetContainer builds a new one.
func (cm *ContainerManager) Cleanup() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.container == nil {
		return nil
	}

	err := cm.container.Close()
	cm.container = nil
	return err
}
