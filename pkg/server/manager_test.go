package server

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-inventory-api/internal/config"
)

func TestContainerManager_BuildsOnce(t *testing.T) {
	loads := 0
	cm := NewContainerManager(func() (*config.Config, error) {
		loads++
		return testConfig(config.StoreTypeMemory), nil
	})

	assert.False(t, cm.IsInitialized())

	var wg sync.WaitGroup
	containers := make([]*Container, 10)
	for i := range containers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := cm.GetContainer(context.Background())
			assert.NoError(t, err)
			containers[i] = c
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, loads)
	assert.True(t, cm.IsInitialized())
	assert.False(t, cm.LastUsed().IsZero())
	for _, c := range containers {
		assert.Same(t, containers[0], c)
	}
}

func TestContainerManager_RetriesAfterFailure(t *testing.T) {
	fail := true
	cm := NewContainerManager(func() (*config.Config, error) {
		if fail {
			return nil, errors.New("missing configuration")
		}
		return testConfig(config.StoreTypeMemory), nil
	})

	_, err := cm.GetContainer(context.Background())
	require.Error(t, err)
	assert.False(t, cm.IsInitialized())

	fail = false
	c, err := cm.GetContainer(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestContainerManager_Cleanup(t *testing.T) {
	cm := NewContainerManager(func() (*config.Config, error) {
		return testConfig(config.StoreTypeMemory), nil
	})

	require.NoError(t, cm.Cleanup(), "cleanup before first use is a no-op")

	first, err := cm.GetContainer(context.Background())
	require.NoError(t, err)
	require.NoError(t, cm.Cleanup())
	assert.False(t, cm.IsInitialized())

	second, err := cm.GetContainer(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestGetContainerManager(t *testing.T) {
	assert.Same(t, GetContainerManager(), GetContainerManager())
}
