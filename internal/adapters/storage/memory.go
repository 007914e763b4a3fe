package storage

import (
	"context"
	"sort"
	"sync"

	"product-inventory-api/internal/models"
)

// MemoryItemStore is an in-memory implementation of ItemStore for tests and local runs
type MemoryItemStore struct {
	mu       sync.RWMutex
	items    map[string]models.Item
	pageSize int
	closed   bool
}

// NewMemoryItemStore creates a new MemoryItemStore. pageSize caps scan pages
// when the caller does not set a limit; 0 uses DefaultScanPageSize.
func NewMemoryItemStore(pageSize int) *MemoryItemStore {
	if pageSize <= 0 {
		pageSize = DefaultScanPageSize
	}
	return &MemoryItemStore{
		items:    make(map[string]models.Item),
		pageSize: pageSize,
	}
}

func (m *MemoryItemStore) check(ctx context.Context, op, key string) error {
	if err := ctx.Err(); err != nil {
		return NewStorageError(op, key, err)
	}
	if m.closed {
		return NewStorageError(op, key, ErrStoreClosed)
	}
	return nil
}

// GetItem implements ItemStore.GetItem
func (m *MemoryItemStore) GetItem(ctx context.Context, productID string) (models.Item, error) {
	if productID == "" {
		return nil, NewStorageError("GetItem", productID, ErrInvalidKey)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.check(ctx, "GetItem", productID); err != nil {
		return nil, err
	}

	item, exists := m.items[productID]
	if !exists {
		return nil, NewStorageError("GetItem", productID, ErrItemNotFound)
	}

	return item.Clone(), nil
}

// PutItem implements ItemStore.PutItem
func (m *MemoryItemStore) PutItem(ctx context.Context, item models.Item) error {
	productID, ok := item.ProductID()
	if !ok {
		return NewStorageError("PutItem", productID, ErrInvalidKey)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(ctx, "PutItem", productID); err != nil {
		return err
	}

	m.items[productID] = item.Clone()
	return nil
}

// UpdateAttribute implements ItemStore.UpdateAttribute
func (m *MemoryItemStore) UpdateAttribute(ctx context.Context, productID string, update models.AttributeUpdate) (models.Item, error) {
	if productID == "" {
		return nil, NewStorageError("UpdateAttribute", productID, ErrInvalidKey)
	}
	if err := update.Validate(); err != nil {
		return nil, NewStorageError("UpdateAttribute", productID, ErrInvalidAttribute)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(ctx, "UpdateAttribute", productID); err != nil {
		return nil, err
	}

	item, exists := m.items[productID]
	if !exists {
		return nil, NewStorageError("UpdateAttribute", productID, ErrItemNotFound)
	}

	item[update.Name] = models.CloneValue(update.Value)
	return models.Item{update.Name: models.CloneValue(update.Value)}, nil
}

// DeleteItem implements ItemStore.DeleteItem
func (m *MemoryItemStore) DeleteItem(ctx context.Context, productID string) (models.Item, error) {
	if productID == "" {
		return nil, NewStorageError("DeleteItem", productID, ErrInvalidKey)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(ctx, "DeleteItem", productID); err != nil {
		return nil, err
	}

	old, exists := m.items[productID]
	if !exists {
		return models.Item{}, nil
	}

	delete(m.items, productID)
	return old, nil
}

// Scan implements ItemStore.Scan. Pages are returned in ascending key order.
func (m *MemoryItemStore) Scan(ctx context.Context, opts *ScanOptions) (*ScanPage, error) {
	limit := m.pageSize
	var startAfter Cursor
	if opts != nil {
		if opts.Limit > 0 {
			limit = opts.Limit
		}
		startAfter = opts.StartAfter
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.check(ctx, "Scan", string(startAfter)); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(m.items))
	for key := range m.items {
		if startAfter == "" || key > string(startAfter) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	page := &ScanPage{Items: make([]models.Item, 0, min(limit, len(keys)))}
	for i, key := range keys {
		if i == limit {
			page.Next = Cursor(keys[i-1])
			break
		}
		page.Items = append(page.Items, m.items[key].Clone())
	}

	return page, nil
}

// Len returns the number of stored items
func (m *MemoryItemStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Has checks if an item exists (without error handling)
func (m *MemoryItemStore) Has(productID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.items[productID]
	return exists
}

// Reset drops every stored item
func (m *MemoryItemStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]models.Item)
}

// Close implements ItemStore.Close
func (m *MemoryItemStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
