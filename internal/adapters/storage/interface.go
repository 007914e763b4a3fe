package storage

import (
	"context"

	"product-inventory-api/internal/models"
)

// DefaultScanPageSize is the page size used by stores that need an explicit limit
const DefaultScanPageSize = 100

// Cursor is an opaque continuation token returned by Scan.
// The zero value starts a scan; an empty Next means the scan is exhausted.
type Cursor string

// ScanOptions provides options for a single scan page
type ScanOptions struct {
	Limit      int    // Maximum items in the page; 0 uses the store default
	StartAfter Cursor // Continuation token from the previous page
}

// ScanPage is one page of a full-table scan
type ScanPage struct {
	Items []models.Item
	Next  Cursor
}

// ItemStore is the storage collaborator behind the product operations.
// Every method maps onto one native call of the underlying store.
type ItemStore interface {
	// GetItem reads one item by key. Returns ErrItemNotFound when absent.
	GetItem(ctx context.Context, productID string) (models.Item, error)

	// PutItem inserts or fully replaces the item keyed by its productId
	PutItem(ctx context.Context, item models.Item) error

	// UpdateAttribute sets one attribute of an existing item and returns the
	// updated attributes. Returns ErrItemNotFound when the item does not exist.
	UpdateAttribute(ctx context.Context, productID string, update models.AttributeUpdate) (models.Item, error)

	// DeleteItem removes an item and returns its previous attributes.
	// Deleting a missing item succeeds and returns an empty item.
	DeleteItem(ctx context.Context, productID string) (models.Item, error)

	// Scan returns one page of the table in key order of the store
	Scan(ctx context.Context, opts *ScanOptions) (*ScanPage, error)

	// Close releases the resources held by the store
	Close() error
}
