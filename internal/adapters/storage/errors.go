package storage

import (
	"context"
	"errors"
	"fmt"
)

// Common storage error types
var (
	ErrItemNotFound     = errors.New("item not found")
	ErrInvalidKey       = errors.New("invalid item key")
	ErrInvalidAttribute = errors.New("invalid attribute")
	ErrInvalidCursor    = errors.New("invalid continuation cursor")
	ErrStoreClosed      = errors.New("item store closed")
)

// StorageError represents a storage operation error with additional context
type StorageError struct {
	Op  string // Operation that failed (e.g., "GetItem", "Scan")
	Key string // Product key involved in the operation
	Err error  // Underlying error
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage %s operation failed for key '%s': %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("storage %s operation failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a new StorageError
func NewStorageError(op, key string, err error) *StorageError {
	return &StorageError{
		Op:  op,
		Key: key,
		Err: err,
	}
}

// IsNotFound returns true if the error indicates an item was not found
func IsNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound)
}

// IsTimeout returns true if the operation was cut short by its context
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
