package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"product-inventory-api/internal/models"
)

// SQLiteStore implements ItemStore on a local SQLite file. Items are stored as
// JSON documents next to their key, and scans use keyset pagination.
type SQLiteStore struct {
	db       *sql.DB
	pageSize int
}

// NewSQLiteStore opens (or creates) the database at path and migrates it
func NewSQLiteStore(path string, pageSize int, logger *logrus.Logger) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if pageSize <= 0 {
		pageSize = DefaultScanPageSize
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.WithField("db_path", path).Info("SQLite item store ready")
	return &SQLiteStore{db: db, pageSize: pageSize}, nil
}

func encodeItem(item models.Item) (string, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeItem(data string) (models.Item, error) {
	var item models.Item
	if err := models.DecodeJSON([]byte(data), &item); err != nil {
		return nil, fmt.Errorf("corrupt item document: %w", err)
	}
	return item, nil
}

// GetItem implements ItemStore.GetItem
func (s *SQLiteStore) GetItem(ctx context.Context, productID string) (models.Item, error) {
	if productID == "" {
		return nil, NewStorageError("GetItem", productID, ErrInvalidKey)
	}

	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT item FROM products WHERE product_id = ?`, productID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewStorageError("GetItem", productID, ErrItemNotFound)
	}
	if err != nil {
		return nil, NewStorageError("GetItem", productID, err)
	}

	item, err := decodeItem(doc)
	if err != nil {
		return nil, NewStorageError("GetItem", productID, err)
	}
	return item, nil
}

// PutItem implements ItemStore.PutItem
func (s *SQLiteStore) PutItem(ctx context.Context, item models.Item) error {
	productID, ok := item.ProductID()
	if !ok {
		return NewStorageError("PutItem", productID, ErrInvalidKey)
	}

	doc, err := encodeItem(item)
	if err != nil {
		return NewStorageError("PutItem", productID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO products (product_id, item, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(product_id) DO UPDATE SET item = excluded.item, updated_at = excluded.updated_at`,
		productID, doc)
	if err != nil {
		return NewStorageError("PutItem", productID, err)
	}
	return nil
}

// UpdateAttribute implements ItemStore.UpdateAttribute
func (s *SQLiteStore) UpdateAttribute(ctx context.Context, productID string, update models.AttributeUpdate) (models.Item, error) {
	if productID == "" {
		return nil, NewStorageError("UpdateAttribute", productID, ErrInvalidKey)
	}
	if err := update.Validate(); err != nil {
		return nil, NewStorageError("UpdateAttribute", productID, ErrInvalidAttribute)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, NewStorageError("UpdateAttribute", productID, err)
	}
	defer tx.Rollback()

	var doc string
	err = tx.QueryRowContext(ctx, `SELECT item FROM products WHERE product_id = ?`, productID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewStorageError("UpdateAttribute", productID, ErrItemNotFound)
	}
	if err != nil {
		return nil, NewStorageError("UpdateAttribute", productID, err)
	}

	item, err := decodeItem(doc)
	if err != nil {
		return nil, NewStorageError("UpdateAttribute", productID, err)
	}
	item[update.Name] = update.Value

	if doc, err = encodeItem(item); err != nil {
		return nil, NewStorageError("UpdateAttribute", productID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE products SET item = ?, updated_at = CURRENT_TIMESTAMP WHERE product_id = ?`,
		doc, productID); err != nil {
		return nil, NewStorageError("UpdateAttribute", productID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, NewStorageError("UpdateAttribute", productID, err)
	}

	return models.Item{update.Name: models.CloneValue(update.Value)}, nil
}

// DeleteItem implements ItemStore.DeleteItem
func (s *SQLiteStore) DeleteItem(ctx context.Context, productID string) (models.Item, error) {
	if productID == "" {
		return nil, NewStorageError("DeleteItem", productID, ErrInvalidKey)
	}

	var doc string
	err := s.db.QueryRowContext(ctx,
		`DELETE FROM products WHERE product_id = ? RETURNING item`, productID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Item{}, nil
	}
	if err != nil {
		return nil, NewStorageError("DeleteItem", productID, err)
	}

	old, err := decodeItem(doc)
	if err != nil {
		return nil, NewStorageError("DeleteItem", productID, err)
	}
	return old, nil
}

// Scan implements ItemStore.Scan using the product key as the keyset cursor
func (s *SQLiteStore) Scan(ctx context.Context, opts *ScanOptions) (*ScanPage, error) {
	limit := s.pageSize
	var startAfter Cursor
	if opts != nil {
		if opts.Limit > 0 {
			limit = opts.Limit
		}
		startAfter = opts.StartAfter
	}

	// Fetch one extra row to learn whether another page follows
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, item FROM products
		WHERE product_id > ?
		ORDER BY product_id
		LIMIT ?`, string(startAfter), limit+1)
	if err != nil {
		return nil, NewStorageError("Scan", "", err)
	}
	defer rows.Close()

	page := &ScanPage{Items: make([]models.Item, 0, limit)}
	var lastKey string
	for rows.Next() {
		var key, doc string
		if err := rows.Scan(&key, &doc); err != nil {
			return nil, NewStorageError("Scan", "", err)
		}
		if len(page.Items) == limit {
			page.Next = Cursor(lastKey)
			break
		}
		item, err := decodeItem(doc)
		if err != nil {
			return nil, NewStorageError("Scan", key, err)
		}
		page.Items = append(page.Items, item)
		lastKey = key
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("Scan", "", err)
	}

	return page, nil
}

// Close implements ItemStore.Close
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
