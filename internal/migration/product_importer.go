package migration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"product-inventory-api/internal/adapters/storage"
	"product-inventory-api/internal/models"
)

// ProductImporter seeds an item store from a JSON export of products
type ProductImporter struct {
	store  storage.ItemStore
	logger *logrus.Logger
}

// ImportOptions controls a single import run
type ImportOptions struct {
	DryRun      bool // Validate the file without writing to the store
	GenerateIDs bool // Assign a random productId to records without one
}

// ImportResult contains the results of an import
type ImportResult struct {
	Processed int
	Imported  int
	Skipped   int
	Errors    []string
	Warnings  []string
}

// NewProductImporter creates a new importer. store may be nil for dry runs.
func NewProductImporter(store storage.ItemStore, logger *logrus.Logger) *ProductImporter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ProductImporter{store: store, logger: logger}
}

// ReadProductsFile loads the raw product records of a JSON file.
// The file holds either an array of products or an object with a "products" array,
// which is the body returned by GET /products.
func ReadProductsFile(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read products file: %w", err)
	}
	return decodeProducts(data)
}

func decodeProducts(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("products file is empty")
	}

	var records []json.RawMessage
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("failed to unmarshal products: %w", err)
		}
		return records, nil
	}

	var export struct {
		Products []json.RawMessage `json:"products"`
	}
	if err := json.Unmarshal(trimmed, &export); err != nil {
		return nil, fmt.Errorf("failed to unmarshal products: %w", err)
	}
	if export.Products == nil {
		return nil, errors.New(`products file must be an array or an object with a "products" array`)
	}
	return export.Products, nil
}

// Parse turns raw records into items, skipping the invalid ones
func (p *ProductImporter) Parse(records []json.RawMessage, opts ImportOptions, result *ImportResult) []models.Item {
	items := make([]models.Item, 0, len(records))
	seen := make(map[string]int, len(records))

	for i, raw := range records {
		result.Processed++

		var item models.Item
		if err := models.DecodeJSON(raw, &item); err != nil || item == nil {
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("record %d: not a JSON object", i))
			continue
		}

		if _, present := item[models.KeyAttribute]; !present && opts.GenerateIDs {
			item[models.KeyAttribute] = uuid.NewString()
		}

		id, ok := item.ProductID()
		if !ok {
			result.Skipped++
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("record %d: %s is required and must be a non-empty string", i, models.KeyAttribute))
			p.logger.WithField("record", i).Warn("Invalid product data, skipping")
			continue
		}

		// Later records replace earlier ones, as a put would
		if pos, dup := seen[id]; dup {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("record %d: duplicate %s %q replaces an earlier record", i, models.KeyAttribute, id))
			items[pos] = item
			result.Skipped++
			continue
		}

		seen[id] = len(items)
		items = append(items, item)
	}

	return items
}

// Import writes every valid record of the file at path to the store
func (p *ProductImporter) Import(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error) {
	records, err := ReadProductsFile(path)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		Errors:   make([]string, 0),
		Warnings: make([]string, 0),
	}
	items := p.Parse(records, opts, result)

	if opts.DryRun {
		p.logger.WithFields(logrus.Fields{
			"processed": result.Processed,
			"valid":     len(items),
			"skipped":   result.Skipped,
		}).Info("Dry run completed, no changes made")
		return result, nil
	}
	if p.store == nil {
		return result, errors.New("no item store configured")
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		id, _ := item.ProductID()
		if err := p.store.PutItem(ctx, item); err != nil {
			p.logger.WithError(err).WithField("product_id", id).Error("Failed to import product")
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", id, err))
			continue
		}
		result.Imported++
	}

	p.logger.WithFields(logrus.Fields{
		"processed": result.Processed,
		"imported":  result.Imported,
		"skipped":   result.Skipped,
		"errors":    len(result.Errors),
	}).Info("Product import completed")

	return result, nil
}

// Validate checks that every valid record of the file is present in the store
func (p *ProductImporter) Validate(ctx context.Context, path string) error {
	if p.store == nil {
		return errors.New("no item store configured")
	}

	records, err := ReadProductsFile(path)
	if err != nil {
		return err
	}

	result := &ImportResult{}
	items := p.Parse(records, ImportOptions{}, result)

	missing := 0
	for _, item := range items {
		id, _ := item.ProductID()
		if _, err := p.store.GetItem(ctx, id); err != nil {
			if storage.IsNotFound(err) {
				p.logger.WithField("product_id", id).Warn("Product missing from store")
				missing++
				continue
			}
			return fmt.Errorf("failed to read product %s: %w", id, err)
		}
	}

	p.logger.WithFields(logrus.Fields{
		"checked": len(items),
		"missing": missing,
	}).Info("Import validation completed")

	if missing > 0 {
		return fmt.Errorf("%d of %d products missing from store", missing, len(items))
	}
	return nil
}
