package handlers

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"product-inventory-api/internal/adapters/storage"
	"product-inventory-api/internal/models"
	"product-inventory-api/pkg/lambda"
)

// ProductOptions tunes the product operations
type ProductOptions struct {
	// UpdatableAttributes is the optional allow-list for EditProduct
	UpdatableAttributes []string
	// ScanPageSize caps each page of GetProducts; 0 leaves it to the store
	ScanPageSize int
}

// ProductHandler handles product-related requests. Each operation makes a
// single call to the item store, except GetProducts which makes one per page.
type ProductHandler struct {
	store   storage.ItemStore
	options ProductOptions
	logger  *logrus.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(store storage.ItemStore, options ProductOptions, logger *logrus.Logger) *ProductHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ProductHandler{
		store:   store,
		options: options,
		logger:  logger,
	}
}

// @Summary Health check
// @Description Reports that the service is up
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func Health(ctx context.Context, req *lambda.Request) (*Result, error) {
	return &Result{StatusCode: http.StatusOK, Body: HealthResponse{Status: "ok"}}, nil
}

// @Summary Get a product
// @Description Get a single product by its productId
// @Tags products
// @Produce json
// @Param productId query string true "Product ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /product [get]
func (h *ProductHandler) GetProduct(ctx context.Context, req *lambda.Request) (*Result, error) {
	query := models.GetProductQuery{ProductID: req.QueryParam(models.KeyAttribute)}
	if err := models.ValidateStruct(&query); err != nil {
		return nil, NewValidationError(err)
	}

	item, err := h.store.GetItem(ctx, query.ProductID)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, NewNotFoundError(query.ProductID, err)
		}
		return nil, h.storeFailure(req, "GetProduct", query.ProductID, err)
	}

	return &Result{StatusCode: http.StatusOK, Body: item}, nil
}

// @Summary List products
// @Description Get every product in the inventory, following scan pages to the end
// @Tags products
// @Produce json
// @Success 200 {object} ProductsResponse
// @Failure 500 {object} ErrorResponse
// @Failure 504 {object} ErrorResponse
// @Router /products [get]
func (h *ProductHandler) GetProducts(ctx context.Context, req *lambda.Request) (*Result, error) {
	products := make([]models.Item, 0)
	opts := &storage.ScanOptions{Limit: h.options.ScanPageSize}
	pages := 0

	for {
		// Stop between pages once the invoker has given up
		if err := ctx.Err(); err != nil {
			return nil, h.storeFailure(req, "GetProducts", "", err)
		}

		page, err := h.store.Scan(ctx, opts)
		if err != nil {
			return nil, h.storeFailure(req, "GetProducts", "", err)
		}
		pages++
		products = append(products, page.Items...)

		if page.Next == "" {
			break
		}
		if page.Next == opts.StartAfter {
			return nil, h.storeFailure(req, "GetProducts", "",
				storage.NewStorageError("Scan", string(page.Next), storage.ErrInvalidCursor))
		}
		opts.StartAfter = page.Next
	}

	h.logger.WithFields(logrus.Fields{
		"request_id": req.RequestID,
		"pages":      pages,
		"count":      len(products),
	}).Debug("Products scanned")

	return &Result{StatusCode: http.StatusOK, Body: ProductsResponse{Products: products}}, nil
}

// @Summary Save a product
// @Description Create or fully replace a product. The body is stored as given.
// @Tags products
// @Accept json
// @Produce json
// @Param product body map[string]interface{} true "Product with a productId"
// @Success 201 {object} OperationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /product [post]
func (h *ProductHandler) SaveProduct(ctx context.Context, req *lambda.Request) (*Result, error) {
	item, err := models.ParseItem(req.Body)
	if err != nil {
		return nil, NewValidationError(err)
	}
	productID, _ := item.ProductID()

	if err := h.store.PutItem(ctx, item); err != nil {
		return nil, h.storeFailure(req, "SaveProduct", productID, err)
	}

	return &Result{
		StatusCode: http.StatusCreated,
		Body: OperationResponse{
			Operation: OperationSave,
			Message:   MessageSuccess,
			Item:      item,
		},
	}, nil
}

// @Summary Edit a product attribute
// @Description Set a single attribute of an existing product
// @Tags products
// @Accept json
// @Produce json
// @Param request body models.EditProductRequest true "Attribute update"
// @Success 200 {object} OperationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /product [patch]
func (h *ProductHandler) EditProduct(ctx context.Context, req *lambda.Request) (*Result, error) {
	editReq, err := models.ParseEditProductRequest(req.Body)
	if err != nil {
		return nil, NewValidationError(err)
	}

	update, err := editReq.AttributeUpdate(h.options.UpdatableAttributes)
	if err != nil {
		return nil, NewValidationError(err)
	}

	updated, err := h.store.UpdateAttribute(ctx, editReq.ProductID, update)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, NewNotFoundError(editReq.ProductID, err)
		}
		return nil, h.storeFailure(req, "EditProduct", editReq.ProductID, err)
	}

	return &Result{
		StatusCode: http.StatusOK,
		Body: OperationResponse{
			Operation:         OperationUpdate,
			Message:           MessageSuccess,
			UpdatedAttributes: updated,
		},
	}, nil
}

// @Summary Delete a product
// @Description Delete a product and return its last stored attributes. Deleting a missing product succeeds with an empty DeletedItem.
// @Tags products
// @Accept json
// @Produce json
// @Param request body models.DeleteProductRequest true "Product to delete"
// @Success 200 {object} OperationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /product [delete]
func (h *ProductHandler) DeleteProduct(ctx context.Context, req *lambda.Request) (*Result, error) {
	deleteReq, err := models.ParseDeleteProductRequest(req.Body)
	if err != nil {
		return nil, NewValidationError(err)
	}

	old, err := h.store.DeleteItem(ctx, deleteReq.ProductID)
	if err != nil {
		return nil, h.storeFailure(req, "DeleteProduct", deleteReq.ProductID, err)
	}
	if old == nil {
		old = models.Item{}
	}

	return &Result{
		StatusCode: http.StatusOK,
		Body: OperationResponse{
			Operation:   OperationDelete,
			Message:     MessageSuccess,
			DeletedItem: old,
		},
	}, nil
}

// storeFailure logs a failed store call and classifies it
func (h *ProductHandler) storeFailure(req *lambda.Request, method, productID string, err error) error {
	apiErr := classifyError(err)

	entry := h.logger.WithFields(logrus.Fields{
		"method":     method,
		"request_id": req.RequestID,
		"status":     apiErr.Status,
	})
	if productID != "" {
		entry = entry.WithField("product_id", productID)
	}

	if apiErr.Status == http.StatusGatewayTimeout {
		entry.WithError(err).Warn("Store call cut short by request context")
	} else {
		entry.WithError(err).Error("Store call failed")
	}
	return apiErr
}
