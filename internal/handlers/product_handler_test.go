package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-inventory-api/internal/adapters/storage"
	"product-inventory-api/internal/models"
	"product-inventory-api/pkg/lambda"
)

// failingStore wraps a memory store and fails selected calls
type failingStore struct {
	*storage.MemoryItemStore
	err        error
	failScanAt int
	scans      int
}

func (s *failingStore) GetItem(ctx context.Context, id string) (models.Item, error) {
	if s.err != nil {
		return nil, storage.NewStorageError("GetItem", id, s.err)
	}
	return s.MemoryItemStore.GetItem(ctx, id)
}

func (s *failingStore) PutItem(ctx context.Context, item models.Item) error {
	if s.err != nil {
		return storage.NewStorageError("PutItem", "", s.err)
	}
	return s.MemoryItemStore.PutItem(ctx, item)
}

func (s *failingStore) UpdateAttribute(ctx context.Context, id string, u models.AttributeUpdate) (models.Item, error) {
	if s.err != nil {
		return nil, storage.NewStorageError("UpdateAttribute", id, s.err)
	}
	return s.MemoryItemStore.UpdateAttribute(ctx, id, u)
}

func (s *failingStore) DeleteItem(ctx context.Context, id string) (models.Item, error) {
	if s.err != nil {
		return nil, storage.NewStorageError("DeleteItem", id, s.err)
	}
	return s.MemoryItemStore.DeleteItem(ctx, id)
}

func (s *failingStore) Scan(ctx context.Context, opts *storage.ScanOptions) (*storage.ScanPage, error) {
	s.scans++
	if s.err != nil && s.scans >= s.failScanAt {
		return nil, storage.NewStorageError("Scan", "", s.err)
	}
	return s.MemoryItemStore.Scan(ctx, opts)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestHandler(store storage.ItemStore, opts ProductOptions) *ProductHandler {
	return NewProductHandler(store, opts, testLogger())
}

func decodeBody(t *testing.T, resp *lambda.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body, &body))
	return body
}

func TestHealth(t *testing.T) {
	resp := BuildResponse(Health(context.Background(), &lambda.Request{}))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(resp.Body))
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
}

func TestSaveAndGetProduct(t *testing.T) {
	store := storage.NewMemoryItemStore(0)
	h := newTestHandler(store, ProductOptions{})
	ctx := context.Background()

	body := `{"productId":"p1","name":"Widget","price":19.990,"stock":1e2}`
	resp := BuildResponse(h.SaveProduct(ctx, &lambda.Request{Body: []byte(body)}))

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t,
		`{"Operation":"SAVE","Message":"SUCCESS","Item":{"productId":"p1","name":"Widget","price":19.990,"stock":1e2}}`,
		string(resp.Body))
	// Numbers keep their exact textual form
	assert.Contains(t, string(resp.Body), `"price":19.990`)

	resp = BuildResponse(h.GetProduct(ctx, &lambda.Request{QueryParams: map[string]string{"productId": "p1"}}))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"productId":"p1","name":"Widget","price":19.990,"stock":1e2}`, string(resp.Body))
	assert.Contains(t, string(resp.Body), `"stock":1e2`)
}

func TestSaveProduct_Upsert(t *testing.T) {
	store := storage.NewMemoryItemStore(0)
	h := newTestHandler(store, ProductOptions{})
	ctx := context.Background()

	BuildResponse(h.SaveProduct(ctx, &lambda.Request{Body: []byte(`{"productId":"p1","color":"red"}`)}))
	resp := BuildResponse(h.SaveProduct(ctx, &lambda.Request{Body: []byte(`{"productId":"p1","size":"L"}`)}))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	item, err := store.GetItem(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.Item{"productId": "p1", "size": "L"}, item)
}

func TestSaveProduct_Invalid(t *testing.T) {
	h := newTestHandler(storage.NewMemoryItemStore(0), ProductOptions{})

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"invalid json", `{"productId":`},
		{"array body", `[{"productId":"p1"}]`},
		{"missing productId", `{"name":"Widget"}`},
		{"numeric productId", `{"productId":42}`},
		{"blank productId", `{"productId":"  "}`},
		{"trailing data", `{"productId":"p1"} {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := BuildResponse(h.SaveProduct(context.Background(), &lambda.Request{Body: []byte(tt.body)}))

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body := decodeBody(t, resp)
			assert.Equal(t, MessageInvalidInput, body["Message"])
			assert.NotEmpty(t, body["Errors"])
		})
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	h := newTestHandler(storage.NewMemoryItemStore(0), ProductOptions{})

	resp := BuildResponse(h.GetProduct(context.Background(),
		&lambda.Request{QueryParams: map[string]string{"productId": "missing"}}))

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"Message":"ProductId: missing not found"}`, string(resp.Body))
}

func TestGetProduct_MissingID(t *testing.T) {
	h := newTestHandler(storage.NewMemoryItemStore(0), ProductOptions{})

	for _, query := range []map[string]string{nil, {}, {"productId": ""}} {
		resp := BuildResponse(h.GetProduct(context.Background(), &lambda.Request{QueryParams: query}))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
}

func TestEditProduct(t *testing.T) {
	store := storage.NewMemoryItemStore(0)
	ctx := context.Background()
	require.NoError(t, store.PutItem(ctx, models.Item{"productId": "p1", "price": json.Number("10"), "name": "Widget"}))
	h := newTestHandler(store, ProductOptions{})

	resp := BuildResponse(h.EditProduct(ctx, &lambda.Request{
		Body: []byte(`{"productId":"p1","updateKey":"price","updateValue":12.50}`),
	}))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"Operation":"UPDATE","Message":"SUCCESS","UpdatedAttributes":{"price":12.50}}`, string(resp.Body))

	item, err := store.GetItem(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, json.Number("12.50"), item["price"])
	assert.Equal(t, "Widget", item["name"], "other attributes must be untouched")
}

func TestEditProduct_NullValue(t *testing.T) {
	store := storage.NewMemoryItemStore(0)
	ctx := context.Background()
	require.NoError(t, store.PutItem(ctx, models.Item{"productId": "p1", "note": "x"}))
	h := newTestHandler(store, ProductOptions{})

	resp := BuildResponse(h.EditProduct(ctx, &lambda.Request{
		Body: []byte(`{"productId":"p1","updateKey":"note","updateValue":null}`),
	}))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	item, _ := store.GetItem(ctx, "p1")
	v, ok := item["note"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestEditProduct_NotFound(t *testing.T) {
	store := storage.NewMemoryItemStore(0)
	h := newTestHandler(store, ProductOptions{})

	resp := BuildResponse(h.EditProduct(context.Background(), &lambda.Request{
		Body: []byte(`{"productId":"ghost","updateKey":"price","updateValue":1}`),
	}))

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, decodeBody(t, resp)["Message"], "ghost")
	assert.False(t, store.Has("ghost"))
}

func TestEditProduct_Invalid(t *testing.T) {
	store := storage.NewMemoryItemStore(0)
	require.NoError(t, store.PutItem(context.Background(), models.Item{"productId": "p1"}))
	h := newTestHandler(store, ProductOptions{UpdatableAttributes: []string{"price", "name"}})

	tests := []struct {
		name string
		body string
	}{
		{"missing productId", `{"updateKey":"price","updateValue":1}`},
		{"missing updateKey", `{"productId":"p1","updateValue":1}`},
		{"missing updateValue", `{"productId":"p1","updateKey":"price"}`},
		{"key attribute", `{"productId":"p1","updateKey":"productId","updateValue":"p2"}`},
		{"expression injection", `{"productId":"p1","updateKey":"price = :value, secret","updateValue":1}`},
		{"document path", `{"productId":"p1","updateKey":"dims.width","updateValue":1}`},
		{"outside allow-list", `{"productId":"p1","updateKey":"color","updateValue":"red"}`},
		{"not an object", `"price"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := BuildResponse(h.EditProduct(context.Background(), &lambda.Request{Body: []byte(tt.body)}))
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	item, _ := store.GetItem(context.Background(), "p1")
	assert.Equal(t, models.Item{"productId": "p1"}, item, "rejected edits must not touch the store")
}

func TestDeleteProduct(t *testing.T) {
	store := storage.NewMemoryItemStore(0)
	ctx := context.Background()
	require.NoError(t, store.PutItem(ctx, models.Item{"productId": "p1", "name": "Widget"}))
	h := newTestHandler(store, ProductOptions{})

	deleteReq := &lambda.Request{Body: []byte(`{"productId":"p1"}`)}

	resp := BuildResponse(h.DeleteProduct(ctx, deleteReq))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"Operation":"DELETE","Message":"SUCCESS","DeletedItem":{"productId":"p1","name":"Widget"}}`, string(resp.Body))

	resp = BuildResponse(h.GetProduct(ctx, &lambda.Request{QueryParams: map[string]string{"productId": "p1"}}))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Second delete of the same id still succeeds
	resp = BuildResponse(h.DeleteProduct(ctx, deleteReq))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"Operation":"DELETE","Message":"SUCCESS","DeletedItem":{}}`, string(resp.Body))
}

func TestDeleteProduct_Invalid(t *testing.T) {
	h := newTestHandler(storage.NewMemoryItemStore(0), ProductOptions{})

	for _, body := range []string{"", `{}`, `{"productId":""}`, `not json`} {
		resp := BuildResponse(h.DeleteProduct(context.Background(), &lambda.Request{Body: []byte(body)}))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body %q", body)
	}
}

func TestGetProducts(t *testing.T) {
	for _, pageSize := range []int{1, 2, 3, 7, 100} {
		t.Run(fmt.Sprintf("page size %d", pageSize), func(t *testing.T) {
			store := storage.NewMemoryItemStore(0)
			ctx := context.Background()
			for i := 0; i < 7; i++ {
				require.NoError(t, store.PutItem(ctx, models.Item{"productId": fmt.Sprintf("p%d", i)}))
			}
			h := newTestHandler(store, ProductOptions{ScanPageSize: pageSize})

			result, err := h.GetProducts(ctx, &lambda.Request{})
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, result.StatusCode)

			products := result.Body.(ProductsResponse).Products
			assert.Len(t, products, 7)

			seen := make(map[string]bool)
			for _, p := range products {
				id, ok := p.ProductID()
				require.True(t, ok)
				assert.False(t, seen[id], "duplicate %s", id)
				seen[id] = true
			}
		})
	}
}

func TestGetProducts_Empty(t *testing.T) {
	h := newTestHandler(storage.NewMemoryItemStore(0), ProductOptions{})

	resp := BuildResponse(h.GetProducts(context.Background(), &lambda.Request{}))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"products":[]}`, string(resp.Body))
}

func TestGetProducts_FailureMidScan(t *testing.T) {
	mem := storage.NewMemoryItemStore(0)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, mem.PutItem(ctx, models.Item{"productId": fmt.Sprintf("p%d", i)}))
	}
	store := &failingStore{MemoryItemStore: mem, err: errors.New("throttled"), failScanAt: 2}
	h := newTestHandler(store, ProductOptions{ScanPageSize: 2})

	resp := BuildResponse(h.GetProducts(ctx, &lambda.Request{}))

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"Message":"Internal server error"}`, string(resp.Body))
}

// stuckStore keeps returning the same continuation cursor
type stuckStore struct {
	*storage.MemoryItemStore
	scans int
}

func (s *stuckStore) Scan(ctx context.Context, opts *storage.ScanOptions) (*storage.ScanPage, error) {
	s.scans++
	return &storage.ScanPage{
		Items: []models.Item{{"productId": "p1"}},
		Next:  "p1",
	}, nil
}

func TestGetProducts_CursorDoesNotAdvance(t *testing.T) {
	store := &stuckStore{MemoryItemStore: storage.NewMemoryItemStore(0)}
	h := newTestHandler(store, ProductOptions{})

	resp := BuildResponse(h.GetProducts(context.Background(), &lambda.Request{}))

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"Message":"Internal server error"}`, string(resp.Body))
	assert.Equal(t, 2, store.scans)
}

func TestBlankProductIDIsRejectedEverywhere(t *testing.T) {
	store := storage.NewMemoryItemStore(0)
	h := newTestHandler(store, ProductOptions{})
	ctx := context.Background()
	blank := `"   "`

	responses := map[string]*lambda.Response{
		"get": BuildResponse(h.GetProduct(ctx,
			&lambda.Request{QueryParams: map[string]string{"productId": "   "}})),
		"save": BuildResponse(h.SaveProduct(ctx,
			&lambda.Request{Body: []byte(`{"productId":` + blank + `}`)})),
		"edit": BuildResponse(h.EditProduct(ctx,
			&lambda.Request{Body: []byte(`{"productId":` + blank + `,"updateKey":"stock","updateValue":1}`)})),
		"delete": BuildResponse(h.DeleteProduct(ctx,
			&lambda.Request{Body: []byte(`{"productId":` + blank + `}`)})),
	}

	for name, resp := range responses {
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, name)
		assert.Equal(t, "Invalid request", decodeBody(t, resp)["Message"], name)
	}
	assert.Equal(t, 0, store.Len())
}

func TestSaveProduct_EmptyAttributeName(t *testing.T) {
	store := storage.NewMemoryItemStore(0)
	h := newTestHandler(store, ProductOptions{})

	resp := BuildResponse(h.SaveProduct(context.Background(),
		&lambda.Request{Body: []byte(`{"productId":"p2","":"x"}`)}))

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, store.Has("p2"))
}

func TestGetProducts_ContextCanceled(t *testing.T) {
	store := storage.NewMemoryItemStore(0)
	require.NoError(t, store.PutItem(context.Background(), models.Item{"productId": "p1"}))
	h := newTestHandler(store, ProductOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := BuildResponse(h.GetProducts(ctx, &lambda.Request{}))

	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	assert.JSONEq(t, `{"Message":"Request timed out"}`, string(resp.Body))
}

func TestStoreFailures(t *testing.T) {
	store := &failingStore{MemoryItemStore: storage.NewMemoryItemStore(0), err: errors.New("connection reset")}
	h := newTestHandler(store, ProductOptions{})
	ctx := context.Background()

	calls := map[string]func() (*Result, error){
		"get": func() (*Result, error) {
			return h.GetProduct(ctx, &lambda.Request{QueryParams: map[string]string{"productId": "p1"}})
		},
		"save": func() (*Result, error) {
			return h.SaveProduct(ctx, &lambda.Request{Body: []byte(`{"productId":"p1"}`)})
		},
		"edit": func() (*Result, error) {
			return h.EditProduct(ctx, &lambda.Request{Body: []byte(`{"productId":"p1","updateKey":"a","updateValue":1}`)})
		},
		"delete": func() (*Result, error) {
			return h.DeleteProduct(ctx, &lambda.Request{Body: []byte(`{"productId":"p1"}`)})
		},
		"list": func() (*Result, error) {
			return h.GetProducts(ctx, &lambda.Request{})
		},
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			resp := BuildResponse(call())

			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			assert.JSONEq(t, `{"Message":"Internal server error"}`, string(resp.Body))
			assert.NotContains(t, string(resp.Body), "connection reset")
		})
	}
}

func TestStoreTimeout(t *testing.T) {
	store := &failingStore{MemoryItemStore: storage.NewMemoryItemStore(0), err: context.DeadlineExceeded}
	h := newTestHandler(store, ProductOptions{})

	resp := BuildResponse(h.SaveProduct(context.Background(), &lambda.Request{Body: []byte(`{"productId":"p1"}`)}))

	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
}

func TestBuildResponse_NilResult(t *testing.T) {
	resp := BuildResponse(nil, nil)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotEmpty(t, resp.Body)
}

func TestNotFoundResponse(t *testing.T) {
	resp := NotFoundResponse()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, `"Resource/Method Not Found"`, string(resp.Body))
	assert.Equal(t, DefaultHeaders(), resp.Headers)
}
