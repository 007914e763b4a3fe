package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// KeyAttribute is the partition key of the product table
const KeyAttribute = "productId"

// MaxKeyLength caps productId on every operation
const MaxKeyLength = 1024

// Item is a schema-less product record. Only KeyAttribute is enforced.
// Numbers are carried as json.Number so they round-trip without loss.
type Item map[string]interface{}

// ProductID returns the item's key and whether it is a non-empty string
func (i Item) ProductID() (string, bool) {
	id, ok := i[KeyAttribute].(string)
	if !ok || strings.TrimSpace(id) == "" {
		return "", false
	}
	return id, true
}

// Clone returns a deep copy of the item
func (i Item) Clone() Item {
	if i == nil {
		return nil
	}
	out := make(Item, len(i))
	for k, v := range i {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies a decoded JSON value
func CloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case Item:
		return val.Clone()
	case map[string]interface{}:
		return map[string]interface{}(Item(val).Clone())
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, elem := range val {
			out[i] = CloneValue(elem)
		}
		return out
	case []byte:
		return append([]byte(nil), val...)
	default:
		return val
	}
}

// GetProductQuery holds the query parameters of GET /product
type GetProductQuery struct {
	ProductID string `json:"productId" validate:"required,notblank,max=1024"`
}

// EditProductRequest is the body of PATCH /product
type EditProductRequest struct {
	ProductID   string          `json:"productId" validate:"required,notblank,max=1024"`
	UpdateKey   string          `json:"updateKey" validate:"required,attrname"`
	UpdateValue json.RawMessage `json:"updateValue"`
}

// DeleteProductRequest is the body of DELETE /product
type DeleteProductRequest struct {
	ProductID string `json:"productId" validate:"required,notblank,max=1024"`
}

// DecodeJSON decodes exactly one JSON value from data, keeping numbers as json.Number
func DecodeJSON(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

// ParseItem decodes a request body into an Item and checks its key
func ParseItem(body []byte) (Item, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ValidationErrors{{Field: "body", Message: "request body is required"}}
	}

	var item Item
	if err := DecodeJSON(body, &item); err != nil || item == nil {
		return nil, ValidationErrors{{Field: "body", Message: "request body must be a JSON object"}}
	}

	id, ok := item.ProductID()
	if !ok {
		return nil, ValidationErrors{{
			Field:   KeyAttribute,
			Message: KeyAttribute + " is required and must be a non-empty string",
			Value:   item[KeyAttribute],
		}}
	}
	if utf8.RuneCountInString(id) > MaxKeyLength {
		return nil, ValidationErrors{{
			Field:   KeyAttribute,
			Message: fmt.Sprintf("%s cannot exceed %d characters", KeyAttribute, MaxKeyLength),
		}}
	}

	// Every store must accept the same items; DynamoDB rejects empty attribute names
	if _, ok := item[""]; ok {
		return nil, ValidationErrors{{Field: "body", Message: "attribute names must not be empty"}}
	}

	return item, nil
}

// ParseEditProductRequest decodes and validates a PATCH /product body
func ParseEditProductRequest(body []byte) (*EditProductRequest, error) {
	var req EditProductRequest
	if err := decodeRequestBody(body, &req); err != nil {
		return nil, err
	}
	if err := ValidateStruct(&req); err != nil {
		return nil, err
	}
	if len(req.UpdateValue) == 0 {
		return nil, ValidationErrors{{Field: "updateValue", Message: "updateValue is required"}}
	}
	return &req, nil
}

// ParseDeleteProductRequest decodes and validates a DELETE /product body
func ParseDeleteProductRequest(body []byte) (*DeleteProductRequest, error) {
	var req DeleteProductRequest
	if err := decodeRequestBody(body, &req); err != nil {
		return nil, err
	}
	if err := ValidateStruct(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// AttributeUpdate converts the request into a structured single-attribute update
func (r *EditProductRequest) AttributeUpdate(allowed []string) (AttributeUpdate, error) {
	var value interface{}
	if err := DecodeJSON(r.UpdateValue, &value); err != nil {
		return AttributeUpdate{}, ValidationErrors{{Field: "updateValue", Message: "updateValue must be valid JSON"}}
	}
	return NewAttributeUpdate(r.UpdateKey, value, allowed)
}

func decodeRequestBody(body []byte, v interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return ValidationErrors{{Field: "body", Message: "request body is required"}}
	}
	if err := DecodeJSON(body, v); err != nil {
		return ValidationErrors{{Field: "body", Message: "invalid request body: " + err.Error()}}
	}
	return nil
}
