package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseItem(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		field   string
	}{
		{name: "valid item", body: `{"productId": "p1", "name": "widget", "price": 12.50}`},
		{name: "empty body", body: "", wantErr: true, field: "body"},
		{name: "null body", body: "null", wantErr: true, field: "body"},
		{name: "array body", body: `[{"productId": "p1"}]`, wantErr: true, field: "body"},
		{name: "malformed json", body: `{"productId": `, wantErr: true, field: "body"},
		{name: "trailing data", body: `{"productId": "p1"} {}`, wantErr: true, field: "body"},
		{name: "missing productId", body: `{"name": "widget"}`, wantErr: true, field: KeyAttribute},
		{name: "numeric productId", body: `{"productId": 7}`, wantErr: true, field: KeyAttribute},
		{name: "blank productId", body: `{"productId": "  "}`, wantErr: true, field: KeyAttribute},
		{name: "empty attribute name", body: `{"productId": "p1", "": "x"}`, wantErr: true, field: "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := ParseItem([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseItem() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				if id, _ := item.ProductID(); id != "p1" {
					t.Errorf("Expected productId p1, got %q", id)
				}
				return
			}

			var ves ValidationErrors
			if !errors.As(err, &ves) || len(ves) == 0 {
				t.Fatalf("Expected ValidationErrors, got %T", err)
			}
			if ves[0].Field != tt.field {
				t.Errorf("Expected error on field %q, got %q", tt.field, ves[0].Field)
			}
		})
	}
}

func TestParseItem_KeepsNumbersExact(t *testing.T) {
	item, err := ParseItem([]byte(`{"productId": "p1", "price": 12345678901234567890.123}`))
	if err != nil {
		t.Fatalf("ParseItem() error = %v", err)
	}

	price, ok := item["price"].(json.Number)
	if !ok {
		t.Fatalf("Expected json.Number, got %T", item["price"])
	}
	if price.String() != "12345678901234567890.123" {
		t.Errorf("Number changed during decoding: %s", price)
	}
}

func TestParseEditProductRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"productId": "p1", "updateKey": "name", "updateValue": "gadget"}`},
		{name: "null value is allowed", body: `{"productId": "p1", "updateKey": "name", "updateValue": null}`},
		{name: "missing productId", body: `{"updateKey": "name", "updateValue": "x"}`, wantErr: true},
		{name: "missing updateKey", body: `{"productId": "p1", "updateValue": "x"}`, wantErr: true},
		{name: "missing updateValue", body: `{"productId": "p1", "updateKey": "name"}`, wantErr: true},
		{name: "key attribute", body: `{"productId": "p1", "updateKey": "productId", "updateValue": "p2"}`, wantErr: true},
		{name: "expression injection", body: `{"productId": "p1", "updateKey": "name = :value, price", "updateValue": 0}`, wantErr: true},
		{name: "document path", body: `{"productId": "p1", "updateKey": "dims.width", "updateValue": 3}`, wantErr: true},
		{name: "wrong productId type", body: `{"productId": 1, "updateKey": "name", "updateValue": "x"}`, wantErr: true},
		{name: "empty body", body: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEditProductRequest([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEditProductRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !IsValidationError(err) {
				t.Errorf("Expected a validation error, got %T: %v", err, err)
			}
		})
	}
}

func TestEditProductRequest_AttributeUpdate(t *testing.T) {
	req, err := ParseEditProductRequest([]byte(`{"productId": "p1", "updateKey": "stock", "updateValue": {"count": 3}}`))
	if err != nil {
		t.Fatalf("ParseEditProductRequest() error = %v", err)
	}

	update, err := req.AttributeUpdate(nil)
	if err != nil {
		t.Fatalf("AttributeUpdate() error = %v", err)
	}
	if update.Name != "stock" {
		t.Errorf("Expected name stock, got %q", update.Name)
	}
	value, ok := update.Value.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected object value, got %T", update.Value)
	}
	if value["count"] != json.Number("3") {
		t.Errorf("Expected count 3, got %v", value["count"])
	}

	if _, err := req.AttributeUpdate([]string{"name", "price"}); err == nil {
		t.Error("Expected allow-list to reject stock")
	}
	if _, err := req.AttributeUpdate([]string{"stock"}); err != nil {
		t.Errorf("Expected allow-list to accept stock, got %v", err)
	}
}

func TestParseDeleteProductRequest(t *testing.T) {
	req, err := ParseDeleteProductRequest([]byte(`{"productId": "p1"}`))
	if err != nil {
		t.Fatalf("ParseDeleteProductRequest() error = %v", err)
	}
	if req.ProductID != "p1" {
		t.Errorf("Expected productId p1, got %q", req.ProductID)
	}

	if _, err := ParseDeleteProductRequest([]byte(`{}`)); !IsValidationError(err) {
		t.Errorf("Expected validation error for missing productId, got %v", err)
	}
}

func TestIsValidAttributeName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"name", true},
		{"_internal", true},
		{"unit-price", true},
		{"price2", true},
		{"", false},
		{"2price", false},
		{"productId", false},
		{"a.b", false},
		{"a[0]", false},
		{"#name", false},
		{":value", false},
		{"name price", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidAttributeName(tt.name); got != tt.valid {
				t.Errorf("IsValidAttributeName(%q) = %v, want %v", tt.name, got, tt.valid)
			}
		})
	}
}

func TestItemClone(t *testing.T) {
	original := Item{
		"productId": "p1",
		"tags":      []interface{}{"a", "b"},
		"dims":      map[string]interface{}{"w": json.Number("3")},
	}

	clone := original.Clone()
	clone["tags"].([]interface{})[0] = "changed"
	clone["dims"].(map[string]interface{})["w"] = json.Number("9")

	if original["tags"].([]interface{})[0] != "a" {
		t.Error("Clone shares list storage with the original")
	}
	if original["dims"].(map[string]interface{})["w"] != json.Number("3") {
		t.Error("Clone shares map storage with the original")
	}
}

// Every operation applies the same rule to productId
func TestProductIDRuleIsShared(t *testing.T) {
	long := strings.Repeat("k", MaxKeyLength+1)
	edge := strings.Repeat("k", MaxKeyLength)

	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "plain", id: "p1"},
		{name: "max length", id: edge},
		{name: "blank", id: "   ", wantErr: true},
		{name: "tab only", id: "\t", wantErr: true},
		{name: "too long", id: long, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idJSON, _ := json.Marshal(tt.id)

			_, err := ParseItem([]byte(`{"productId": ` + string(idJSON) + `}`))
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseItem error = %v, wantErr %v", err, tt.wantErr)
			}

			err = ValidateStruct(&GetProductQuery{ProductID: tt.id})
			if (err != nil) != tt.wantErr {
				t.Errorf("GetProductQuery error = %v, wantErr %v", err, tt.wantErr)
			}

			_, err = ParseEditProductRequest([]byte(`{"productId": ` + string(idJSON) + `, "updateKey": "stock", "updateValue": 1}`))
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseEditProductRequest error = %v, wantErr %v", err, tt.wantErr)
			}

			_, err = ParseDeleteProductRequest([]byte(`{"productId": ` + string(idJSON) + `}`))
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDeleteProductRequest error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !IsValidationError(err) {
				t.Errorf("Expected validation error, got %T", err)
			}
		})
	}
}
