package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"product-inventory-api/internal/models"
	"product-inventory-api/pkg/lambda"
)

// Result is the successful outcome of an operation
type Result struct {
	StatusCode int
	Body       interface{}
}

// OperationResponse is the envelope returned by mutating operations
type OperationResponse struct {
	Operation         string      `json:"Operation"`
	Message           string      `json:"Message"`
	Item              interface{} `json:"Item,omitempty"`
	UpdatedAttributes interface{} `json:"UpdatedAttributes,omitempty"`
	DeletedItem       interface{} `json:"DeletedItem,omitempty"`
}

// ProductsResponse is the body of GET /products
type ProductsResponse struct {
	Products []models.Item `json:"products"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status string `json:"status"`
}

// Operation names used in envelopes
const (
	OperationSave   = "SAVE"
	OperationUpdate = "UPDATE"
	OperationDelete = "DELETE"
	MessageSuccess  = "SUCCESS"
)

// DefaultHeaders returns the headers present on every response
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                "application/json",
		"Access-Control-Allow-Origin": "*",
	}
}

// JSONResponse encodes body into a response with the default headers
func JSONResponse(status int, body interface{}) *lambda.Response {
	resp := &lambda.Response{
		StatusCode: status,
		Headers:    DefaultHeaders(),
	}
	if body == nil {
		return resp
	}

	data, err := json.Marshal(body)
	if err != nil {
		logrus.WithError(err).Error("Failed to encode response body")
		data, _ = json.Marshal(ErrorResponse{Message: MessageInternalError})
		resp.StatusCode = http.StatusInternalServerError
	}
	resp.Body = data
	return resp
}

// BuildResponse is the single place a handler outcome becomes a response.
// A nil result with a nil error is reported as an internal error.
func BuildResponse(result *Result, err error) *lambda.Response {
	if err != nil {
		apiErr := classifyError(err)
		return JSONResponse(apiErr.Status, apiErr.Response())
	}
	if result == nil {
		return JSONResponse(http.StatusInternalServerError, ErrorResponse{Message: MessageInternalError})
	}
	return JSONResponse(result.StatusCode, result.Body)
}

// NotFoundResponse is returned for every unrouted method/path pair
func NotFoundResponse() *lambda.Response {
	return JSONResponse(http.StatusNotFound, MessageRouteNotFound)
}
