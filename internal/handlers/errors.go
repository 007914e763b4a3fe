package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"product-inventory-api/internal/adapters/storage"
	"product-inventory-api/internal/models"
)

// Messages returned for failures that must not leak internals
const (
	MessageInternalError = "Internal server error"
	MessageTimeout       = "Request timed out"
	MessageInvalidInput  = "Invalid request"
	MessageRouteNotFound = "Resource/Method Not Found"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Message string                    `json:"Message"`
	Errors  []*models.ValidationError `json:"Errors,omitempty"`
}

// APIError is a failure that maps onto one HTTP status
type APIError struct {
	Status  int
	Message string
	Details []*models.ValidationError
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Response returns the body sent to the caller
func (e *APIError) Response() ErrorResponse {
	return ErrorResponse{Message: e.Message, Errors: e.Details}
}

// NewValidationError wraps request validation failures as a 400
func NewValidationError(err error) *APIError {
	apiErr := &APIError{
		Status:  http.StatusBadRequest,
		Message: MessageInvalidInput,
		Err:     err,
	}

	var ves models.ValidationErrors
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ves):
		apiErr.Details = ves
	case errors.As(err, &ve):
		apiErr.Details = []*models.ValidationError{ve}
	}
	return apiErr
}

// NewNotFoundError reports a missing product
func NewNotFoundError(productID string, err error) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("ProductId: %s not found", productID),
		Err:     err,
	}
}

// classifyError turns any error returned by a handler into an APIError
func classifyError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case models.IsValidationError(err):
		return NewValidationError(err)
	case errors.Is(err, storage.ErrInvalidKey), errors.Is(err, storage.ErrInvalidAttribute):
		return &APIError{Status: http.StatusBadRequest, Message: MessageInvalidInput, Err: err}
	case storage.IsTimeout(err):
		return &APIError{Status: http.StatusGatewayTimeout, Message: MessageTimeout, Err: err}
	default:
		return &APIError{Status: http.StatusInternalServerError, Message: MessageInternalError, Err: err}
	}
}
