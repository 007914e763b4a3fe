package models

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Attribute names are restricted to identifiers so they can never be read as
// a document path ("a.b", "a[0]") by the store's expression grammar.
var attributeNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]{0,254}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("attrname", func(fl validator.FieldLevel) bool {
		return IsValidAttributeName(fl.Field().String())
	})
	return v
}

// ValidationError represents a validation error with field-specific details
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	return ve.Message
}

// ValidationErrors collects every failed rule of one request
type ValidationErrors []*ValidationError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve))
	for _, e := range ve {
		msgs = append(msgs, e.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// IsValidationError reports whether err carries request validation failures
func IsValidationError(err error) bool {
	var ves ValidationErrors
	var ve *ValidationError
	return errors.As(err, &ves) || errors.As(err, &ve)
}

// ValidateStruct runs the struct's validate tags and converts failures to ValidationErrors
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validation failed: %w", err)
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, &ValidationError{
			Field:   fe.Field(),
			Message: fieldErrorMessage(fe),
			Value:   fe.Value(),
		})
	}
	return out
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "notblank":
		return fe.Field() + " must not be blank"
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", fe.Field(), fe.Param())
	case "attrname":
		return fmt.Sprintf("%s must be an attribute name matching %s and cannot be %s",
			fe.Field(), attributeNameRegex.String(), KeyAttribute)
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// IsValidAttributeName reports whether name can be targeted by an attribute update
func IsValidAttributeName(name string) bool {
	return name != KeyAttribute && attributeNameRegex.MatchString(name)
}

// AttributeUpdate sets a single named attribute. Name and value stay separate
// all the way to the store, which binds both as expression placeholders.
type AttributeUpdate struct {
	Name  string
	Value interface{}
}

// NewAttributeUpdate validates name against the attribute grammar and the optional allow-list
func NewAttributeUpdate(name string, value interface{}, allowed []string) (AttributeUpdate, error) {
	update := AttributeUpdate{Name: name, Value: value}
	if err := update.Validate(); err != nil {
		return AttributeUpdate{}, err
	}

	if len(allowed) > 0 && !contains(allowed, name) {
		return AttributeUpdate{}, ValidationErrors{{
			Field:   "updateKey",
			Message: fmt.Sprintf("updateKey must be one of: %s", strings.Join(allowed, ", ")),
			Value:   name,
		}}
	}

	return update, nil
}

// Validate checks the attribute name
func (u AttributeUpdate) Validate() error {
	if !IsValidAttributeName(u.Name) {
		return ValidationErrors{{
			Field:   "updateKey",
			Message: fmt.Sprintf("updateKey must be an attribute name matching %s and cannot be %s", attributeNameRegex.String(), KeyAttribute),
			Value:   u.Name,
		}}
	}
	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
