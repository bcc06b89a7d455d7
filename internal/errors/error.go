// Package errors provides custom error types for product-related operations.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProductNotFound is returned when a well-formed id matches no product.
	ErrProductNotFound = errors.New("Product does not exist.")

	// ErrInvalidIdentifier is returned when an id token is not a 24-character hex ObjectID.
	ErrInvalidIdentifier = errors.New("Invalid product Id.")

	// ErrNameConflict is reported by stores when a write violates the unique name index.
	// The service turns it into a DuplicateNameError.
	ErrNameConflict = errors.New("product name conflict")

	// ErrUnencodablePrice is reported by stores when a price has no exact stored form.
	ErrUnencodablePrice = errors.New("price cannot be stored exactly")
)

// Violation is a single failed field rule.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violated field rule of a candidate product.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Field + ": " + v.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the violations keyed by field name.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Violations))
	for _, v := range e.Violations {
		fields[v.Field] = v.Message
	}
	return fields
}

const (
	ParamPageNumber = "page number"
	ParamPageSize   = "page size"
	ParamSort       = "sort"
)

// InvalidParameterError is returned when a search parameter is outside its accepted domain.
type InvalidParameterError struct {
	Parameter string
	Value     string
}

func (e *InvalidParameterError) Error() string {
	switch e.Parameter {
	case ParamPageNumber:
		return fmt.Sprintf("Invalid page number %s. Page number must be greater than 0.", e.Value)
	case ParamPageSize:
		return fmt.Sprintf("Page size can not be %s. Page size must be greater than 0.", e.Value)
	case ParamSort:
		return fmt.Sprintf("Invalid sort parameter %s. It must be 'asc' or 'desc'.", e.Value)
	default:
		return fmt.Sprintf("Invalid %s %s.", e.Parameter, e.Value)
	}
}

// DuplicateNameError is returned when a product with the same name already exists.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("A product with the name '%s' already exists.", e.Name)
}
