package errors

import "fmt"

// ErrorCode represents a builder error code.
type ErrorCode string

const (
	ErrInvalidAspectRatio ErrorCode = "INVALID_ASPECT_RATIO" // 422
	ErrUnknownProduct     ErrorCode = "UNKNOWN_PRODUCT"      // 404
	ErrUnknownSize        ErrorCode = "UNKNOWN_SIZE"         // 404
	ErrEmptyContent       ErrorCode = "EMPTY_CONTENT"        // 422
	ErrNoProductSelected  ErrorCode = "NO_PRODUCT_SELECTED"  // 409
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"      // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"            // 404
	ErrInternal           ErrorCode = "INTERNAL"             // 500
)

// BuilderError represents a structured error with code, status, and details.
type BuilderError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *BuilderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidAspectRatio creates a 422 error for a malformed "W:H" label.
func NewInvalidAspectRatio(label string) *BuilderError {
	return &BuilderError{
		Code:    ErrInvalidAspectRatio,
		Status:  422,
		Message: fmt.Sprintf("invalid aspect ratio: %q (want \"W:H\" with positive components)", label),
		Details: map[string]any{"aspect_ratio": label},
	}
}

// NewUnknownProduct creates a 404 error for a product id absent from the catalog.
func NewUnknownProduct(productID string) *BuilderError {
	return &BuilderError{
		Code:    ErrUnknownProduct,
		Status:  404,
		Message: fmt.Sprintf("unknown product: %s", productID),
		Details: map[string]any{"product_id": productID},
	}
}

// NewUnknownSize creates a 404 error for a size id that does not belong to the product.
func NewUnknownSize(productID, sizeID string) *BuilderError {
	return &BuilderError{
		Code:    ErrUnknownSize,
		Status:  404,
		Message: fmt.Sprintf("product %s has no size %s", productID, sizeID),
		Details: map[string]any{"product_id": productID, "size_id": sizeID},
	}
}

// NewEmptyContent creates a 422 error for a text element with blank content.
func NewEmptyContent() *BuilderError {
	return &BuilderError{
		Code:    ErrEmptyContent,
		Status:  422,
		Message: "text content must not be empty",
	}
}

// NewNoProductSelected creates a 409 error for operations requiring a selected product.
func NewNoProductSelected() *BuilderError {
	return &BuilderError{
		Code:    ErrNoProductSelected,
		Status:  409,
		Message: "no product selected; choose a product first",
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *BuilderError {
	return &BuilderError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing resource.
func NewNotFound(identifier string) *BuilderError {
	return &BuilderError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *BuilderError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &BuilderError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a BuilderError with the given code.
func Is(err error, code ErrorCode) bool {
	if bErr, ok := err.(*BuilderError); ok {
		return bErr.Code == code
	}
	return false
}
