package kerio

import (
	"errors"
	"fmt"
)

// InvalidCredentialsCode is the server error code for a rejected login.
const InvalidCredentialsCode = 1000

var (
	// ErrUnsupportedOperation indicates an unknown resource/operation pair.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrTransport indicates a network, TLS, timeout or HTTP status failure.
	ErrTransport = errors.New("transport error")

	// ErrAPI indicates the server answered with a JSON-RPC error object.
	ErrAPI = errors.New("api error")

	// ErrInvalidField indicates a field value rejected before any network call.
	ErrInvalidField = errors.New("invalid field")
)

// UnsupportedOperationError names the pair that has no descriptor.
type UnsupportedOperationError struct {
	Resource  string
	Operation string
}

func (e *UnsupportedOperationError) Error() string {
	if e.Operation == "" {
		return fmt.Sprintf("unsupported resource: %s", e.Resource)
	}

	return fmt.Sprintf("unsupported operation: %s/%s", e.Resource, e.Operation)
}

func (e *UnsupportedOperationError) Unwrap() error {
	return ErrUnsupportedOperation
}

// TransportError wraps a failure of the HTTP layer.
type TransportError struct {
	Method string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failed: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// HTTPStatusError represents a non-2xx HTTP response.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// APIError is a JSON-RPC error object returned by the server.
type APIError struct {
	Method  string
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: server error %d: %s", e.Method, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return ErrAPI
}

// ValidationError reports a field rejected locally.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidField
}

// NewValidationError creates a validation error for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsUnsupportedOperation checks if an error indicates an unknown resource/operation pair.
func IsUnsupportedOperation(err error) bool {
	return errors.Is(err, ErrUnsupportedOperation)
}

// IsTransportError checks if an error came from the HTTP layer.
func IsTransportError(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsAPIError checks if an error is a server JSON-RPC error.
func IsAPIError(err error) bool {
	return errors.Is(err, ErrAPI)
}

// IsValidationError checks if an error is a local field validation failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidField)
}

// IsInvalidCredentials checks if an error is the server's login rejection.
func IsInvalidCredentials(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == InvalidCredentialsCode
	}

	return false
}

// ErrorKind classifies err for output ports and problem responses.
func ErrorKind(err error) string {
	switch {
	case IsUnsupportedOperation(err):
		return "unsupported_operation"
	case IsValidationError(err):
		return "validation_error"
	case IsAPIError(err):
		return "api_error"
	case IsTransportError(err):
		return "transport_error"
	default:
		return "internal_error"
	}
}
