package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	// ErrInvalidArgument signals malformed or out-of-domain caller input
	// (unsupported locale, nil required argument, unknown category). It is
	// raised before any table lookup takes place.
	ErrInvalidArgument = NewDomainError("INVALID_ARGUMENT", "Invalid argument provided")

	// ErrNotFound signals that an operation addressed a specific entity id
	// that does not exist for the given tenant. Reference-data lookups never
	// use it; they return empty lists instead.
	ErrNotFound = NewDomainError("NOT_FOUND", "Resource not found")

	// ErrServiceUnavailable signals that the backing store could not be
	// loaded, refreshed or queried. Always retryable by the caller.
	ErrServiceUnavailable = NewDomainError("SERVICE_UNAVAILABLE", "Backing store unavailable")

	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// InvalidArgument creates an INVALID_ARGUMENT error with a specific message.
func InvalidArgument(message string) *DomainError {
	return NewDomainError("INVALID_ARGUMENT", message)
}

// ServiceUnavailable creates a SERVICE_UNAVAILABLE error with a specific message.
func ServiceUnavailable(message string) *DomainError {
	return NewDomainError("SERVICE_UNAVAILABLE", message)
}
