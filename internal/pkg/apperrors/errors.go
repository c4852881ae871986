package apperrors

import "errors"

// Validation errors
var (
	ErrValidationFailed = errors.New("validation failed")
)

// Authentication errors
var (
	// ErrInvalidCredentials covers both unknown usernames and wrong passwords
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrTokenMissing   = errors.New("token missing")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
)

// Resource errors
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrStudentNotFound  = NewCustomError(ErrResourceNotFound, "Student not found")
	ErrAccountNotFound  = NewCustomError(ErrResourceNotFound, "Account not found")
	ErrAlreadyExists    = errors.New("resource already exists")
)

// Storage errors
var (
	ErrPersistence = errors.New("persistence failure")
)

// CustomError represents application-specific errors with a client-facing message
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// NewValidationError creates a validation error with a message
func NewValidationError(message string) *CustomError {
	return NewCustomError(ErrValidationFailed, message)
}

// NewNotFoundError creates a not found error with a message
func NewNotFoundError(message string) *CustomError {
	return NewCustomError(ErrResourceNotFound, message)
}

// persistenceError keeps the storage cause reachable through errors.Is/As while
// classifying the failure as ErrPersistence.
type persistenceError struct {
	op    string
	cause error
}

func (e *persistenceError) Error() string {
	return e.op + ": " + e.cause.Error()
}

func (e *persistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.cause}
}

// Persistence wraps a storage failure. Nil stays nil.
func Persistence(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &persistenceError{op: op, cause: cause}
}

// MessageOf returns the client-facing message carried by err, or fallback
func MessageOf(err error, fallback string) string {
	var custom *CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	return fallback
}

// DetailsOf returns the details map carried by err, if any
func DetailsOf(err error) map[string]interface{} {
	var custom *CustomError
	if errors.As(err, &custom) {
		return custom.Details
	}
	return nil
}
