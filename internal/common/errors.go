package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInternal       = errors.New("internal error")
	ErrDatabase       = errors.New("database error")
	ErrValidation     = errors.New("validation failed")
	ErrConfiguration  = errors.New("configuration error")
	ErrDateResolution = errors.New("delivery date could not be resolved")
	ErrStoreQuery     = errors.New("folio store query failed")
)

// Error codes carried by AppError.
const (
	CodeConfiguration  = "CONFIGURATION_ERROR"
	CodeDateResolution = "DATE_RESOLUTION_ERROR"
	CodeStoreQuery     = "STORE_QUERY_ERROR"
	CodeEmptyResult    = "EMPTY_RESULT"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func ConfigurationError(format string, args ...any) *AppError {
	return NewAppError(CodeConfiguration, fmt.Sprintf(format, args...), ErrConfiguration)
}

func DateResolutionError(format string, args ...any) *AppError {
	return NewAppError(CodeDateResolution, fmt.Sprintf(format, args...), ErrDateResolution)
}

// StoreQueryError keeps both the sentinel and the driver error in the chain.
func StoreQueryError(message string, cause error) *AppError {
	if cause == nil {
		return NewAppError(CodeStoreQuery, message, ErrStoreQuery)
	}
	return NewAppError(CodeStoreQuery, message, fmt.Errorf("%w: %w", ErrStoreQuery, cause))
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func FailedPreconditionError(message string) error {
	return status.Error(codes.FailedPrecondition, message)
}

func UnavailableError(message string) error {
	return status.Error(codes.Unavailable, message)
}

func NotFoundError(message string) error {
	return status.Error(codes.NotFound, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

func InternalErrorf(format string, args ...interface{}) error {
	return InternalError(fmt.Sprintf(format, args...))
}

// ToStatus maps the extraction error taxonomy onto gRPC status codes.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidInput):
		return InvalidArgumentError(err.Error())
	case errors.Is(err, ErrDateResolution):
		return FailedPreconditionError(err.Error())
	case errors.Is(err, ErrStoreQuery), errors.Is(err, ErrDatabase):
		return UnavailableError(err.Error())
	case errors.Is(err, ErrNotFound):
		return NotFoundError(err.Error())
	default:
		return InternalError(err.Error())
	}
}

// IsStoreQuery reports whether err is a folio store failure.
func IsStoreQuery(err error) bool {
	return errors.Is(err, ErrStoreQuery)
}
