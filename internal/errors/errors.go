package errors

import (
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	// CodeSchemaMismatch marks a metadata/numeric row divergence. Fatal for
	// the sheet that produced it; never recoverable by retrying.
	CodeSchemaMismatch = "SCHEMA_MISMATCH"
	// CodeDegenerateInput marks a sheet-local skip (too little data for a
	// stage). The run continues.
	CodeDegenerateInput = "DEGENERATE_INPUT"
	// CodeMissingData is informational: rows were dropped for missing or
	// non-finite values.
	CodeMissingData = "MISSING_DATA"

	CodeConfigInvalid = "CONFIG_INVALID"
	CodeReadFailed    = "READ_FAILED"
	CodeExportFailed  = "EXPORT_FAILED"
	CodeRenderFailed  = "RENDER_FAILED"
	CodeInternalError = "INTERNAL_ERROR"
	CodeInvalidInput  = "INVALID_INPUT"
)

// Common error constructors

func SchemaMismatch(message string) *AppError {
	return New(CodeSchemaMismatch, message)
}

func DegenerateInput(message string) *AppError {
	return New(CodeDegenerateInput, message)
}

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func ReadFailed(message string) *AppError {
	return New(CodeReadFailed, message)
}

func ExportFailed(message string) *AppError {
	return New(CodeExportFailed, message)
}

func RenderFailed(message string) *AppError {
	return New(CodeRenderFailed, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}
