package errors

import (
	stderrors "errors"
	"fmt"

	"assocreport/domain/core"
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

// Wrap wraps an error with additional context, keeping the code of a wrapped AppError
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
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
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the code of the outermost AppError in the chain; domain table
// errors map to their own codes; anything else is "UNKNOWN".
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	if code, ok := domainCode(err); ok {
		return code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid              = "CONFIG_INVALID"
	CodeNotFound                   = "NOT_FOUND"
	CodeInternalError              = "INTERNAL_ERROR"
	CodeInvalidInput               = "INVALID_INPUT"
	CodeIOError                    = "IO_ERROR"
	CodeDegenerateTable            = "DEGENERATE_TABLE"
	CodeInsufficientDimensionality = "INSUFFICIENT_DIMENSIONALITY"
	CodeMissingAttribute           = "MISSING_ATTRIBUTE"
)

func domainCode(err error) (string, bool) {
	switch {
	case core.IsDegenerateTable(err):
		return CodeDegenerateTable, true
	case core.IsInsufficientDimensionality(err):
		return CodeInsufficientDimensionality, true
	case core.IsMissingAttribute(err):
		return CodeMissingAttribute, true
	}
	return "", false
}

// FromDomain wraps a domain error in an AppError carrying the matching code.
// Non-domain errors become INTERNAL_ERROR.
func FromDomain(err error) error {
	if err == nil {
		return nil
	}
	code, ok := domainCode(err)
	if !ok {
		code = CodeInternalError
	}
	return &AppError{Code: code, Message: err.Error(), Cause: err}
}

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func IOError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeIOError,
		Message: message,
		Cause:   cause,
	}
}
