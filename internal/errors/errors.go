package errors

import (
	stderrors "errors"
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

// Newf creates a new AppError with a formatted message
func Newf(code, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context, keeping the code of the
// innermost AppError if there is one.
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

// WithCode wraps err under the given code
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
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

// GetCode returns the code of the outermost AppError in the chain, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// IsBadFile reports whether err describes a problem with an input file rather
// than with a later computation.
func IsBadFile(err error) bool {
	switch GetCode(err) {
	case CodeIO, CodeSchemaMismatch, CodeMalformedCell, CodeNoData:
		return true
	}
	return false
}

// Predefined error codes
const (
	CodeConfigInvalid    = "CONFIG_INVALID"
	CodeIO               = "IO_ERROR"
	CodeSchemaMismatch   = "SCHEMA_MISMATCH"
	CodeMalformedCell    = "MALFORMED_CELL"
	CodeNoData           = "NO_DATA"
	CodeComputationError = "COMPUTATION_ERROR"
	CodeRenderError      = "RENDER_ERROR"
	CodeInternalError    = "INTERNAL_ERROR"
	CodeInvalidInput     = "INVALID_INPUT"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func IOFailure(path string, cause error) *AppError {
	return &AppError{
		Code:    CodeIO,
		Message: fmt.Sprintf("cannot read %s", path),
		Cause:   cause,
	}
}

func SchemaMismatch(message string) *AppError {
	return New(CodeSchemaMismatch, message)
}

// MalformedCell reports a non-numeric, non-missing observation.
func MalformedCell(country, column, text string) *AppError {
	return Newf(CodeMalformedCell, "malformed cell for %q in column %q: %q is not numeric", country, column, text)
}

func NoData(message string) *AppError {
	return New(CodeNoData, message)
}

// ComputationError reports a statistic that could not be computed.
func ComputationError(what string, cause error) *AppError {
	return &AppError{
		Code:    CodeComputationError,
		Message: fmt.Sprintf("cannot compute %s", what),
		Cause:   cause,
	}
}

func RenderError(target string, cause error) *AppError {
	return &AppError{
		Code:    CodeRenderError,
		Message: fmt.Sprintf("failed to render %s", target),
		Cause:   cause,
	}
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}
