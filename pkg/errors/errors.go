package errors

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"
	ErrPermission    ErrorCode = "PERMISSION"

	// Install/uninstall errors
	ErrNoEntryResolved   ErrorCode = "NO_ENTRY_RESOLVED"
	ErrSyntaxCheckFailed ErrorCode = "SYNTAX_CHECK_FAILED"
	ErrPartialBatch      ErrorCode = "PARTIAL_BATCH"

	// Snapshot errors
	ErrSnapshotFailed ErrorCode = "SNAPSHOT_FAILED"

	// Archive errors
	ErrUnsupportedArchiveFormat ErrorCode = "UNSUPPORTED_ARCHIVE_FORMAT"
	ErrArchiveShape             ErrorCode = "ARCHIVE_SHAPE"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Fetch errors
	ErrFetchFailed ErrorCode = "FETCH_FAILED"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
)

// DoappError represents a structured error with code and details
type DoappError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DoappError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DoappError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *DoappError) Is(target error) bool {
	var targetErr *DoappError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DoappError with the given code and message
func New(code ErrorCode, message string) *DoappError {
	return &DoappError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DoappError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DoappError {
	return &DoappError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DoappError
func Wrap(err error, code ErrorCode, message string) *DoappError {
	if err == nil {
		return nil
	}
	return &DoappError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DoappError {
	if err == nil {
		return nil
	}
	return &DoappError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *DoappError) WithDetail(key string, value interface{}) *DoappError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var doappErr *DoappError
	if errors.As(err, &doappErr) {
		return doappErr.Code == code
	}
	return false
}

// Code classifies an error: a permission failure anywhere in the chain
// maps to ErrPermission, a DoappError keeps its code, anything else
// gets the fallback code.
func Code(err error, fallback ErrorCode) ErrorCode {
	if errors.Is(err, fs.ErrPermission) {
		return ErrPermission
	}
	var doappErr *DoappError
	if errors.As(err, &doappErr) {
		return doappErr.Code
	}
	return fallback
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a DoappError
func GetErrorCode(err error) ErrorCode {
	var doappErr *DoappError
	if errors.As(err, &doappErr) {
		return doappErr.Code
	}
	return ErrUnknown
}
