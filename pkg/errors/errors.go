// Package errors provides structured error types for pyfetch.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - MANIFEST_*, PATH_*: Discovery failures surfaced to the caller
//   - NETWORK_*: Network-related errors
//   - INTERNAL_*: Unexpected internal errors
//
// # Discovery Errors
//
// Three terminal discovery failures have dedicated types so callers can
// recover the offending path(s):
//
//	var nf *errors.ManifestNotFoundError
//	if stderrors.As(err, &nf) {
//	    fmt.Println("missing:", nf.Path)
//	}
//
// All of them also answer to [Is] with their code:
//
//	if errors.Is(err, errors.ErrCodePathDependenciesUnreachable) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidRepo  Code = "INVALID_REPO"
	ErrCodeInvalidPath  Code = "INVALID_PATH"

	// Discovery errors
	ErrCodeManifestNotFound            Code = "MANIFEST_NOT_FOUND"
	ErrCodeManifestNotParseable        Code = "MANIFEST_NOT_PARSEABLE"
	ErrCodePathDependenciesUnreachable Code = "PATH_DEPENDENCIES_UNREACHABLE"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Network errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Authentication errors
	ErrCodeUnauthorized Code = "UNAUTHORIZED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// coder is implemented by every error type in this package.
type coder interface {
	error
	code() Code
}

func (e *Error) code() Code { return e.Code }

// Is reports whether err has the given error code.
// It unwraps the error chain looking for any error of this package
// carrying a matching code.
func Is(err error, code Code) bool {
	for err != nil {
		if c, ok := err.(coder); ok && c.code() == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	var c coder
	if errors.As(err, &c) {
		return c.code()
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For errors of this package, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	var c coder
	if errors.As(err, &c) {
		return strings.TrimPrefix(c.Error(), string(c.code())+": ")
	}
	return err.Error()
}

// ManifestNotFoundError reports that no recognizable Python manifest exists.
// Path is the requirements.txt path that would have satisfied discovery.
type ManifestNotFoundError struct {
	Path string
}

// NewManifestNotFound creates a ManifestNotFoundError for path.
func NewManifestNotFound(path string) *ManifestNotFoundError {
	return &ManifestNotFoundError{Path: path}
}

func (e *ManifestNotFoundError) Error() string {
	return fmt.Sprintf("%s: %s not found", ErrCodeManifestNotFound, e.Path)
}

func (e *ManifestNotFoundError) code() Code { return ErrCodeManifestNotFound }

// Code returns the error code for this error type.
func (e *ManifestNotFoundError) Code() Code { return ErrCodeManifestNotFound }

// ManifestNotParseableError reports a Pipfile or pyproject.toml that is not
// valid TOML.
type ManifestNotParseableError struct {
	Path  string
	Cause error
}

// NewManifestNotParseable creates a ManifestNotParseableError for path.
func NewManifestNotParseable(path string, cause error) *ManifestNotParseableError {
	return &ManifestNotParseableError{Path: path, Cause: cause}
}

func (e *ManifestNotParseableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", ErrCodeManifestNotParseable, e.Path, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrCodeManifestNotParseable, e.Path)
}

func (e *ManifestNotParseableError) Unwrap() error { return e.Cause }

func (e *ManifestNotParseableError) code() Code { return ErrCodeManifestNotParseable }

// Code returns the error code for this error type.
func (e *ManifestNotParseableError) Code() Code { return ErrCodeManifestNotParseable }

// PathDependenciesUnreachableError lists every local path dependency that
// could not be fetched during one discovery run.
type PathDependenciesUnreachableError struct {
	Paths []string
}

// NewPathDependenciesUnreachable creates a PathDependenciesUnreachableError.
// A leading "/" is stripped from every path.
func NewPathDependenciesUnreachable(paths []string) *PathDependenciesUnreachableError {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = strings.TrimPrefix(p, "/")
	}
	return &PathDependenciesUnreachableError{Paths: out}
}

func (e *PathDependenciesUnreachableError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCodePathDependenciesUnreachable, strings.Join(e.Paths, ", "))
}

func (e *PathDependenciesUnreachableError) code() Code { return ErrCodePathDependenciesUnreachable }

// Code returns the error code for this error type.
func (e *PathDependenciesUnreachableError) Code() Code { return ErrCodePathDependenciesUnreachable }

// RateLimitedError provides additional information for rate-limited responses.
type RateLimitedError struct {
	RetryAfter int // Seconds to wait before retrying
	Message    string
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

func (e *RateLimitedError) code() Code { return ErrCodeRateLimited }

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
