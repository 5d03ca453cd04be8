// Package errors provides standardized error types for sslvhost.
//
// VHostError carries a Code that categorizes the failure, a human-readable
// Message, the virtual host name involved (if any) and the wrapped cause.
// Two VHostErrors compare equal under errors.Is when their codes match, so
// the sentinels below work as category checks:
//
//	if errors.Is(err, errors.ErrUnsupportedFamily) {
//	    // set site.os_family explicitly
//	}
//
// Use errors.As to get at the name or code:
//
//	var vErr *errors.VHostError
//	if errors.As(err, &vErr) {
//	    fmt.Printf("code=%s vhost=%s\n", vErr.Code, vErr.Domain)
//	}
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes errors for programmatic handling.
type ErrorCode string

// Error codes for different error categories.
const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"      // Resource not found
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS" // Resource already exists
	ErrCodeValidation    ErrorCode = "VALIDATION"     // Input validation failed
	ErrCodePermission    ErrorCode = "PERMISSION"     // Permission denied
	ErrCodeConfig        ErrorCode = "CONFIG"         // Configuration error
	ErrCodeDriver        ErrorCode = "DRIVER"         // Web server driver error
	ErrCodeSSL           ErrorCode = "SSL"            // Certificate material error
	ErrCodePlatform      ErrorCode = "PLATFORM"       // Host OS family error
	ErrCodeResource      ErrorCode = "RESOURCE"       // A resource failed to converge
	ErrCodeDependency    ErrorCode = "DEPENDENCY"     // Resource graph is malformed
	ErrCodeCancelled     ErrorCode = "CANCELLED"      // Run stopped before it finished
	ErrCodeDetect        ErrorCode = "DETECT"         // Host OS could not be inspected
	ErrCodeInternal      ErrorCode = "INTERNAL"       // Internal/unexpected error
)

// VHostError represents a structured error with context about the operation.
type VHostError struct {
	Code    ErrorCode // Error category
	Message string    // Human-readable message
	Domain  string    // Virtual host name (if applicable)
	Err     error     // Underlying error (if any)
}

// Error implements the error interface.
func (e *VHostError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Domain != "" && e.Err != nil {
		return fmt.Sprintf("vhost %s: %s: %v", e.Domain, msg, e.Err)
	}
	if e.Domain != "" {
		return fmt.Sprintf("vhost %s: %s", e.Domain, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for error chain traversal.
func (e *VHostError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error.
// Comparison is based on error code.
func (e *VHostError) Is(target error) bool {
	t, ok := target.(*VHostError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel errors for common error scenarios.
// Use these with errors.Is() for error checking.
var (
	// ErrVHostNotFound indicates the requested vhost is not in the manifest.
	ErrVHostNotFound = &VHostError{Code: ErrCodeNotFound, Message: "vhost not found"}

	// ErrVHostExists indicates a vhost with the same name already exists.
	ErrVHostExists = &VHostError{Code: ErrCodeAlreadyExists, Message: "vhost already exists"}

	// ErrInvalidDomain indicates the vhost name is not valid.
	ErrInvalidDomain = &VHostError{Code: ErrCodeValidation, Message: "invalid domain"}

	// ErrInvalidPath indicates a file path is not valid.
	ErrInvalidPath = &VHostError{Code: ErrCodeValidation, Message: "invalid path"}

	// ErrPermissionDenied indicates insufficient privileges for the operation.
	ErrPermissionDenied = &VHostError{Code: ErrCodePermission, Message: "permission denied"}

	// ErrConfigInvalid indicates the manifest is invalid or corrupt.
	ErrConfigInvalid = &VHostError{Code: ErrCodeConfig, Message: "invalid configuration"}

	// ErrDriverFailed indicates the web server rejected an operation.
	ErrDriverFailed = &VHostError{Code: ErrCodeDriver, Message: "driver operation failed"}

	// ErrSourceUnavailable indicates a certificate source could not be fetched.
	ErrSourceUnavailable = &VHostError{Code: ErrCodeSSL, Message: "certificate source unavailable"}

	// ErrUnsupportedFamily indicates the host OS family has no parameter set.
	ErrUnsupportedFamily = &VHostError{Code: ErrCodePlatform, Message: "unsupported OS family"}

	// ErrResourceFailed indicates at least one resource failed during a run.
	ErrResourceFailed = &VHostError{Code: ErrCodeResource, Message: "resource failed"}

	// ErrRunCancelled indicates the run was stopped before every resource
	// was visited.
	ErrRunCancelled = &VHostError{Code: ErrCodeCancelled, Message: "run cancelled"}

	// ErrDetectFailed indicates the host OS family could not be read, as
	// opposed to being read and unsupported.
	ErrDetectFailed = &VHostError{Code: ErrCodeDetect, Message: "cannot detect OS family"}

	// ErrDependencyCycle indicates the resource graph is not acyclic or has
	// dangling references.
	ErrDependencyCycle = &VHostError{Code: ErrCodeDependency, Message: "invalid dependency graph"}

	// ErrRootRequired indicates root privileges are required.
	ErrRootRequired = &VHostError{Code: ErrCodePermission, Message: "root privileges required"}
)

// NotFound creates an error for a vhost that doesn't exist.
func NotFound(domain string) error {
	return &VHostError{
		Code:    ErrCodeNotFound,
		Message: "vhost not found",
		Domain:  domain,
	}
}

// AlreadyExists creates an error for a vhost that already exists.
func AlreadyExists(domain string) error {
	return &VHostError{
		Code:    ErrCodeAlreadyExists,
		Message: "vhost already exists",
		Domain:  domain,
	}
}

// Validation creates a validation error with a custom message.
func Validation(msg string) error {
	return &VHostError{
		Code:    ErrCodeValidation,
		Message: msg,
	}
}

// Wrap creates an error with the specified code, message, and underlying error.
func Wrap(code ErrorCode, msg string, err error) error {
	return &VHostError{
		Code:    code,
		Message: msg,
		Err:     err,
	}
}

// WrapDomain creates an error with vhost context and underlying error.
func WrapDomain(code ErrorCode, domain string, err error) error {
	return &VHostError{
		Code:   code,
		Domain: domain,
		Err:    err,
	}
}

// Is reports whether any error in err's chain matches target.
// This is a re-export of errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// This is a re-export of errors.As for convenience.
var As = errors.As
