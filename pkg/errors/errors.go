package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// External stage errors
	ErrConfigure  ErrorCode = "CONFIGURE"
	ErrBuild      ErrorCode = "BUILD"
	ErrExtract    ErrorCode = "EXTRACT"
	ErrStageOrder ErrorCode = "STAGE_ORDER"

	// Persisted state errors
	ErrCheckpoint      ErrorCode = "CHECKPOINT"
	ErrMetadataLoad    ErrorCode = "METADATA_LOAD"
	ErrMetadataInvalid ErrorCode = "METADATA_INVALID"

	// Artifact errors
	ErrDirCreate  ErrorCode = "DIR_CREATE"
	ErrCompileDir ErrorCode = "COMPILE_DIR"
	ErrKeyDecode  ErrorCode = "KEY_DECODE"
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrCommand    ErrorCode = "COMMAND"

	// Compile and link errors
	ErrCompile    ErrorCode = "COMPILE"
	ErrLinkFailed ErrorCode = "LINK_FAILED"
	ErrGraphCycle ErrorCode = "GRAPH_CYCLE"
)

// Process exit statuses. Every non-zero value means the pipeline is incomplete.
const (
	ExitOK         = 0
	ExitGeneric    = 1
	ExitConfigure  = 3
	ExitBuild      = 4
	ExitCheckpoint = 5
	ExitMetadata   = 6
	ExitExtract    = 7
	ExitDirCreate  = 10
	ExitCompileDir = 20
	ExitLink       = 50
	ExitCycle      = 51
)

var exitCodes = map[ErrorCode]int{
	ErrConfigure:       ExitConfigure,
	ErrBuild:           ExitBuild,
	ErrExtract:         ExitExtract,
	ErrCheckpoint:      ExitCheckpoint,
	ErrStageOrder:      ExitCheckpoint,
	ErrMetadataLoad:    ExitMetadata,
	ErrMetadataInvalid: ExitMetadata,
	ErrDirCreate:       ExitDirCreate,
	ErrCompileDir:      ExitCompileDir,
	ErrLinkFailed:      ExitLink,
	ErrGraphCycle:      ExitCycle,
}

// BcError represents a structured error with code and details
type BcError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *BcError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *BcError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *BcError) Is(target error) bool {
	var targetErr *BcError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new BcError with the given code and message
func New(code ErrorCode, message string) *BcError {
	return &BcError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new BcError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *BcError {
	return &BcError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a BcError
func Wrap(err error, code ErrorCode, message string) *BcError {
	if err == nil {
		return nil
	}
	return &BcError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *BcError {
	if err == nil {
		return nil
	}
	return &BcError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *BcError) WithDetail(key string, value interface{}) *BcError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var bcErr *BcError
	if errors.As(err, &bcErr) {
		return bcErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a BcError
func GetErrorCode(err error) ErrorCode {
	var bcErr *BcError
	if errors.As(err, &bcErr) {
		return bcErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a BcError
func GetErrorDetails(err error) map[string]interface{} {
	var bcErr *BcError
	if errors.As(err, &bcErr) {
		return bcErr.Details
	}
	return nil
}

// ExitCode maps an error to the process exit status documented for its code.
// nil maps to ExitOK; errors without a dedicated status map to ExitGeneric.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if code, ok := exitCodes[GetErrorCode(err)]; ok {
		return code
	}
	return ExitGeneric
}
