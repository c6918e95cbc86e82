package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeCompiler   ErrorType = "compiler"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// ValidatorError is a structured error type with context.
type ValidatorError struct {
	Type     ErrorType
	Code     string
	Message  string
	Cause    error
	Context  map[string]interface{}
	FilePath string
	Line     int
	Column   int
}

// Error implements the error interface.
func (e *ValidatorError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.FilePath != "" {
		location := e.FilePath
		if e.Line > 0 {
			location += fmt.Sprintf(":%d", e.Line)
			if e.Column > 0 {
				location += fmt.Sprintf(":%d", e.Column)
			}
		}
		parts = append(parts, location)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *ValidatorError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *ValidatorError) Is(target error) bool {
	var t *ValidatorError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *ValidatorError) WithContext(key string, value interface{}) *ValidatorError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithLocation adds file location information.
func (e *ValidatorError) WithLocation(filePath string, line, column int) *ValidatorError {
	e.FilePath = filePath
	e.Line = line
	e.Column = column

	return e
}

// Common error codes.
const (
	ErrCodeInvalidInput       = "ERR_INVALID_INPUT"
	ErrCodeInvalidPath        = "ERR_INVALID_PATH"
	ErrCodeDuplicatePath      = "ERR_DUPLICATE_PATH"
	ErrCodeWorkspaceIO        = "ERR_WORKSPACE_IO"
	ErrCodeCompilationTimeout = "ERR_COMPILATION_TIMEOUT"
	ErrCodeCompilerNotFound   = "ERR_COMPILER_NOT_FOUND"
	ErrCodeCompilerFailed     = "ERR_COMPILER_FAILED"
	ErrCodeCommandInjection   = "ERR_COMMAND_INJECTION"
	ErrCodeConfigInvalid      = "ERR_CONFIG_INVALID"
	ErrCodeInternalError      = "ERR_INTERNAL"
)

// Sentinel values usable with errors.Is.
var (
	ErrInvalidInput       = &ValidatorError{Type: ErrorTypeValidation, Code: ErrCodeInvalidInput}
	ErrWorkspaceIO        = &ValidatorError{Type: ErrorTypeIO, Code: ErrCodeWorkspaceIO}
	ErrCompilationTimeout = &ValidatorError{Type: ErrorTypeTimeout, Code: ErrCodeCompilationTimeout}
)

// Error creation functions

// NewInvalidInputError creates an error for a structurally malformed request.
func NewInvalidInputError(message string) *ValidatorError {
	return &ValidatorError{
		Type:    ErrorTypeValidation,
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}

// NewIOError creates a workspace I/O error.
func NewIOError(message string, cause error) *ValidatorError {
	return &ValidatorError{
		Type:    ErrorTypeIO,
		Code:    ErrCodeWorkspaceIO,
		Message: message,
		Cause:   cause,
	}
}

// NewTimeoutError creates a compilation timeout error.
func NewTimeoutError(message string, cause error) *ValidatorError {
	return &ValidatorError{
		Type:    ErrorTypeTimeout,
		Code:    ErrCodeCompilationTimeout,
		Message: message,
		Cause:   cause,
	}
}

// NewCompilerError creates an error for a compiler that could not run to completion.
func NewCompilerError(code, message string, cause error) *ValidatorError {
	return &ValidatorError{
		Type:    ErrorTypeCompiler,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(message string) *ValidatorError {
	return &ValidatorError{
		Type:    ErrorTypeConfig,
		Code:    ErrCodeConfigInvalid,
		Message: message,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(message string, cause error) *ValidatorError {
	return &ValidatorError{
		Type:    ErrorTypeInternal,
		Code:    ErrCodeInternalError,
		Message: message,
		Cause:   cause,
	}
}

// Helper functions for common errors

// ErrInvalidPath creates an invalid-input error for a rejected file path.
func ErrInvalidPath(path, reason string) *ValidatorError {
	return &ValidatorError{
		Type:    ErrorTypeValidation,
		Code:    ErrCodeInvalidPath,
		Message: fmt.Sprintf("invalid path %q: %s", path, reason),
	}
}

// ErrDuplicatePath creates an invalid-input error for a path declared twice.
func ErrDuplicatePath(path string) *ValidatorError {
	return &ValidatorError{
		Type:    ErrorTypeValidation,
		Code:    ErrCodeDuplicatePath,
		Message: fmt.Sprintf("duplicate path %q in file set", path),
	}
}

// ErrCommandInjection creates an error for a rejected compiler command.
func ErrCommandInjection(command string) *ValidatorError {
	return &ValidatorError{
		Type:    ErrorTypeConfig,
		Code:    ErrCodeCommandInjection,
		Message: "command injection attempt: " + command,
	}
}
