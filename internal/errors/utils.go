package errors

import (
	"errors"
)

// Wrap wraps an error with additional context, creating a ValidatorError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *ValidatorError {
	if err == nil {
		return nil
	}

	// If it's already a ValidatorError, preserve its location but update the message
	var ve *ValidatorError
	if errors.As(err, &ve) {
		return &ValidatorError{
			Type:     errType,
			Code:     code,
			Message:  message,
			Cause:    ve,
			Context:  ve.Context,
			FilePath: ve.FilePath,
			Line:     ve.Line,
			Column:   ve.Column,
		}
	}

	return &ValidatorError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapIO wraps an error as a workspace I/O error
func WrapIO(err error, message string) *ValidatorError {
	return Wrap(err, ErrorTypeIO, ErrCodeWorkspaceIO, message)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(err error, message string) *ValidatorError {
	return Wrap(err, ErrorTypeInternal, ErrCodeInternalError, message)
}

// TypeOf returns the ErrorType of err, or ErrorTypeInternal for foreign errors.
func TypeOf(err error) ErrorType {
	var ve *ValidatorError
	if errors.As(err, &ve) {
		return ve.Type
	}
	return ErrorTypeInternal
}

// CodeOf returns the error code of err, or ErrCodeInternalError for foreign errors.
func CodeOf(err error) string {
	var ve *ValidatorError
	if errors.As(err, &ve) && ve.Code != "" {
		return ve.Code
	}
	return ErrCodeInternalError
}

// MessageOf returns the message of err without its code or location
// prefix, followed by the cause when there is one.
func MessageOf(err error) string {
	var ve *ValidatorError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	if ve.Cause != nil {
		return ve.Message + ": " + ve.Cause.Error()
	}
	return ve.Message
}

// IsInvalidInput checks if an error reports a malformed request.
func IsInvalidInput(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeValidation
}

// IsIO checks if an error is a workspace I/O error.
func IsIO(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeIO
}

// IsTimeout checks if an error is a compilation timeout.
func IsTimeout(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeTimeout
}
