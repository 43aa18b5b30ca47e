// file: apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
)

// ErrorType classifies an AppError for transport mapping.
type ErrorType int

const (
	TypeValidation ErrorType = iota
	TypeNotFound
	TypeDuplicate
	TypeConflict
	TypeAuth
	TypePermission
	TypeClosed
	TypeSystem
)

// Response codes carried in the {code,msg,data} envelope.
const (
	CodeInvalidParams  = 1001
	CodeInvalidID      = 1002
	CodeAlreadyExists  = 2001
	CodeBadCredentials = 2002
	CodeConflict       = 3001
	CodeAuthMissing    = 4001
	CodeAuthFormat     = 4002
	CodeForbidden      = 4003
	CodeNotFound       = 4004
	CodeClosed         = 4005
	CodeDatabase       = 5000
	CodeInternal       = 5001
)

// AppError is a structured error that knows what the caller may see.
type AppError struct {
	Type     ErrorType
	Code     int
	Message  string
	UserMsg  string
	Fields   map[string]string
	Internal error
}

func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Internal)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Internal }

// GetUserMessage returns the message safe to show to a client.
func (e *AppError) GetUserMessage() string {
	if e.UserMsg != "" {
		return e.UserMsg
	}
	return e.Message
}

// NewValidationError reports bad input. fields may be nil.
func NewValidationError(message string, fields map[string]string) *AppError {
	return &AppError{
		Type:    TypeValidation,
		Code:    CodeInvalidParams,
		Message: message,
		Fields:  fields,
	}
}

func NewInvalidIDError(what string) *AppError {
	return &AppError{
		Type:    TypeValidation,
		Code:    CodeInvalidID,
		Message: "invalid " + what + " id",
	}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    TypeNotFound,
		Code:    CodeNotFound,
		Message: message,
	}
}

func NewDuplicateError(message string, err error) *AppError {
	return &AppError{
		Type:     TypeDuplicate,
		Code:     CodeAlreadyExists,
		Message:  message,
		Internal: err,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Type:    TypeConflict,
		Code:    CodeConflict,
		Message: message,
	}
}

func NewAuthError(code int, message string) *AppError {
	return &AppError{
		Type:    TypeAuth,
		Code:    code,
		Message: message,
	}
}

func NewPermissionError(message string) *AppError {
	return &AppError{
		Type:    TypePermission,
		Code:    CodeForbidden,
		Message: message,
	}
}

// NewClosedError is returned when a feature is switched off by a setting.
func NewClosedError(message string) *AppError {
	return &AppError{
		Type:    TypeClosed,
		Code:    CodeClosed,
		Message: message,
	}
}

// NewSystemError wraps an unexpected failure. The internal error is never shown to clients.
func NewSystemError(message string, err error) *AppError {
	return &AppError{
		Type:     TypeSystem,
		Code:     CodeInternal,
		Message:  message,
		UserMsg:  "Something went wrong. Please try again later.",
		Internal: err,
	}
}

func NewDatabaseError(err error) *AppError {
	return &AppError{
		Type:     TypeSystem,
		Code:     CodeDatabase,
		Message:  "database error",
		UserMsg:  "Database error. Please try again later.",
		Internal: err,
	}
}

// As extracts an *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err carries an AppError of type t.
func IsType(err error, t ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == t
}
