package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	err := NewValidationError("bad input", nil)
	if got, want := err.Error(), "[1001] bad input"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	inner := errors.New("connection refused")
	sys := NewSystemError("save failed", inner)
	if got, want := sys.Error(), "[5001] save failed: connection refused"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(sys, inner) {
		t.Error("system error should unwrap to its internal error")
	}
}

func TestGetUserMessage(t *testing.T) {
	if got := NewNotFoundError("Form not found").GetUserMessage(); got != "Form not found" {
		t.Errorf("GetUserMessage() = %q", got)
	}
	sys := NewSystemError("disk full", nil)
	if sys.GetUserMessage() == "disk full" {
		t.Error("system errors must not leak their internal message")
	}
}

func TestConstructorsTypes(t *testing.T) {
	tests := []struct {
		err  *AppError
		typ  ErrorType
		code int
	}{
		{NewValidationError("x", map[string]string{"email": "required"}), TypeValidation, CodeInvalidParams},
		{NewInvalidIDError("blog"), TypeValidation, CodeInvalidID},
		{NewNotFoundError("x"), TypeNotFound, CodeNotFound},
		{NewDuplicateError("x", nil), TypeDuplicate, CodeAlreadyExists},
		{NewConflictError("x"), TypeConflict, CodeConflict},
		{NewAuthError(CodeBadCredentials, "x"), TypeAuth, CodeBadCredentials},
		{NewPermissionError("x"), TypePermission, CodeForbidden},
		{NewClosedError("x"), TypeClosed, CodeClosed},
		{NewDatabaseError(nil), TypeSystem, CodeDatabase},
	}
	for _, tt := range tests {
		if tt.err.Type != tt.typ {
			t.Errorf("%v: Type = %v, want %v", tt.err, tt.err.Type, tt.typ)
		}
		if tt.err.Code != tt.code {
			t.Errorf("%v: Code = %d, want %d", tt.err, tt.err.Code, tt.code)
		}
	}
}

func TestAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("submit: %w", NewNotFoundError("Form not found"))
	appErr, ok := As(wrapped)
	if !ok {
		t.Fatal("As() should find the AppError through fmt.Errorf wrapping")
	}
	if appErr.Code != CodeNotFound {
		t.Errorf("Code = %d", appErr.Code)
	}
	if !IsType(wrapped, TypeNotFound) {
		t.Error("IsType() = false")
	}
	if IsType(errors.New("plain"), TypeNotFound) {
		t.Error("plain errors carry no type")
	}
}
