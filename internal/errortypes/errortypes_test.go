package errortypes

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppErrorMessage(t *testing.T) {
	base := errors.New("base error")

	err := ValidationError(base, "validation failed")
	expected := "validation failed: base error"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	// Without a message the underlying error text stands alone.
	bare := &AppError{Err: base, Type: ErrorTypeQuery}
	if bare.Error() != "base error" {
		t.Errorf("Expected %q, got %q", "base error", bare.Error())
	}
}

func TestUnwrap(t *testing.T) {
	base := errors.New("base error")
	err := QueryError(base, "statement failed")

	if !errors.Is(err, base) {
		t.Error("errors.Is should find the wrapped base error")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As should find the AppError through wrapping")
	}
	if appErr.Type != ErrorTypeQuery {
		t.Errorf("Expected type %s, got %s", ErrorTypeQuery, appErr.Type)
	}
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"validation", ValidationError(errors.New("x"), "m"), ErrorTypeValidation},
		{"not_found", NotFoundError(errors.New("x"), "m"), ErrorTypeNotFound},
		{"query", QueryError(errors.New("x"), "m"), ErrorTypeQuery},
		{"timeout", TimeoutError(errors.New("x"), "m"), ErrorTypeTimeout},
		{"config", ConfigError(errors.New("x"), "m"), ErrorTypeConfig},
		{"internal", InternalError(errors.New("x"), "m"), ErrorTypeInternal},
		{"plain error", errors.New("plain"), ErrorTypeInternal},
		{"wrapped app error", fmt.Errorf("outer: %w", TimeoutError(errors.New("x"), "m")), ErrorTypeTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TypeOf(tt.err); got != tt.want {
				t.Errorf("TypeOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPredicates(t *testing.T) {
	if !IsValidationError(ValidationError(errors.New("x"), "m")) {
		t.Error("IsValidationError failed for validation error")
	}
	if !IsNotFoundError(NotFoundError(errors.New("x"), "m")) {
		t.Error("IsNotFoundError failed for not-found error")
	}
	if !IsTimeoutError(TimeoutError(errors.New("x"), "m")) {
		t.Error("IsTimeoutError failed for timeout error")
	}
	if IsQueryError(ValidationError(errors.New("x"), "m")) {
		t.Error("IsQueryError should be false for validation error")
	}
}

func TestWithField(t *testing.T) {
	err := QueryError(errors.New("x"), "statement failed").
		WithField("sql", "SELECT 1").
		WithFields(map[string]interface{}{"table": "clickstream"})

	if err.Fields["sql"] != "SELECT 1" {
		t.Errorf("Expected field sql=SELECT 1, got %v", err.Fields["sql"])
	}
	if err.Fields["table"] != "clickstream" {
		t.Errorf("Expected field table=clickstream, got %v", err.Fields["table"])
	}
}

func TestNilUnderlyingError(t *testing.T) {
	err := ConfigError(nil, "missing setting")
	if err.Err == nil {
		t.Fatal("Expected a placeholder underlying error")
	}
	if err.Error() == "" {
		t.Error("Expected non-empty error message")
	}
}

func TestStackCapture(t *testing.T) {
	err := InternalError(errors.New("x"), "m")
	if err.StackInfo == "" {
		t.Error("Expected captured stack info")
	}
}
