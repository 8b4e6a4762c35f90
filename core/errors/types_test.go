package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestNotFoundError_Error(t *testing.T) {
	err := &NotFoundError{
		Resource: "element",
		ID:       "123",
	}

	expected := "element not found: 123"
	if err.Error() != expected {
		t.Errorf("NotFoundError.Error() = %v, want %v", err.Error(), expected)
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Field:   "selector",
		Message: "unsupported form \"div > span\"",
	}

	expected := `validation error on field 'selector': unsupported form "div > span"`
	if err.Error() != expected {
		t.Errorf("ValidationError.Error() = %v, want %v", err.Error(), expected)
	}
}

func TestExternalAPIError_Error(t *testing.T) {
	err := &ExternalAPIError{
		StatusCode: 503,
		Message:    "service unavailable",
		API:        "gemini",
	}

	expected := "external API error from gemini: 503 - service unavailable"
	if err.Error() != expected {
		t.Errorf("ExternalAPIError.Error() = %v, want %v", err.Error(), expected)
	}
}

func TestIsNotFound_True(t *testing.T) {
	err := &NotFoundError{
		Resource: "selector",
		ID:       "#hero",
	}

	if !IsNotFound(err) {
		t.Error("IsNotFound should return true for NotFoundError")
	}
}

func TestIsNotFound_False(t *testing.T) {
	err := errors.New("some other error")

	if IsNotFound(err) {
		t.Error("IsNotFound should return false for non-NotFoundError")
	}
}

func TestIsNotFound_WrappedError(t *testing.T) {
	notFound := &NotFoundError{
		Resource: "element",
		ID:       "123",
	}
	wrapped := fmt.Errorf("remove_element: %w", notFound)

	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should return true for wrapped NotFoundError")
	}
}

func TestIsValidation_True(t *testing.T) {
	err := &ValidationError{
		Field:   "selector",
		Message: "empty selector",
	}

	if !IsValidation(err) {
		t.Error("IsValidation should return true for ValidationError")
	}
}

func TestIsValidation_False(t *testing.T) {
	err := errors.New("some other error")

	if IsValidation(err) {
		t.Error("IsValidation should return false for non-ValidationError")
	}
}

func TestIsExternalAPI_True(t *testing.T) {
	err := &ExternalAPIError{
		StatusCode: 500,
		Message:    "internal server error",
		API:        "gemini",
	}

	if !IsExternalAPI(err) {
		t.Error("IsExternalAPI should return true for ExternalAPIError")
	}
}

func TestIsExternalAPI_False(t *testing.T) {
	err := errors.New("some other error")

	if IsExternalAPI(err) {
		t.Error("IsExternalAPI should return false for non-ExternalAPIError")
	}
}

func TestWrapError_PreservesOriginalError(t *testing.T) {
	originalErr := &NotFoundError{Resource: "element", ID: "abc"}
	wrappedErr := WrapError(originalErr, "failed to apply patch")

	if wrappedErr == nil {
		t.Fatal("WrapError should not return nil for non-nil error")
	}

	// Check error message contains both context and original error
	expectedMsg := "failed to apply patch: element not found: abc"
	if wrappedErr.Error() != expectedMsg {
		t.Errorf("WrapError message = %v, want %v", wrappedErr.Error(), expectedMsg)
	}

	// Should still be identifiable as NotFoundError
	if !IsNotFound(wrappedErr) {
		t.Error("Wrapped error should still be identifiable as NotFoundError")
	}
}

func TestWrapError_AddsContextMessage(t *testing.T) {
	originalErr := errors.New("model timeout")
	wrappedErr := WrapError(originalErr, "layout phase failed")

	expected := "layout phase failed: model timeout"
	if wrappedErr.Error() != expected {
		t.Errorf("WrapError = %v, want %v", wrappedErr.Error(), expected)
	}
}

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"typed rate limit", &RateLimitedError{API: "gemini"}, true},
		{"wrapped rate limit", fmt.Errorf("phase 1: %w", &RateLimitedError{API: "gemini"}), true},
		{"external 429", &ExternalAPIError{StatusCode: 429, API: "gemini"}, true},
		{"external 500", &ExternalAPIError{StatusCode: 500, API: "gemini"}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRateLimited(tt.err); got != tt.want {
				t.Errorf("IsRateLimited() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRateLimitedError_Error(t *testing.T) {
	err := &RateLimitedError{API: "gemini", RetryAfter: 2 * time.Second}

	expected := "rate limited by gemini (retry after 2s)"
	if err.Error() != expected {
		t.Errorf("RateLimitedError.Error() = %v, want %v", err.Error(), expected)
	}
}

func TestIsBudgetExceeded(t *testing.T) {
	err := WrapError(&BudgetExceededError{Reason: "api calls"}, "phase 3")

	if !IsBudgetExceeded(err) {
		t.Error("IsBudgetExceeded should return true for wrapped BudgetExceededError")
	}
	if IsBudgetExceeded(errors.New("other")) {
		t.Error("IsBudgetExceeded should return false for other errors")
	}
}

func TestWrapError_HandlesNilError(t *testing.T) {
	wrappedErr := WrapError(nil, "this should not happen")

	if wrappedErr != nil {
		t.Error("WrapError should return nil when wrapping nil error")
	}
}