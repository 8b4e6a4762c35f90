// ABOUTME: Custom error types for the core business logic
// ABOUTME: Classifies model-call failures so the pipeline can pick retry or fallback

package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ExternalAPIError represents an error from an external API
type ExternalAPIError struct {
	StatusCode int
	Message    string
	API        string
}

// Error implements the error interface
func (e *ExternalAPIError) Error() string {
	return fmt.Sprintf("external API error from %s: %d - %s", e.API, e.StatusCode, e.Message)
}

// RateLimitedError is returned when the model API refuses a call for quota reasons
type RateLimitedError struct {
	API        string
	RetryAfter time.Duration
}

// Error implements the error interface
func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited by %s (retry after %s)", e.API, e.RetryAfter)
	}
	return fmt.Sprintf("rate limited by %s", e.API)
}

// BudgetExceededError is returned when a run has no API calls or wall-clock time left
type BudgetExceededError struct {
	Reason string
}

// Error implements the error interface
func (e *BudgetExceededError) Error() string {
	return "budget exceeded: " + e.Reason
}

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsExternalAPI checks if an error is an ExternalAPIError
func IsExternalAPI(err error) bool {
	var apiErr *ExternalAPIError
	return errors.As(err, &apiErr)
}

// IsRateLimited reports whether err is a rate-limit refusal, either typed
// or an external API error carrying HTTP 429
func IsRateLimited(err error) bool {
	var rlErr *RateLimitedError
	if errors.As(err, &rlErr) {
		return true
	}
	var apiErr *ExternalAPIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

// IsBudgetExceeded checks if an error is a BudgetExceededError
func IsBudgetExceeded(err error) bool {
	var budgetErr *BudgetExceededError
	return errors.As(err, &budgetErr)
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
