package client

import (
	"errors"
	"fmt"
)

// ErrRateLimited is reported when the local request budget is exhausted.
var ErrRateLimited = errors.New("rate limited")

// APIError represents an upstream API failure with classification context.
type APIError struct {
	StatusCode int
	Class      ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("ctgov %s error: %s", e.Class, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("ctgov %s error (status %d): %s: %v",
			e.Class, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("ctgov %s error (status %d): %s",
		e.Class, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	if e.Class == ErrorClassRateLimit && e.Err == nil {
		return ErrRateLimited
	}
	return e.Err
}
