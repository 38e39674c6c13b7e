package tts

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrNoAudioContent is returned when the backend responds without an
	// audio payload.
	ErrNoAudioContent = errors.New("tts: response contains no audio content")

	// ErrAuthCooldown is returned while synthesis is paused after repeated
	// authentication failures.
	ErrAuthCooldown = errors.New("tts: synthesis paused after repeated auth failures")

	// ErrNoBaseURL is returned when the client is built without a backend URL.
	ErrNoBaseURL = errors.New("tts: base URL required")
)

// APIError represents an error response from the synthesis backend.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the error message from the backend, if any.
	Message string

	// Family identifies which model family was addressed.
	Family Family
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("tts [%s]: backend error %d: %s", e.Family, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("tts [%s]: backend error %d", e.Family, e.StatusCode)
}

// IsRateLimited returns true if this is a rate limit error (HTTP 429).
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsUnauthorized returns true if this is an authentication error (HTTP 401).
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401
}

// IsServerError returns true if this is a server-side error (HTTP 5xx).
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// IsRateLimited reports whether err is a rate-limit response.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsRateLimited()
}

// IsAuthFailure reports whether err is an authentication failure or the
// cooldown it triggers.
func IsAuthFailure(err error) bool {
	if errors.Is(err, ErrAuthCooldown) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsUnauthorized()
}

// WrapError adds backend context to a transport-level error.
func WrapError(family Family, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("tts [%s]: %w", family, err)
}
