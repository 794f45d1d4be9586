package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// AuthenticationError reports a missing, placeholder or rejected credential
type AuthenticationError struct {
	Provider string
	Err      error
}

func (e *AuthenticationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: authentication failed", e.Provider)
	}
	return fmt.Sprintf("%s: authentication failed: %v", e.Provider, e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// RequestError reports a network failure, a timeout or a non-success status.
// StatusCode is zero when no HTTP response was received.
type RequestError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: request failed with status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: request failed: %v", e.Provider, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Transient reports whether the request may succeed when repeated
func (e *RequestError) Transient() bool {
	return e.StatusCode == 0 ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= http.StatusInternalServerError
}

// ParseError reports a response that does not contain the expected fields
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse response: %s", e.Reason)
}

// UnsupportedLanguageError reports a language missing from the language table
// or lacking what the caller needs, such as a voice
type UnsupportedLanguageError struct {
	Language string
	Detail   string
}

func (e *UnsupportedLanguageError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("unsupported language %q: %s", e.Language, e.Detail)
	}
	return fmt.Sprintf("unsupported language %q", e.Language)
}

// FromStatus maps an HTTP status code to the matching error kind
func FromStatus(provider string, status int, err error) error {
	if err == nil {
		err = errors.New(http.StatusText(status))
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthenticationError{Provider: provider, Err: err}
	default:
		return &RequestError{Provider: provider, StatusCode: status, Err: err}
	}
}

// IsAuth reports whether err is an AuthenticationError
func IsAuth(err error) bool {
	var target *AuthenticationError
	return errors.As(err, &target)
}

// IsRequest reports whether err is a RequestError
func IsRequest(err error) bool {
	var target *RequestError
	return errors.As(err, &target)
}

// IsParse reports whether err is a ParseError
func IsParse(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}

// IsUnsupportedLanguage reports whether err is an UnsupportedLanguageError
func IsUnsupportedLanguage(err error) bool {
	var target *UnsupportedLanguageError
	return errors.As(err, &target)
}

// IsTransient reports whether err is a RequestError worth one more attempt
func IsTransient(err error) bool {
	var target *RequestError
	if errors.As(err, &target) {
		return target.Transient()
	}
	return false
}
