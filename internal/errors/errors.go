package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Authentication errors (AUTH-001 to AUTH-099)
	ErrCodeNotLoggedIn      ErrorCode = "AUTH-001"
	ErrCodeLoginFailed      ErrorCode = "AUTH-002"
	ErrCodeLoginMalformed   ErrorCode = "AUTH-003"
	ErrCodeSessionRejected  ErrorCode = "AUTH-004"
	ErrCodeCredentialsInput ErrorCode = "AUTH-005"

	// API errors (API-001 to API-099)
	ErrCodeServerUnreachable ErrorCode = "API-001"
	ErrCodeServerRejected    ErrorCode = "API-002"
	ErrCodeResponseMalformed ErrorCode = "API-003"
	ErrCodeNotInContract     ErrorCode = "API-004"
	ErrCodeUnsupported       ErrorCode = "API-005"

	// Session store errors (SESSION-001 to SESSION-099)
	ErrCodeStoreUnavailable ErrorCode = "SESSION-001"
	ErrCodeStoreCorrupt     ErrorCode = "SESSION-002"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid  ErrorCode = "CONFIG-001"
	ErrCodeConfigRead     ErrorCode = "CONFIG-002"
	ErrCodeConfigWrite    ErrorCode = "CONFIG-003"
	ErrCodeConfigKeyUnset ErrorCode = "CONFIG-004"

	// Input errors (INPUT-001 to INPUT-099)
	ErrCodeInputMissing ErrorCode = "INPUT-001"
	ErrCodeInputInvalid ErrorCode = "INPUT-002"
)

const docsBase = "https://github.com/felixgeelhaar/skilladmin#"

// AdminError represents an enhanced error with code, suggestions, and documentation
type AdminError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *AdminError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *AdminError) Unwrap() error {
	return e.Cause
}

// Category returns the code family, e.g. "AUTH" for "AUTH-001".
func (e *AdminError) Category() string {
	code := string(e.Code)
	if i := strings.IndexByte(code, '-'); i > 0 {
		return code[:i]
	}
	return code
}

// New creates a new AdminError
func New(code ErrorCode, message string) *AdminError {
	return &AdminError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AdminError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *AdminError {
	return &AdminError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *AdminError) WithSuggestion(suggestion string) *AdminError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *AdminError) WithSuggestions(suggestions ...string) *AdminError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *AdminError) WithDocs(url string) *AdminError {
	e.DocsURL = url
	return e
}

// Common error constructors for frequently used errors

// NewNotLoggedInError is returned when a command needs a session and none is stored.
func NewNotLoggedInError() *AdminError {
	return New(ErrCodeNotLoggedIn, "not logged in").
		WithSuggestion("Run 'skilladmin login' to start a session").
		WithSuggestion("Check session.backend in your config if you logged in with a different store").
		WithDocs(docsBase + "authentication")
}

// NewLoginFailedError wraps a rejected login. The server message is kept when present.
func NewLoginFailedError(message string, cause error) *AdminError {
	if message == "" {
		message = "Invalid email or password"
	}
	return Wrap(ErrCodeLoginFailed, message, cause).
		WithSuggestion("Verify the email and password of the admin account").
		WithDocs(docsBase + "authentication")
}

// NewLoginMalformedError is returned when the login response lacks a token or admin profile.
func NewLoginMalformedError(cause error) *AdminError {
	return Wrap(ErrCodeLoginMalformed, "Login failed: Invalid response from server.", cause).
		WithSuggestion("Check that --api-url points at the admin API, not the web app")
}

// NewSessionRejectedError is returned after the server answered 401/403 and the session was dropped.
func NewSessionRejectedError(cause error) *AdminError {
	return Wrap(ErrCodeSessionRejected, "the server rejected the stored session", cause).
		WithSuggestion("Run 'skilladmin login' again").
		WithDocs(docsBase + "authentication")
}

// NewServerUnreachableError wraps a transport failure.
func NewServerUnreachableError(url string, cause error) *AdminError {
	return Wrap(ErrCodeServerUnreachable, fmt.Sprintf("cannot reach admin API at %s", url), cause).
		WithSuggestion("Check your network connection").
		WithSuggestion("Verify api.base_url with 'skilladmin config get api.base_url'").
		WithDocs(docsBase + "configuration")
}

// NewServerRejectedError wraps a non-2xx response.
func NewServerRejectedError(operation string, status int, message string, cause error) *AdminError {
	msg := fmt.Sprintf("%s failed (status %d)", operation, status)
	if message != "" {
		msg = fmt.Sprintf("%s failed (status %d): %s", operation, status, message)
	}
	return Wrap(ErrCodeServerRejected, msg, cause)
}

// NewStoreUnavailableError wraps a session backend failure.
func NewStoreUnavailableError(backend string, cause error) *AdminError {
	return Wrap(ErrCodeStoreUnavailable, fmt.Sprintf("session store %q is unavailable", backend), cause).
		WithSuggestion("Check session.backend and its connection settings").
		WithSuggestion("Use --ephemeral to run with an in-memory session").
		WithDocs(docsBase + "session-backends")
}

// NewConfigInvalidError reports a configuration validation failure.
func NewConfigInvalidError(details string) *AdminError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", details)).
		WithSuggestion("Run 'skilladmin config view' to inspect the effective configuration").
		WithDocs(docsBase + "configuration")
}

// NewInputMissingError reports a required flag or prompt left empty.
func NewInputMissingError(field string) *AdminError {
	return New(ErrCodeInputMissing, fmt.Sprintf("missing argument: %s", field)).
		WithSuggestion(fmt.Sprintf("Pass --%s or run interactively to be prompted", field))
}
