package ux

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/skilladmin/internal/api"
	"github.com/felixgeelhaar/skilladmin/internal/errors"
	"github.com/felixgeelhaar/skilladmin/internal/session"
)

// ErrorWithSuggestion wraps an error with helpful recovery suggestions
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\n💡 Suggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap provides access to the underlying error
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// EnhanceError adds a recovery hint to errors a person can act on.
// AdminErrors already carry suggestions and are returned unchanged.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}

	var adminErr *errors.AdminError
	if stderrors.As(err, &adminErr) && len(adminErr.Suggestions) > 0 {
		return err
	}

	switch {
	case stderrors.Is(err, session.ErrNoSession):
		return NewErrorWithSuggestion(err, "Run 'skilladmin login' to start a session")
	case api.IsUnauthorized(err):
		return NewErrorWithSuggestion(err, "Your session was rejected; run 'skilladmin login' again")
	case stderrors.Is(err, session.ErrCorrupt):
		return NewErrorWithSuggestion(err, "Run 'skilladmin logout' to discard the stored session, then log in again")
	case stderrors.Is(err, api.ErrNotInContract):
		return NewErrorWithSuggestion(err, "Disable api.strict_contract or run 'skilladmin contract' to list the supported endpoints")
	}

	errMsg := err.Error()

	// Network errors
	if strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no route to host") {
		return NewErrorWithSuggestion(err,
			"Check that the admin API is running and api.base_url is correct ('skilladmin config get api.base_url')")
	}
	if strings.Contains(errMsg, "no such host") {
		return NewErrorWithSuggestion(err,
			"Check the host name in api.base_url and your DNS settings")
	}
	if strings.Contains(errMsg, "deadline exceeded") || strings.Contains(errMsg, "Client.Timeout") {
		return NewErrorWithSuggestion(err,
			"The admin API did not answer in time; raise api.timeout or try again")
	}

	// Permission errors
	if strings.Contains(errMsg, "permission denied") {
		return NewErrorWithSuggestion(err,
			"Check permissions on ~/.skilladmin or choose another session.path")
	}

	return err
}

// FormatError provides consistent error formatting with context
func FormatError(err error, context string) error {
	if err == nil {
		return nil
	}

	enhanced := EnhanceError(err)
	if context != "" {
		return fmt.Errorf("%s: %w", context, enhanced)
	}
	return enhanced
}
