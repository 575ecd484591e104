package exitcode

import (
	"context"
	stderrors "errors"
	"net"
	"os"
	"strings"

	"github.com/felixgeelhaar/skilladmin/internal/api"
	"github.com/felixgeelhaar/skilladmin/internal/errors"
	"github.com/felixgeelhaar/skilladmin/internal/guard"
	"github.com/felixgeelhaar/skilladmin/internal/session"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// AuthError indicates a missing, rejected or malformed session
	AuthError = 5

	// NetworkError indicates the admin API could not be reached
	NetworkError = 6

	// Interrupted indicates the command was cancelled by SIGINT/SIGTERM
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	Exit(DetermineExitCode(err))
}

// DetermineExitCode maps an error to an exit code. Typed errors anywhere in
// the chain win; message matching is the fallback for errors from cobra
// and other libraries.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	var adminErr *errors.AdminError
	if stderrors.As(err, &adminErr) {
		if code, ok := fromAdminError(adminErr); ok {
			return code
		}
	}

	switch {
	case stderrors.Is(err, session.ErrNoSession),
		stderrors.Is(err, guard.ErrMalformedLogin),
		api.IsUnauthorized(err):
		return AuthError
	case stderrors.Is(err, api.ErrInvalidInput),
		stderrors.Is(err, api.ErrInvalidPage),
		stderrors.Is(err, session.ErrUnknownBackend):
		return UsageError
	}

	var transportErr *api.TransportError
	if stderrors.As(err, &transportErr) || stderrors.Is(err, context.DeadlineExceeded) {
		return NetworkError
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return NetworkError
	}

	return fromMessage(err.Error())
}

func fromAdminError(e *errors.AdminError) (int, bool) {
	switch e.Code {
	case errors.ErrCodeServerUnreachable:
		return NetworkError, true
	case errors.ErrCodeConfigKeyUnset:
		return UsageError, true
	}
	switch e.Category() {
	case "AUTH":
		return AuthError, true
	case "INPUT":
		return UsageError, true
	}
	// Other codes may wrap something more specific.
	return 0, false
}

func fromMessage(msg string) int {
	msg = strings.ToLower(msg)

	// Authentication errors
	if strings.Contains(msg, "unauthorized") || strings.Contains(msg, "not logged in") {
		return AuthError
	}

	// Network errors
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") {
		return NetworkError
	}
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "unreachable") {
		return NetworkError
	}

	// Usage errors
	if strings.Contains(msg, "invalid flag") || strings.Contains(msg, "unknown command") || strings.Contains(msg, "unknown flag") {
		return UsageError
	}
	if strings.Contains(msg, "required flag") || strings.Contains(msg, "missing argument") {
		return UsageError
	}
	if strings.Contains(msg, "accepts") && strings.Contains(msg, "arg(s)") {
		return UsageError
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case AuthError:
		return "Authentication error"
	case NetworkError:
		return "Network error"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
