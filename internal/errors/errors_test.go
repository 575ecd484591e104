package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeNotLoggedIn, "test error message")

	if err.Code != ErrCodeNotLoggedIn {
		t.Errorf("expected code %s, got %s", ErrCodeNotLoggedIn, err.Code)
	}

	if err.Message != "test error message" {
		t.Errorf("expected message 'test error message', got '%s'", err.Message)
	}

	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := Wrap(ErrCodeStoreUnavailable, "redis down", cause)

	if err.Code != ErrCodeStoreUnavailable {
		t.Errorf("expected code %s, got %s", ErrCodeStoreUnavailable, err.Code)
	}

	if err.Cause != cause {
		t.Errorf("expected cause to be set")
	}

	if !errors.Is(err, cause) {
		t.Errorf("Wrap should support errors.Is")
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *AdminError
		wantCode string
		wantMsg  string
	}{
		{
			name:     "simple error",
			err:      New(ErrCodeConfigInvalid, "bad config"),
			wantCode: "CONFIG-001",
			wantMsg:  "bad config",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeServerUnreachable, "dial failed", fmt.Errorf("connection refused")),
			wantCode: "API-001",
			wantMsg:  "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()

			if !strings.Contains(errStr, tt.wantCode) {
				t.Errorf("error string should contain code %s, got: %s", tt.wantCode, errStr)
			}

			if !strings.Contains(errStr, tt.wantMsg) {
				t.Errorf("error string should contain message '%s', got: %s", tt.wantMsg, errStr)
			}
		})
	}
}

func TestWithSuggestion(t *testing.T) {
	err := New(ErrCodeNotLoggedIn, "not logged in").
		WithSuggestion("Run login")

	if len(err.Suggestions) != 1 {
		t.Errorf("expected 1 suggestion, got %d", len(err.Suggestions))
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "Suggestions:") {
		t.Errorf("error string should contain suggestions section")
	}
	if !strings.Contains(errStr, "Run login") {
		t.Errorf("error string should contain suggestion text")
	}
}

func TestWithDocs(t *testing.T) {
	docsURL := "https://example.com/docs"
	err := New(ErrCodeConfigInvalid, "invalid").WithDocs(docsURL)

	if !strings.Contains(err.Error(), "Documentation: "+docsURL) {
		t.Errorf("error string should contain docs URL, got: %s", err.Error())
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrCodeNotLoggedIn, "AUTH"},
		{ErrCodeServerRejected, "API"},
		{ErrCodeStoreCorrupt, "SESSION"},
		{ErrCodeConfigRead, "CONFIG"},
		{ErrCodeInputMissing, "INPUT"},
	}

	for _, tt := range tests {
		if got := New(tt.code, "x").Category(); got != tt.want {
			t.Errorf("Category(%s) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestNewNotLoggedInError(t *testing.T) {
	err := NewNotLoggedInError()

	if err.Code != ErrCodeNotLoggedIn {
		t.Errorf("expected code %s, got %s", ErrCodeNotLoggedIn, err.Code)
	}
	if !strings.Contains(err.Error(), "skilladmin login") {
		t.Errorf("suggestions should mention the login command")
	}
	if err.DocsURL == "" {
		t.Errorf("expected docs URL to be set")
	}
}

func TestNewLoginFailedError(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"server message kept", "Admin not found", "Admin not found"},
		{"fallback message", "", "Invalid email or password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewLoginFailedError(tt.message, nil)
			if err.Message != tt.want {
				t.Errorf("Message = %q, want %q", err.Message, tt.want)
			}
		})
	}
}

func TestNewServerRejectedError(t *testing.T) {
	err := NewServerRejectedError("delete user", 404, "User not found", nil)

	if !strings.Contains(err.Message, "404") || !strings.Contains(err.Message, "User not found") {
		t.Errorf("unexpected message: %s", err.Message)
	}

	err = NewServerRejectedError("list reels", 500, "", nil)
	if strings.HasSuffix(err.Message, ": ") {
		t.Errorf("message should not end with an empty detail: %q", err.Message)
	}
}

func TestNewInputMissingError(t *testing.T) {
	err := NewInputMissingError("email")

	if !strings.Contains(err.Message, "missing argument") {
		t.Errorf("message should be recognizable as a usage error: %s", err.Message)
	}
	if !strings.Contains(err.Error(), "--email") {
		t.Errorf("suggestion should name the flag")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := NewStoreUnavailableError("redis", cause)

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap should return the cause")
	}

	var adminErr *AdminError
	wrapped := fmt.Errorf("outer: %w", err)
	if !errors.As(wrapped, &adminErr) {
		t.Fatal("errors.As should find the AdminError")
	}
	if adminErr.Code != ErrCodeStoreUnavailable {
		t.Errorf("unexpected code %s", adminErr.Code)
	}
}

func TestErrorCodes(t *testing.T) {
	codes := []ErrorCode{
		ErrCodeNotLoggedIn,
		ErrCodeLoginFailed,
		ErrCodeLoginMalformed,
		ErrCodeSessionRejected,
		ErrCodeCredentialsInput,
		ErrCodeServerUnreachable,
		ErrCodeServerRejected,
		ErrCodeResponseMalformed,
		ErrCodeNotInContract,
		ErrCodeUnsupported,
		ErrCodeStoreUnavailable,
		ErrCodeStoreCorrupt,
		ErrCodeConfigInvalid,
		ErrCodeConfigRead,
		ErrCodeConfigWrite,
		ErrCodeConfigKeyUnset,
		ErrCodeInputMissing,
		ErrCodeInputInvalid,
	}

	for _, code := range codes {
		parts := strings.Split(string(code), "-")
		if len(parts) != 2 {
			t.Errorf("error code %s should have format CATEGORY-NNN", code)
			continue
		}
		if len(parts[1]) != 3 {
			t.Errorf("error code %s should have 3-digit number", code)
		}
	}
}
