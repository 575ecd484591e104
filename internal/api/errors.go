package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNotInContract is returned in strict mode for a request whose
	// method and route are not part of the pinned API contract.
	ErrNotInContract = errors.New("request is not part of the API contract")

	// ErrUnsupported is returned for operations the API has no endpoint for.
	ErrUnsupported = errors.New("operation not supported by the admin API")

	// ErrInvalidPage is returned for a page below 0 or a size outside 1..1000.
	ErrInvalidPage = errors.New("invalid page request")

	// ErrInvalidInput is returned when a create/update payload is missing
	// a field the server requires.
	ErrInvalidInput = errors.New("invalid input")
)

// TransportError is a request that never produced an HTTP response.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx response. Message carries the server's own
// explanation when the body had one.
type StatusError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// DecodeError is a 2xx response whose body could not be decoded.
type DecodeError struct {
	Err  error
	Body []byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// serverMessage extracts msg, message or error (in that order) from a body.
func serverMessage(body []byte) string {
	var fields struct {
		Msg     string          `json:"msg"`
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	if fields.Msg != "" {
		return fields.Msg
	}
	if fields.Message != "" {
		return fields.Message
	}
	var s string
	if json.Unmarshal(fields.Error, &s) == nil {
		return s
	}
	return ""
}

// IsUnauthorized reports whether err is a 401 or 403 response.
func IsUnauthorized(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden
}

// Message returns the text to show a person for err: the server's message
// when there is one, otherwise fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var se *StatusError
	if errors.As(err, &se) && strings.TrimSpace(se.Message) != "" {
		return se.Message
	}
	if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInvalidPage) || errors.Is(err, ErrUnsupported) {
		return err.Error()
	}
	return fallback
}
