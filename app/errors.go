package app

import (
	"errors"
	"fmt"
)

var (
	// ErrTokenEmpty is returned when an operation requires a token and none
	// is set, or when SetToken is called with an empty string.
	ErrTokenEmpty = errors.New("token is empty")
	// ErrUnauthorized maps HTTP 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound maps HTTP 404.
	ErrNotFound = errors.New("not found")
	// ErrRateLimit maps HTTP 403/429, header-confirmed where the provider
	// exposes a remaining-quota header.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrNotSupported is returned by operations a provider does not expose.
	ErrNotSupported = errors.New("operation not supported by provider")
)

// RequestError wraps a transport-level failure (DNS, connection, TLS).
type RequestError struct {
	Op  string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: request error: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// URLParseError wraps a malformed URL.
type URLParseError struct {
	Raw string
	Err error
}

func (e *URLParseError) Error() string {
	return fmt.Sprintf("parsing url %q: %v", e.Raw, e.Err)
}

func (e *URLParseError) Unwrap() error { return e.Err }

// MalformedResponseError reports a provider payload missing a field the
// canonical type requires, naming the field and the operation it came from.
type MalformedResponseError struct {
	Op    string
	Field string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: missing field %q", e.Op, e.Field)
}

// IsMalformedResponse checks if err was caused by a payload missing a
// required field.
func IsMalformedResponse(err error) bool {
	var mr *MalformedResponseError
	return errors.As(err, &mr)
}
