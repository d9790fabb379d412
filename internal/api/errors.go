package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized is matched by errors.Is for any 401 response.
var ErrUnauthorized = errors.New("unauthorized")

// HTTPError is returned when the backend answers with a non-2xx status, or
// with a 2xx envelope whose success flag is false.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Unwrap exposes ErrUnauthorized for 401 responses.
func (e *HTTPError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// DecodeError is returned when a response body cannot be parsed.
type DecodeError struct {
	Method string
	Path   string
	Body   string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response from %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ErrorKind classifies a failed request.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindHTTP
	KindDecode
	KindNetwork
)

// Classify reports which of the three failure classes err belongs to.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return KindHTTP
	}
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return KindDecode
	}
	return KindNetwork
}

// IsAuthError reports whether err (or any error in its chain) is a 401.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

// UserMessage returns the text shown to a user for a failed mutation.
func UserMessage(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	switch Classify(err) {
	case KindHTTP:
		return "The server rejected the request."
	case KindDecode:
		return "The server sent a response that could not be read."
	case KindNetwork:
		return "Could not reach the server."
	default:
		return ""
	}
}
