package apiclient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

const (
	msgUnauthorized = "Authentication required. Please log in again."
	msgForbidden    = "You do not have permission to perform this action."
	msgNotFound     = "The requested resource was not found."
	msgServer       = "A server error occurred. Please try again later."
	msgNetwork      = "Network error. Please check your connection and try again."
	msgUnexpected   = "An unexpected error occurred. Please try again."
)

// ResponseError is returned when the API answered with a status >= 400.
type ResponseError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s %s: request failed with status code %d", e.Method, e.Path, e.StatusCode)
}

// BodyMessage returns the body's "error" field, or its "message" field, or "".
func (e *ResponseError) BodyMessage() string {
	if len(e.Body) == 0 || !gjson.ValidBytes(e.Body) {
		return ""
	}
	res := gjson.GetManyBytes(e.Body, "error", "message")
	for _, r := range res {
		if r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}
	return ""
}

// NetworkError is returned when no response was received at all.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Message maps err to the text shown to the user.
func Message(err error) string {
	if err == nil {
		return msgUnexpected
	}

	var re *ResponseError
	if errors.As(err, &re) {
		switch {
		case re.StatusCode == http.StatusUnauthorized:
			return msgUnauthorized
		case re.StatusCode == http.StatusForbidden:
			return msgForbidden
		case re.StatusCode == http.StatusNotFound:
			return msgNotFound
		case re.StatusCode >= 500:
			return msgServer
		}
		if m := re.BodyMessage(); m != "" {
			return m
		}
	}

	if IsNetworkError(err) {
		return msgNetwork
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return msgUnexpected
}

// IsNetworkError reports whether err is a transport failure with no response.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// StatusCode returns the HTTP status carried by err, if any.
func StatusCode(err error) (int, bool) {
	var re *ResponseError
	if errors.As(err, &re) {
		return re.StatusCode, true
	}
	return 0, false
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	code, ok := StatusCode(err)
	return ok && code == http.StatusUnauthorized
}
