package apiclient

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "An unexpected error occurred. Please try again."},
		{"401", &ResponseError{StatusCode: 401, Body: []byte(`{"error":"ignored"}`)}, "Authentication required. Please log in again."},
		{"403", &ResponseError{StatusCode: 403}, "You do not have permission to perform this action."},
		{"404", &ResponseError{StatusCode: 404}, "The requested resource was not found."},
		{"500 no body", &ResponseError{StatusCode: 500}, "A server error occurred. Please try again later."},
		{"503 with body", &ResponseError{StatusCode: 503, Body: []byte(`{"error":"down"}`)}, "A server error occurred. Please try again later."},
		{"400 error field", &ResponseError{StatusCode: 400, Body: []byte(`{"error":"Custom error message"}`)}, "Custom error message"},
		{"422 message field", &ResponseError{StatusCode: 422, Body: []byte(`{"message":"Bad tag"}`)}, "Bad tag"},
		{"error wins over message", &ResponseError{StatusCode: 400, Body: []byte(`{"message":"m","error":"e"}`)}, "e"},
		{"400 no body", &ResponseError{Method: "GET", Path: "/x", StatusCode: 400}, "GET /x: request failed with status code 400"},
		{"wrapped", fmt.Errorf("loading: %w", &ResponseError{StatusCode: 404}), "The requested resource was not found."},
		{"network", &NetworkError{Method: "GET", URL: "http://x", Err: errors.New("refused")}, "Network error. Please check your connection and try again."},
		{"plain", errors.New("boom"), "boom"},
		{"empty", errors.New(""), "An unexpected error occurred. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.err))
		})
	}
}

func TestStatusCode(t *testing.T) {
	code, ok := StatusCode(fmt.Errorf("wrap: %w", &ResponseError{StatusCode: 418}))
	assert.True(t, ok)
	assert.Equal(t, 418, code)

	_, ok = StatusCode(errors.New("x"))
	assert.False(t, ok)
}
