package backend

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
)

// Error is returned for every failed upstream call. StatusCode is zero when
// the upstream could not be reached.
type Error struct {
	StatusCode  int
	Message     string
	FieldErrors map[string]string
	Method      string
	Path        string

	cause error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("upstream %s %s: %s", e.Method, e.Path, e.Message)
	}
	if e.Message == "" {
		return fmt.Sprintf("upstream %s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("upstream %s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// errorBody is the error payload produced by the upstream.
type errorBody struct {
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Errors  map[string]string `json:"errors"`
}

func decodeError(method, path string, resp *http.Response) *Error {
	e := &Error{StatusCode: resp.StatusCode, Method: method, Path: path}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return e
	}
	var body errorBody
	if err := sonic.Unmarshal(data, &body); err != nil {
		e.Message = string(data)
		return e
	}
	e.Message = body.Message
	if e.Message == "" {
		e.Message = body.Error
	}
	e.FieldErrors = body.Errors
	return e
}

// StatusCode returns the upstream HTTP status carried by err, or zero.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether the upstream rejected the session token.
func IsUnauthorized(err error) bool { return StatusCode(err) == http.StatusUnauthorized }

// IsForbidden reports whether the upstream denied the action.
func IsForbidden(err error) bool { return StatusCode(err) == http.StatusForbidden }

// IsNotFound reports whether the upstream has no such resource.
func IsNotFound(err error) bool { return StatusCode(err) == http.StatusNotFound }
