package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrTemporary        = errors.New("temporary failure")
	ErrDecode           = errors.New("malformed backend response")
	ErrUnsupported      = errors.New("unsupported operation")
)

// DefaultErrorMessage is used when a failed response carries no readable envelope.
const DefaultErrorMessage = "Request failed"

// HTTPError is the single failure shape surfaced by the backend client.
type HTTPError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "backend error"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = DefaultErrorMessage
	}
	if e.StatusCode == 0 {
		return msg
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, msg)
}

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// MessageOf returns the human readable message of the first HTTPError in the chain.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if msg := strings.TrimSpace(httpErr.Message); msg != "" {
			return msg
		}
		return DefaultErrorMessage
	}
	return err.Error()
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
