package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var ErrTransport = errors.New("api unreachable")

// StatusError is returned for any API response with a status of 400 or above.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api responded %d: %s", e.Status, e.Message)
}

// newStatusError extracts the server message from the body. The API puts it in
// "detail"; "error" and "message" are accepted as fallbacks.
func newStatusError(status int, body []byte) *StatusError {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"detail", "error", "message"} {
			if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
				return &StatusError{Status: status, Message: s}
			}
		}
	}

	return &StatusError{Status: status, Message: http.StatusText(status)}
}

// StatusOf returns the HTTP status carried by err, or 0 when there is none.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// MessageOf returns the server supplied message, or fallback when err carries none.
func MessageOf(err error, fallback string) string {
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return fallback
}

func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

func IsUnauthorized(err error) bool {
	s := StatusOf(err)
	return s == http.StatusUnauthorized || s == http.StatusForbidden
}

func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}
