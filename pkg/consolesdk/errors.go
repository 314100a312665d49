package consolesdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized matches any 401 response. By the time a caller sees it
// the session has already been destroyed and the UI sent to login.
var ErrUnauthorized = errors.New("consolesdk: unauthorized")

// ErrEmptyToken is returned when login or renewal succeed without a token.
var ErrEmptyToken = errors.New("consolesdk: response carried no token")

// APIError is a non-2xx response from the backend.
type APIError struct {
	// StatusCode is the HTTP status of the response
	StatusCode int

	// Message is the server's human-readable message, if it sent one
	Message string

	// generic is set when Message is only the status text
	generic bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// MessageOr returns the server message or fallback when none was sent.
// Pages use it to show e.g. "Login fehlgeschlagen".
func MessageOr(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" && !apiErr.generic {
		return apiErr.Message
	}
	return fallback
}

// parseErrorResponse turns a non-2xx response into an *APIError. It returns
// nil for 2xx responses.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		if msg := strings.TrimSpace(errResp.Message); msg != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: msg}
		}
		if msg := strings.TrimSpace(errResp.Error); msg != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: msg}
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
		generic:    true,
	}
}
