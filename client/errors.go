package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Sentinel errors callers can compare against with errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrSessionExpired = errors.New("session expired")
	ErrConflict       = errors.New("conflict")

	// ErrChannelDown is returned when publishing on a realtime channel that is
	// currently disconnected. Publishes are not queued; state reconciles via
	// refetch after reconnect.
	ErrChannelDown = errors.New("realtime channel down")
)

// tokenExpiredMarker is the exact 401 body message the server emits for an
// expired (as opposed to invalid) credential.
const tokenExpiredMarker = "TOKEN_EXPIRED"

// APIError carries the server's error envelope alongside the HTTP status
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s: %s", e.Status, e.Code, e.Message)
}

// Unwrap maps well-known statuses to sentinel errors
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusConflict:
		return ErrConflict
	case http.StatusUnauthorized:
		if e.Message == tokenExpiredMarker {
			return ErrSessionExpired
		}
		return ErrUnauthorized
	}
	return nil
}

type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// decodeError reads a non-2xx response body into an APIError
func decodeError(resp *http.Response) error {
	var env errorEnvelope
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(body, &env)
	if env.Error == "" {
		env.Error = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Code: env.Error, Message: env.Message}
}

// IsSessionExpired reports whether err means the credential has expired and
// the user must sign in again.
func IsSessionExpired(err error) bool { return errors.Is(err, ErrSessionExpired) }
