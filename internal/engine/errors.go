package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
)

// Credential errors shared by every network-calling component.
var (
	ErrYouTubeKeyNotSet = errors.New("YouTube API key not set")
	ErrGeminiKeyNotSet  = errors.New("Gemini API key not set")
)

// ErrMalformedResponse marks a 2xx reply whose body could not be decoded.
var ErrMalformedResponse = errors.New("malformed response body")

// APIError is a non-success HTTP response from a third-party API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// googleErrorEnvelope is the error body shared by the Data API and Gemini.
type googleErrorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func newAPIError(status int, body []byte) *APIError {
	var env googleErrorEnvelope
	if json.Unmarshal(body, &env) == nil && env.Error.Message != "" {
		return &APIError{StatusCode: status, Message: env.Error.Message}
	}
	return &APIError{StatusCode: status, Message: Truncate(strings.TrimSpace(string(body)), 256)}
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// FromGoogleAPI converts a client-library *googleapi.Error into *APIError so
// callers see one error shape for every Google endpoint. Other errors pass
// through unchanged.
func FromGoogleAPI(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	msg := gerr.Message
	if msg == "" {
		msg = Truncate(strings.TrimSpace(gerr.Body), 256)
	}
	return &APIError{StatusCode: gerr.Code, Message: msg}
}
