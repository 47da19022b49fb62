package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DefaultErrorMessage is shown when the backend gives no readable reason
const DefaultErrorMessage = "Something went wrong"

// ErrInvalidPath is returned for request paths outside the API base
var ErrInvalidPath = errors.New("invalid request path")

// APIError is a non-2xx backend response
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

func newAPIError(status int, body []byte) *APIError {
	return &APIError{Status: status, Message: ExtractMessage(body)}
}

// ExtractMessage picks a human-readable message from an error body,
// checking detail, message and error in that order.
func ExtractMessage(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return DefaultErrorMessage
	}
	for _, key := range []string{"detail", "message", "error"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return DefaultErrorMessage
}
