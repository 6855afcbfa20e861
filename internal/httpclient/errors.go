package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// UpstreamError represents an error returned by an upstream service
type UpstreamError struct {
	StatusCode int
	Body       []byte
	URL        string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: status %d from %s", e.StatusCode, e.URL)
}

// Message extracts the human-readable message from the upstream body
// when it carries one ({"message": "..."}); falls back to the raw body.
func (e *UpstreamError) Message() string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return string(e.Body)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.StatusCode == http.StatusNotFound
}
