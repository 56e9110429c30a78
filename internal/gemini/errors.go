package gemini

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrMissingAPIKey indicates the server-side key was never configured. This
// is a hard configuration error: handlers surface it as HTTP 500 instead of
// degrading to a local fallback.
var ErrMissingAPIKey = errors.New("gemini: api key not configured")

// UpstreamError carries the HTTP status and message returned by the
// generative-language API.
type UpstreamError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("gemini: upstream status %d (%s): %s", e.StatusCode, e.Status, e.Message)
}

// Temporary reports whether retrying the request may succeed.
func (e *UpstreamError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsInvalidKey reports whether err is an upstream rejection of the API key.
func IsInvalidKey(err error) bool {
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		return false
	}
	if ue.StatusCode == http.StatusUnauthorized || ue.StatusCode == http.StatusForbidden {
		return true
	}
	return ue.StatusCode == http.StatusBadRequest && strings.Contains(ue.Message, "API key")
}

// IsQuotaExhausted reports whether err is an upstream rate or quota limit.
func IsQuotaExhausted(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.StatusCode == http.StatusTooManyRequests
}
