package gemini

import (
	"strings"

	"github.com/mano-habib/gimanoui/pkg/core"
)

// unsupportedMarkers identify per-fragment synthesis rejections. These are
// swallowed so one bad sentence does not abort an entire spoken response.
var unsupportedMarkers = []string{
	"not supported by the AudioOut model",
	"model returned non-audio response",
	"INVALID_ARGUMENT",
	"400",
}

// quotaMarkers identify rate-limit failures in API error text.
var quotaMarkers = []string{"429", "quota", "RESOURCE_EXHAUSTED"}

// authMarkers identify credential failures.
var authMarkers = []string{
	"missing required authentication credential",
	"API key not valid",
	"API Key not found",
	"PERMISSION_DENIED",
}

// classify maps an API failure onto the shared taxonomy by inspecting its
// text for known markers. The backend's errors are not structured enough
// to switch on a code.
func (c *Client) classify(err error) *core.Error {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*core.Error); ok {
		return ce
	}
	msg := err.Error()
	if containsAnyMarker(msg, quotaMarkers) {
		c.gate.Trip()
		return core.NewQuotaError(msg)
	}
	if containsAnyMarker(msg, authMarkers) {
		return core.NewAuthenticationError(msg)
	}
	return core.NewAPIError(msg)
}

// isUnsupportedInput reports whether err is a per-fragment synthesis
// rejection. Quota failures take precedence; they must trip the cooldown,
// not be swallowed.
func isUnsupportedInput(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if containsAnyMarker(msg, quotaMarkers) {
		return false
	}
	return containsAnyMarker(msg, unsupportedMarkers)
}

func containsAnyMarker(msg string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
