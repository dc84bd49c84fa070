// Package core holds the error taxonomy shared by the chat and live
// pipelines.
package core

import (
	"errors"
	"fmt"

	"github.com/mano-habib/gimanoui/pkg/i18n"
)

// Error is a categorized failure from the engine or the generative API.
type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    string    `json:"code,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (code: %s)", e.Type, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorType categorizes errors.
type ErrorType string

const (
	// ErrOffline means the client has no network connectivity. Handled
	// locally with a canned reply, never surfaced as a hard failure.
	ErrOffline ErrorType = "offline_error"
	// ErrQuota is a rate-limit or quota failure from the API. Trips the
	// global synthesis cooldown.
	ErrQuota ErrorType = "quota_error"
	// ErrAuthentication means credentials are missing or rejected.
	ErrAuthentication ErrorType = "authentication_error"
	// ErrPermission means a device grant (microphone, camera, screen) was
	// denied.
	ErrPermission ErrorType = "permission_error"
	// ErrUnsupportedInput means the synthesis backend rejected a fragment.
	// Skipped per fragment so one bad sentence does not abort a spoken
	// response.
	ErrUnsupportedInput ErrorType = "unsupported_input_error"
	// ErrAPI is any other failure from the generative API.
	ErrAPI ErrorType = "api_error"
)

// NewOfflineError creates a connectivity error.
func NewOfflineError(message string) *Error {
	return &Error{Type: ErrOffline, Message: message}
}

// NewQuotaError creates a quota/rate-limit error.
func NewQuotaError(message string) *Error {
	return &Error{Type: ErrQuota, Message: message}
}

// NewAuthenticationError creates an authentication error.
func NewAuthenticationError(message string) *Error {
	return &Error{Type: ErrAuthentication, Message: message}
}

// NewPermissionError creates a device-permission error.
func NewPermissionError(message string) *Error {
	return &Error{Type: ErrPermission, Message: message}
}

// NewUnsupportedInputError creates a per-fragment synthesis rejection.
func NewUnsupportedInputError(message string) *Error {
	return &Error{Type: ErrUnsupportedInput, Message: message}
}

// NewAPIError creates a generic API error.
func NewAPIError(message string) *Error {
	return &Error{Type: ErrAPI, Message: message}
}

// IsRetryable reports whether a bounded retry is worthwhile. Quota errors
// are not retried at the request layer; they trip the global cooldown
// instead.
func (e *Error) IsRetryable() bool {
	return e.Type == ErrAPI
}

// TypeOf returns the ErrorType of err, or ErrAPI for uncategorized errors.
func TypeOf(err error) ErrorType {
	if err == nil {
		return ""
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Type
	}
	return ErrAPI
}

// UserMessage maps err to the localized string shown to the user. The
// mapping follows the taxonomy: quota and authentication failures have
// dedicated messages, everything else falls through to the generic form.
func UserMessage(err error, lang string) string {
	if err == nil {
		return ""
	}
	switch TypeOf(err) {
	case ErrOffline:
		return i18n.T(lang, i18n.KeyOffline)
	case ErrQuota:
		return i18n.T(lang, i18n.KeyQuotaExceeded)
	case ErrAuthentication:
		return i18n.T(lang, i18n.KeyAPIKeyMissing)
	case ErrPermission:
		return i18n.T(lang, i18n.KeyMicDenied)
	default:
		return i18n.Tf(lang, i18n.KeyGenericError, err.Error())
	}
}
