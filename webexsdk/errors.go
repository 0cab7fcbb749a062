/* SPDX-License-Identifier: MPL-2.0
 * Copyright 2026 Webex Community
 *
 * See CONTRIBUTORS.md for full contributor list.
 */

package webexsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Mobius device error sub-codes carried in 403 response bodies.
const (
	ErrorCodeDeviceLimitExceeded    = 101
	ErrorCodeDeviceCreationDisabled = 102
	ErrorCodeDeviceCreationFailed   = 103
)

// APIError is the base error type for all API errors.
// It provides structured access to the HTTP status code, error message,
// tracking ID, and raw response body. All specific error sub-types embed
// this struct, so consumers can use errors.As(err, &apiErr) to access
// common fields regardless of the specific error type.
type APIError struct {
	// StatusCode is the HTTP status code from the response.
	StatusCode int

	// Status is the HTTP status line (e.g., "404 Not Found").
	Status string

	// Message is the error message from the API response body.
	Message string

	// TrackingID is the tracking identifier for support debugging.
	TrackingID string

	// RetryAfter is the duration to wait before retrying, parsed from
	// the Retry-After header. Zero if not applicable.
	RetryAfter time.Duration

	// RawBody is the raw response body bytes, preserved for debugging.
	RawBody []byte

	// Err is an optional wrapped error for errors.Unwrap support.
	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("API error: %d", e.StatusCode)
	if e.Message != "" {
		msg += " - " + e.Message
	}
	if e.TrackingID != "" {
		msg += " (trackingId: " + e.TrackingID + ")"
	}
	return msg
}

// Unwrap returns the wrapped error, if any.
func (e *APIError) Unwrap() error {
	return e.Err
}

// --- Specific error sub-types ---

// RateLimitError is returned for HTTP 429 Too Many Requests responses.
// The RetryAfter field (inherited from APIError) indicates how long to wait.
type RateLimitError struct {
	*APIError
}

// Unwrap returns the underlying APIError for errors.As traversal.
func (e *RateLimitError) Unwrap() error { return e.APIError }

// AuthError is returned for HTTP 401 Unauthorized responses.
type AuthError struct {
	*APIError
}

// Unwrap returns the underlying APIError for errors.As traversal.
func (e *AuthError) Unwrap() error { return e.APIError }

// ExistingDevice describes a device already registered against a Mobius
// cluster, as reported in a 403 device-limit response body.
type ExistingDevice struct {
	DeviceID string `json:"deviceId"`
	URI      string `json:"uri"`
	Status   string `json:"status,omitempty"`
}

// ForbiddenError is returned for HTTP 403 Forbidden responses.
// Mobius qualifies 403s with an errorCode sub-code; 101 (device limit
// exceeded) additionally lists the devices already registered so the
// client can restore one of them.
type ForbiddenError struct {
	*APIError

	// ErrorCode is the Mobius sub-code (101, 102, 103), zero when absent.
	ErrorCode int

	// Devices lists existing registrations for sub-code 101.
	Devices []ExistingDevice
}

// Unwrap returns the underlying APIError for errors.As traversal.
func (e *ForbiddenError) Unwrap() error { return e.APIError }

// NotFoundError is returned for HTTP 404 Not Found responses.
type NotFoundError struct {
	*APIError
}

// Unwrap returns the underlying APIError for errors.As traversal.
func (e *NotFoundError) Unwrap() error { return e.APIError }

// ServiceUnavailableError is returned for HTTP 503 responses.
// The RetryAfter field (inherited from APIError) carries the server's
// suggested wait when a Retry-After header was present.
type ServiceUnavailableError struct {
	*APIError
}

// Unwrap returns the underlying APIError for errors.As traversal.
func (e *ServiceUnavailableError) Unwrap() error { return e.APIError }

// ServerError is returned for HTTP 5xx responses other than 503.
type ServerError struct {
	*APIError
}

// Unwrap returns the underlying APIError for errors.As traversal.
func (e *ServerError) Unwrap() error { return e.APIError }

// --- Factory ---

// apiErrorBody is used to parse the API error response JSON.
type apiErrorBody struct {
	Message    string           `json:"message"`
	TrackingID string           `json:"trackingId"`
	ErrorCode  int              `json:"errorCode"`
	Devices    []ExistingDevice `json:"devices"`
}

// NewAPIError creates a structured error from an HTTP response and its body.
// It parses the JSON body for message, trackingId and Mobius errorCode
// fields, reads the Retry-After header, and returns the appropriate error
// sub-type based on the HTTP status code.
func NewAPIError(resp *http.Response, body []byte) error {
	base := &APIError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		RawBody:    body,
	}

	var parsed apiErrorBody
	if len(body) > 0 {
		if err := json.Unmarshal(body, &parsed); err == nil {
			base.Message = parsed.Message
			base.TrackingID = parsed.TrackingID
		}
		// If JSON parsing fails, leave Message empty — RawBody preserves the original
	}

	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if seconds, err := strconv.Atoi(ra); err == nil && seconds > 0 {
			base.RetryAfter = time.Duration(seconds) * time.Second
		}
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized: // 401
		return &AuthError{APIError: base}
	case http.StatusForbidden: // 403
		return &ForbiddenError{
			APIError:  base,
			ErrorCode: parsed.ErrorCode,
			Devices:   parsed.Devices,
		}
	case http.StatusNotFound: // 404
		return &NotFoundError{APIError: base}
	case http.StatusTooManyRequests: // 429
		return &RateLimitError{APIError: base}
	case http.StatusServiceUnavailable: // 503
		return &ServiceUnavailableError{APIError: base}
	case http.StatusInternalServerError, // 500
		http.StatusBadGateway,     // 502
		http.StatusGatewayTimeout: // 504
		return &ServerError{APIError: base}
	default:
		return base
	}
}

// --- Convenience functions ---

// IsRateLimited reports whether err is a rate limit error (HTTP 429).
func IsRateLimited(err error) bool {
	var e *RateLimitError
	return errors.As(err, &e)
}

// IsNotFound reports whether err is a not found error (HTTP 404).
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsAuthError reports whether err is an authentication error (HTTP 401).
func IsAuthError(err error) bool {
	var e *AuthError
	return errors.As(err, &e)
}

// IsForbidden reports whether err is a forbidden error (HTTP 403).
func IsForbidden(err error) bool {
	var e *ForbiddenError
	return errors.As(err, &e)
}

// IsServiceUnavailable reports whether err is a service unavailable error (HTTP 503).
func IsServiceUnavailable(err error) bool {
	var e *ServiceUnavailableError
	return errors.As(err, &e)
}

// IsServerError reports whether err is a server error (HTTP 5xx).
func IsServerError(err error) bool {
	var se *ServerError
	var su *ServiceUnavailableError
	return errors.As(err, &se) || errors.As(err, &su)
}

// StatusOf returns the HTTP status code carried by err, or zero when err
// is not an API error.
func StatusOf(err error) int {
	var e *APIError
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}
