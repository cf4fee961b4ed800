package contentful

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorDetail is one sub-error inside a failed-write response.
type ErrorDetail struct {
	Name    string        `json:"name,omitempty"`
	Details string        `json:"details,omitempty"`
	Path    []interface{} `json:"path,omitempty"`
}

// APIError is the decoded error body of a non-2xx management-API response.
type APIError struct {
	StatusCode int
	SysID      string // e.g. "NotFound", "RateLimitExceeded", "ValidationFailed"
	Message    string
	RequestID  string
	Errors     []ErrorDetail
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("contentful: %s (%d %s)", e.Message, e.StatusCode, e.SysID)
	}
	return fmt.Sprintf("contentful: request failed (%d %s)", e.StatusCode, e.SysID)
}

// apiErrorBody is the wire shape of an error response.
type apiErrorBody struct {
	Sys struct {
		ID string `json:"id"`
	} `json:"sys"`
	Message string `json:"message"`
	Details struct {
		Errors []ErrorDetail `json:"errors"`
	} `json:"details"`
	RequestID string `json:"requestId"`
}

// IsRateLimited reports whether err is the API's rate-limit signal.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.SysID == "RateLimitExceeded"
}

// IsNotFound reports whether err is a confirmed missing-record signal.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusNotFound || apiErr.SysID == "NotFound"
}

// IsValidation reports whether err is a 422 validation failure.
func IsValidation(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnprocessableEntity
}

// IsMissingRequiredField classifies a failed write: true only for a 422 whose
// sub-errors include one named "required" or whose detail text mentions
// "required" (case-insensitive). Unrecognized shapes classify false, so the
// destructive delete path stays closed on ambiguous errors.
func IsMissingRequiredField(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity {
		return false
	}
	for _, detail := range apiErr.Errors {
		if detail.Name == "required" {
			return true
		}
		if strings.Contains(strings.ToLower(detail.Details), "required") {
			return true
		}
	}
	return false
}
