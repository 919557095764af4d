package models

import (
	"errors"
	"fmt"
)

// APIError represents a standardized error response for the API
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error code constants
const (
	// General errors
	ErrBadRequest     = "BAD_REQUEST"
	ErrUnauthorized   = "UNAUTHORIZED"
	ErrNotFound       = "NOT_FOUND"
	ErrInternalServer = "INTERNAL_SERVER_ERROR"

	// OAuth lifecycle errors
	ErrCodeInvalidState        = "INVALID_STATE"
	ErrCodeTokenExchangeFailed = "TOKEN_EXCHANGE_FAILED"
	ErrCodeUserIDUnresolved    = "USER_ID_UNRESOLVED"
	ErrCodeRefreshFailed       = "REFRESH_FAILED"
	ErrCodeNoTokenStored       = "NO_TOKEN_STORED"

	// Upstream and cache errors
	ErrCodeUpstream      = "UPSTREAM_ERROR"
	ErrCodeNoDataForDate = "NO_DATA_FOR_DATE"
)

// Domain errors returned by the auth and services packages.
var (
	ErrInvalidState        = errors.New("invalid OAuth state")
	ErrTokenExchangeFailed = errors.New("token exchange failed")
	ErrUserIDUnresolved    = errors.New("could not resolve Fitbit user id")
	ErrRefreshFailed       = errors.New("failed to refresh Fitbit token")
	ErrUnauthorizedAPI     = errors.New("unauthorized to Fitbit API")
	ErrUpstream            = errors.New("Fitbit API error")
	ErrNoTokenStored       = errors.New("no Fitbit token stored; visit /auth/login first")
	ErrNoDataForDate       = errors.New("no data for that date")
)

// UpstreamError carries the status and body of a failed upstream call.
// Kind is one of the domain errors above and is what errors.Is matches against.
type UpstreamError struct {
	Kind   error
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%v: %s", e.Kind, e.Body)
	}
	return fmt.Sprintf("%v (status %d): %s", e.Kind, e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Kind
}

// NewAPIError creates a new API error with the given code and message
func NewAPIError(code, message string, details ...map[string]interface{}) APIError {
	err := APIError{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}
