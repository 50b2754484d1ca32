package core

import (
	"fmt"
)

// Error is the canonical error carried across package boundaries and mapped
// to HTTP responses at the gateway edge.
type Error struct {
	Type           ErrorType `json:"type"`
	Message        string    `json:"message"`
	Param          string    `json:"param,omitempty"`
	Code           string    `json:"code,omitempty"`
	RequestID      string    `json:"request_id,omitempty"`
	UpstreamStatus int       `json:"upstream_status,omitempty"`
	ProviderError  any       `json:"provider_error,omitempty"`
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
	// ErrValidation marks a request missing a required field or carrying a
	// malformed value.
	ErrValidation ErrorType = "validation_error"
	// ErrServiceUnavailable marks a non-2xx response from the room
	// provisioning upstream.
	ErrServiceUnavailable ErrorType = "service_unavailable"
	// ErrMalformedUpstream marks a 2xx upstream response missing an expected
	// field.
	ErrMalformedUpstream ErrorType = "malformed_upstream_response"
	// ErrCallPlacement marks a rejected outbound call placement.
	ErrCallPlacement ErrorType = "call_placement_failed"
	// ErrUnknownAgent marks an agent factory lookup miss.
	ErrUnknownAgent ErrorType = "unknown_agent"
	// ErrUnknownProvider marks a telephony provider lookup miss.
	ErrUnknownProvider ErrorType = "unknown_provider"
	// ErrAPI marks an internal failure with no more specific kind.
	ErrAPI ErrorType = "api_error"
)

// NewValidationError creates a validation error for a missing or invalid
// request parameter.
func NewValidationError(message, param string) *Error {
	return &Error{
		Type:    ErrValidation,
		Message: message,
		Param:   param,
	}
}

// NewServiceUnavailableError creates an upstream-failure error carrying the
// upstream HTTP status.
func NewServiceUnavailableError(message string, upstreamStatus int) *Error {
	return &Error{
		Type:           ErrServiceUnavailable,
		Message:        message,
		UpstreamStatus: upstreamStatus,
	}
}

// NewMalformedUpstreamError creates an error for a well-formed upstream
// response missing an expected field.
func NewMalformedUpstreamError(message, param string) *Error {
	return &Error{
		Type:    ErrMalformedUpstream,
		Message: message,
		Param:   param,
	}
}
