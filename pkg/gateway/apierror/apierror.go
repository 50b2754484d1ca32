// Package apierror maps internal errors to the gateway's JSON error envelope
// and an HTTP status code.
package apierror

import (
	"context"
	"errors"
	"net/http"

	"github.com/relayvoice/callbridge/pkg/core"
)

// Envelope is the JSON shape of every error response.
type Envelope struct {
	Error *core.Error `json:"error"`
}

// FromError translates err into a canonical error and the HTTP status it
// should be served with.
func FromError(err error, requestID string) (*core.Error, int) {
	if err == nil {
		return nil, http.StatusOK
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &core.Error{
			Type:      core.ErrAPI,
			Message:   "request timeout",
			RequestID: requestID,
		}, http.StatusGatewayTimeout
	}
	if errors.Is(err, context.Canceled) {
		return &core.Error{
			Type:      core.ErrAPI,
			Message:   "request cancelled",
			Code:      "cancelled",
			RequestID: requestID,
		}, http.StatusRequestTimeout
	}

	var coreErr *core.Error
	if errors.As(err, &coreErr) && coreErr != nil {
		out := *coreErr
		out.RequestID = requestID
		return &out, StatusFromType(coreErr.Type)
	}

	// Unknown errors: internal, no detail leaks.
	return &core.Error{
		Type:      core.ErrAPI,
		Message:   "internal error",
		RequestID: requestID,
	}, http.StatusInternalServerError
}

// StatusFromType maps an error kind to its HTTP status.
func StatusFromType(t core.ErrorType) int {
	switch t {
	case core.ErrValidation, core.ErrUnknownAgent, core.ErrUnknownProvider:
		return http.StatusBadRequest
	case core.ErrServiceUnavailable:
		return http.StatusServiceUnavailable
	case core.ErrMalformedUpstream, core.ErrCallPlacement:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
