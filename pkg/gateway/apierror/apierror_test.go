package apierror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/relayvoice/callbridge/pkg/core"
)

func TestFromError_Nil(t *testing.T) {
	t.Parallel()
	coreErr, status := FromError(nil, "req_1")
	if coreErr != nil || status != http.StatusOK {
		t.Errorf("FromError(nil) = (%v, %d)", coreErr, status)
	}
}

func TestFromError_CoreErrorKinds(t *testing.T) {
	t.Parallel()
	cases := []struct {
		kind   core.ErrorType
		status int
	}{
		{core.ErrValidation, http.StatusBadRequest},
		{core.ErrUnknownAgent, http.StatusBadRequest},
		{core.ErrUnknownProvider, http.StatusBadRequest},
		{core.ErrServiceUnavailable, http.StatusServiceUnavailable},
		{core.ErrMalformedUpstream, http.StatusBadGateway},
		{core.ErrCallPlacement, http.StatusBadGateway},
		{core.ErrAPI, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		err := fmt.Errorf("handler: %w", &core.Error{Type: tc.kind, Message: "m"})
		coreErr, status := FromError(err, "req_2")
		if status != tc.status {
			t.Errorf("%s: status = %d, want %d", tc.kind, status, tc.status)
		}
		if coreErr.RequestID != "req_2" {
			t.Errorf("%s: RequestID = %q", tc.kind, coreErr.RequestID)
		}
	}
}

func TestFromError_UnknownErrorDoesNotLeak(t *testing.T) {
	t.Parallel()
	coreErr, status := FromError(errors.New("pipeline credentials invalid"), "req_3")
	if status != http.StatusInternalServerError {
		t.Errorf("status = %d", status)
	}
	if coreErr.Message != "internal error" {
		t.Errorf("Message = %q, want generic message", coreErr.Message)
	}
}

func TestFromError_ContextErrors(t *testing.T) {
	t.Parallel()
	if _, status := FromError(context.DeadlineExceeded, ""); status != http.StatusGatewayTimeout {
		t.Errorf("deadline status = %d", status)
	}
	if _, status := FromError(context.Canceled, ""); status != http.StatusRequestTimeout {
		t.Errorf("cancel status = %d", status)
	}
}
