package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/relayvoice/callbridge/pkg/agent"
	"github.com/relayvoice/callbridge/pkg/core"
	"github.com/relayvoice/callbridge/pkg/telephony"
)

// RoomService provisions rooms and derives their SIP addresses.
type RoomService interface {
	CreateRoom(ctx context.Context) (string, error)
	SIPEndpoint(roomID string) string
}

// SessionService creates agent sessions and launches them as detached tasks.
type SessionService interface {
	Create(roomID, callType, initialGreeting, agentName string) (agent.Session, error)
	Launch(sess agent.Session, roomID string)
}

// InboundCallHandler serves POST /inbound-call: it provisions a room,
// creates and launches an agent session, and answers the webhook with a
// script bridging the telephone leg into the room. Orchestration failures
// never surface raw; the caller always receives a call-control script.
type InboundCallHandler struct {
	Rooms        RoomService
	Sessions     SessionService
	Providers    *telephony.Selector
	DefaultAgent string
	Logger       *slog.Logger
}

func (h InboundCallHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, r, core.NewValidationError("malformed form body", ""))
		return
	}

	callSID := strings.TrimSpace(r.PostForm.Get("CallSid"))
	from := strings.TrimSpace(r.PostForm.Get("From"))
	to := strings.TrimSpace(r.PostForm.Get("To"))
	for param, val := range map[string]string{"CallSid": callSID, "From": from, "To": to} {
		if val == "" {
			writeError(w, r, core.NewValidationError("'"+param+"' is required", param))
			return
		}
	}

	h.Logger.Info("inbound call received", "call_sid", callSID, "from", from, "to", to)

	provider := h.Providers.Current()
	script, _, err := bridge(r.Context(), h.Rooms, h.Sessions, provider, "inbound", "", h.DefaultAgent)
	if err != nil {
		h.Logger.Error("failed to handle inbound call", "call_sid", callSID, "error", err)
		msg := "An unexpected error occurred. Please try again later."
		var coreErr *core.Error
		if errors.As(err, &coreErr) {
			msg = "An error occurred: " + coreErr.Message
		}
		writeScript(w, http.StatusInternalServerError, telephony.SayScript(msg))
		return
	}

	h.Logger.Info("answering inbound call", "call_sid", callSID, "provider", provider.Name())
	writeScript(w, http.StatusOK, script)
}

// OutboundCallRequest is the POST /outbound-call request body.
type OutboundCallRequest struct {
	ToNumber        string `json:"to_number"`
	InitialGreeting string `json:"initial_greeting,omitempty"`
}

// CallResponse is the POST /outbound-call success body.
type CallResponse struct {
	Message        string `json:"message"`
	TwilioCallSID  string `json:"twilio_call_sid,omitempty"`
	VideoSDKRoomID string `json:"videosdk_room_id,omitempty"`
}

// OutboundCallHandler serves POST /outbound-call: room, session, and an
// outbound call placed through the active provider with a script bridging
// the callee into the room.
type OutboundCallHandler struct {
	Rooms        RoomService
	Sessions     SessionService
	Providers    *telephony.Selector
	DefaultAgent string
	Logger       *slog.Logger
}

func (h OutboundCallHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req OutboundCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, core.NewValidationError("malformed JSON body", ""))
		return
	}
	if strings.TrimSpace(req.ToNumber) == "" {
		writeError(w, r, core.NewValidationError("'to_number' is required", "to_number"))
		return
	}

	h.Logger.Info("outbound call requested", "to", req.ToNumber)

	provider := h.Providers.Current()
	script, roomID, err := bridge(r.Context(), h.Rooms, h.Sessions, provider, "outbound", req.InitialGreeting, h.DefaultAgent)
	if err != nil {
		h.Logger.Error("failed to initiate outbound call", "to", req.ToNumber, "error", err)
		writeError(w, r, err)
		return
	}

	result, err := provider.PlaceCall(r.Context(), req.ToNumber, script)
	if err != nil {
		h.Logger.Error("failed to place outbound call", "to", req.ToNumber, "room_id", roomID, "error", err)
		writeError(w, r, err)
		return
	}

	h.Logger.Info("outbound call initiated",
		"provider", result.Provider,
		"to", req.ToNumber,
		"call_sid", result.CallSID,
		"room_id", roomID,
	)
	writeJSON(w, http.StatusOK, CallResponse{
		Message:        "Outbound call initiated successfully",
		TwilioCallSID:  result.CallSID,
		VideoSDKRoomID: roomID,
	})
}

// bridge is the shared orchestration: provision a room, create and launch a
// session for it, and render the transfer script. The session outlives the
// request; the HTTP response returns while it runs.
func bridge(ctx context.Context, roomSvc RoomService, sessions SessionService, provider telephony.Provider, callType, greeting, agentName string) (script, roomID string, err error) {
	roomID, err = roomSvc.CreateRoom(ctx)
	if err != nil {
		return "", "", err
	}

	sess, err := sessions.Create(roomID, callType, greeting, agentName)
	if err != nil {
		return "", "", err
	}
	sessions.Launch(sess, roomID)

	return provider.TransferScript(roomSvc.SIPEndpoint(roomID)), roomID, nil
}

func writeScript(w http.ResponseWriter, status int, script string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(script))
}
