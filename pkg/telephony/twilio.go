package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/relayvoice/callbridge/pkg/core"
)

const twilioName = "twilio"

// TwilioConfig carries the static credentials and endpoints for the Twilio
// REST API.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	BaseURL    string

	// SIP credentials embedded in transfer scripts.
	SIPUsername string
	SIPPassword string
}

// Twilio places calls through the Twilio REST API and renders TwiML transfer
// scripts.
type Twilio struct {
	cfg        TwilioConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewTwilio constructs the provider. Missing credentials fail here, at
// process start-up, not per call.
func NewTwilio(cfg TwilioConfig, httpClient *http.Client, logger *slog.Logger) (*Twilio, error) {
	if strings.TrimSpace(cfg.AccountSID) == "" || strings.TrimSpace(cfg.AuthToken) == "" {
		return nil, fmt.Errorf("twilio credentials not configured")
	}
	if strings.TrimSpace(cfg.FromNumber) == "" {
		return nil, fmt.Errorf("twilio source number not configured")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.twilio.com/2010-04-01"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Twilio{cfg: cfg, httpClient: httpClient, logger: logger}, nil
}

// TransferScript renders TwiML dialing the room's SIP endpoint with the
// configured SIP credentials.
func (t *Twilio) TransferScript(sipEndpoint string) string {
	return DialSIPScript(sipEndpoint, t.cfg.SIPUsername, t.cfg.SIPPassword)
}

type twilioCallResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

type twilioAPIError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
}

// PlaceCall creates an outbound call driven by the given TwiML document.
// Upstream rejections propagate as a call-placement failure; there are no
// retries.
func (t *Twilio) PlaceCall(ctx context.Context, toNumber, script string) (CallResult, error) {
	reqURL := fmt.Sprintf("%s/Accounts/%s/Calls.json", t.cfg.BaseURL, t.cfg.AccountSID)

	form := url.Values{}
	form.Set("To", toNumber)
	form.Set("From", t.cfg.FromNumber)
	form.Set("Twiml", script)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		return CallResult{}, fmt.Errorf("build call request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(t.cfg.AccountSID, t.cfg.AuthToken)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return CallResult{}, &core.Error{
			Type:    core.ErrCallPlacement,
			Message: fmt.Sprintf("failed to place call: %v", err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := twilioAPIError{}
		_ = json.Unmarshal(body, &apiErr)
		msg := apiErr.Message
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		t.logger.Error("call placement rejected",
			"to", toNumber,
			"status", resp.StatusCode,
			"error", msg,
		)
		return CallResult{}, &core.Error{
			Type:           core.ErrCallPlacement,
			Message:        fmt.Sprintf("call placement rejected: %s", msg),
			UpstreamStatus: resp.StatusCode,
			ProviderError:  apiErr,
		}
	}

	var call twilioCallResponse
	if err := json.NewDecoder(resp.Body).Decode(&call); err != nil {
		return CallResult{}, core.NewMalformedUpstreamError(fmt.Sprintf("decode call response: %v", err), "sid")
	}

	t.logger.Info("outbound call placed", "to", toNumber, "call_sid", call.SID, "status", call.Status)
	return CallResult{CallSID: call.SID, Status: call.Status, Provider: twilioName}, nil
}

// Name returns the provider identifier.
func (t *Twilio) Name() string {
	return twilioName
}
