// Package rooms provisions real-time rooms on the external room platform and
// derives the SIP address a telephone leg uses to join one.
package rooms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/relayvoice/callbridge/pkg/core"
)

// Provisioner is a client for the room platform's REST API.
type Provisioner struct {
	baseURL    string
	authToken  string
	sipDomain  string
	httpClient *http.Client
	logger     *slog.Logger
}

// New returns a Provisioner talking to the given base URL with a static
// bearer credential.
func New(baseURL, authToken, sipDomain string, httpClient *http.Client, logger *slog.Logger) *Provisioner {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provisioner{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  authToken,
		sipDomain:  sipDomain,
		httpClient: httpClient,
		logger:     logger,
	}
}

type createRoomResponse struct {
	RoomID string `json:"roomId"`
}

// CreateRoom allocates a new room and returns its id. A single failed attempt
// propagates immediately; there are no retries.
func (p *Provisioner) CreateRoom(ctx context.Context) (string, error) {
	url := p.baseURL + "/rooms"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return "", fmt.Errorf("build room request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", p.authToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", core.NewServiceUnavailableError(fmt.Sprintf("failed to create room: %v", err), 0)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		p.logger.Error("room creation failed",
			"status", resp.StatusCode,
			"body", string(body),
		)
		return "", core.NewServiceUnavailableError(
			fmt.Sprintf("failed to create room: upstream status %d", resp.StatusCode),
			resp.StatusCode,
		)
	}

	var room createRoomResponse
	if err := json.NewDecoder(resp.Body).Decode(&room); err != nil {
		return "", core.NewMalformedUpstreamError(fmt.Sprintf("decode room response: %v", err), "roomId")
	}
	if room.RoomID == "" {
		return "", core.NewMalformedUpstreamError("roomId not found in room platform response", "roomId")
	}

	p.logger.Info("room created", "room_id", room.RoomID)
	return room.RoomID, nil
}

// SIPEndpoint returns the SIP address a telephony leg dials to join the room.
func (p *Provisioner) SIPEndpoint(roomID string) string {
	return fmt.Sprintf("sip:%s@%s", roomID, p.sipDomain)
}
