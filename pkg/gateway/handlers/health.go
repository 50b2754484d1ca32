package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/relayvoice/callbridge/pkg/gateway/config"
	"github.com/relayvoice/callbridge/pkg/session"
)

// SessionReader is the read-only slice of the session registry the
// informational endpoints use.
type SessionReader interface {
	Count() int
	Snapshot() []session.Info
}

// HealthHandler serves GET /health.
type HealthHandler struct {
	Sessions SessionReader
}

func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, fmt.Sprintf("Server is healthy. Active sessions: %d", h.Sessions.Count()))
}

// SessionsHandler serves GET /sessions.
type SessionsHandler struct {
	Sessions SessionReader
}

func (h SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	infos := h.Sessions.Snapshot()
	if len(infos) == 0 {
		writeText(w, http.StatusOK, "No active sessions")
		return
	}

	lines := make([]string, 0, len(infos))
	for _, info := range infos {
		lines = append(lines, fmt.Sprintf("Room: %s, Agent: %s, Status: %s", info.RoomID, info.AgentType, info.Status))
	}
	writeText(w, http.StatusOK, strings.Join(lines, "\n"))
}

// ReadyHandler serves GET /readyz with a readiness report over the loaded
// configuration.
type ReadyHandler struct {
	Config config.Config
}

func (h ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	type readyResp struct {
		OK              bool     `json:"ok"`
		DefaultProvider string   `json:"default_provider"`
		DefaultAgent    string   `json:"default_agent"`
		Issues          []string `json:"issues,omitempty"`
	}

	issues := make([]string, 0, 4)
	if strings.TrimSpace(h.Config.VideoSDKBaseURL) == "" {
		issues = append(issues, "room platform base url not configured")
	}
	if strings.TrimSpace(h.Config.TwilioBaseURL) == "" {
		issues = append(issues, "telephony base url not configured")
	}
	if strings.TrimSpace(h.Config.DefaultProvider) == "" {
		issues = append(issues, "default provider not configured")
	}
	if strings.TrimSpace(h.Config.DefaultAgent) == "" {
		issues = append(issues, "default agent not configured")
	}

	ok := len(issues) == 0
	status := http.StatusOK
	if !ok {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, readyResp{
		OK:              ok,
		DefaultProvider: h.Config.DefaultProvider,
		DefaultAgent:    h.Config.DefaultAgent,
		Issues:          issues,
	})
}
