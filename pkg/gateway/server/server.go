// Package server composes the gateway: room provisioner, telephony
// providers, agent factories, session registry, and the HTTP surface.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/relayvoice/callbridge/pkg/agent"
	"github.com/relayvoice/callbridge/pkg/gateway/config"
	"github.com/relayvoice/callbridge/pkg/gateway/handlers"
	"github.com/relayvoice/callbridge/pkg/gateway/mw"
	"github.com/relayvoice/callbridge/pkg/rooms"
	"github.com/relayvoice/callbridge/pkg/session"
	"github.com/relayvoice/callbridge/pkg/telephony"
)

type Server struct {
	cfg    config.Config
	logger *slog.Logger
	mux    *http.ServeMux

	httpClient *http.Client
	rooms      *rooms.Provisioner
	providers  *telephony.Selector
	sessions   *session.Registry
}

// New builds the gateway. Provider and agent registries are populated and
// validated here, at start-up; a misconfigured default is a construction
// error, not a per-call surprise.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: cfg.UpstreamConnectTimeout,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			ResponseHeaderTimeout: cfg.UpstreamResponseHeaderTimeout,
		},
	}

	twilio, err := telephony.NewTwilio(telephony.TwilioConfig{
		AccountSID:  cfg.TwilioAccountSID,
		AuthToken:   cfg.TwilioAuthToken,
		FromNumber:  cfg.TwilioNumber,
		BaseURL:     cfg.TwilioBaseURL,
		SIPUsername: cfg.VideoSDKSIPUsername,
		SIPPassword: cfg.VideoSDKSIPPassword,
	}, httpClient, logger)
	if err != nil {
		return nil, fmt.Errorf("build twilio provider: %w", err)
	}

	providers, err := telephony.NewSelector(telephony.NewRegistry(twilio), cfg.DefaultProvider)
	if err != nil {
		return nil, fmt.Errorf("select default provider: %w", err)
	}

	gemini := agent.NewGemini(agent.GeminiConfig{
		APIKey:            cfg.GoogleAPIKey,
		Model:             cfg.GeminiModel,
		Voice:             cfg.GeminiVoice,
		RoomPlatformToken: cfg.VideoSDKAuthToken,
	}, logger)
	agents := agent.NewRegistry(gemini)
	if _, err := agents.Lookup(cfg.DefaultAgent); err != nil {
		return nil, fmt.Errorf("select default agent: %w", err)
	}

	s := &Server{
		cfg:        cfg,
		logger:     logger,
		mux:        http.NewServeMux(),
		httpClient: httpClient,
		rooms:      rooms.New(cfg.VideoSDKBaseURL, cfg.VideoSDKAuthToken, cfg.VideoSDKSIPDomain, httpClient, logger),
		providers:  providers,
		sessions:   session.NewRegistry(agents, logger),
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.Handle("GET /health", handlers.HealthHandler{Sessions: s.sessions})
	s.mux.Handle("GET /readyz", handlers.ReadyHandler{Config: s.cfg})
	s.mux.Handle("GET /sessions", handlers.SessionsHandler{Sessions: s.sessions})
	s.mux.Handle("GET /sessions/watch", handlers.WatchHandler{Sessions: s.sessions, Logger: s.logger})

	s.mux.Handle("POST /inbound-call", handlers.InboundCallHandler{
		Rooms:        s.rooms,
		Sessions:     s.sessions,
		Providers:    s.providers,
		DefaultAgent: s.cfg.DefaultAgent,
		Logger:       s.logger,
	})
	s.mux.Handle("POST /outbound-call", handlers.OutboundCallHandler{
		Rooms:        s.rooms,
		Sessions:     s.sessions,
		Providers:    s.providers,
		DefaultAgent: s.cfg.DefaultAgent,
		Logger:       s.logger,
	})
	s.mux.Handle("POST /configure-provider", handlers.ConfigureProviderHandler{
		Providers: s.providers,
		Logger:    s.logger,
	})
}

// Handler returns the full middleware-wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = mw.Recover(s.logger, h)
	h = mw.AccessLog(s.logger, h)
	h = mw.RequestID(h)
	return h
}

// DrainSessions cancels running agent sessions and waits for their cleanup,
// bounded by ctx. It reports whether every session drained in time.
func (s *Server) DrainSessions(ctx context.Context) bool {
	return s.sessions.Shutdown(ctx)
}
