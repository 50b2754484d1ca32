package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relayvoice/callbridge/pkg/session"
)

// SessionWatcher exposes the registry's lifecycle event stream.
type SessionWatcher interface {
	Subscribe() (<-chan session.Event, func())
}

const (
	watchWriteTimeout = 5 * time.Second
	watchPingInterval = 20 * time.Second
)

// WatchHandler serves GET /sessions/watch: a WebSocket stream of session
// created/ended events for operator tooling.
type WatchHandler struct {
	Sessions SessionWatcher
	Logger   *slog.Logger

	upgrader websocket.Upgrader
}

func (h WatchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.Logger.Warn("watch upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events, unsubscribe := h.Sessions.Subscribe()
	defer unsubscribe()

	// Reads are discarded; the loop exists to observe the close frame.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(watchPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case ev := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(watchWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				h.Logger.Warn("watch write failed", "error", err)
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(watchWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
