package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relayvoice/callbridge/pkg/session"
)

type stubWatcher struct {
	events       chan session.Event
	unsubscribed chan struct{}
}

func (s *stubWatcher) Subscribe() (<-chan session.Event, func()) {
	return s.events, func() { close(s.unsubscribed) }
}

func TestWatchHandler_StreamsEvents(t *testing.T) {
	watcher := &stubWatcher{
		events:       make(chan session.Event, 1),
		unsubscribed: make(chan struct{}),
	}
	srv := httptest.NewServer(WatchHandler{Sessions: watcher, Logger: testLogger()})
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	resp.Body.Close()

	watcher.events <- session.Event{Type: "created", RoomID: "room-9", SessionID: "abc", Agent: "gemini"}

	var got session.Event
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if got.Type != "created" || got.RoomID != "room-9" || got.Agent != "gemini" {
		t.Errorf("event = %+v", got)
	}

	conn.Close()
	select {
	case <-watcher.unsubscribed:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not unsubscribe after close")
	}
}
