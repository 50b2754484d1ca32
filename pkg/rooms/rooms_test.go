package rooms

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/relayvoice/callbridge/pkg/core"
)

func TestCreateRoom_Success(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/rooms" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "vsdk-token" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"roomId":"room-abc123"}`))
	}))
	defer srv.Close()

	p := New(srv.URL, "vsdk-token", "sip.videosdk.live", srv.Client(), nil)
	roomID, err := p.CreateRoom(context.Background())
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if roomID != "room-abc123" {
		t.Errorf("roomID = %q", roomID)
	}
}

func TestCreateRoom_UpstreamFailure(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "over capacity", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := New(srv.URL, "vsdk-token", "sip.videosdk.live", srv.Client(), nil)
	_, err := p.CreateRoom(context.Background())
	if err == nil {
		t.Fatal("CreateRoom succeeded against a 503 upstream")
	}

	var coreErr *core.Error
	if !errors.As(err, &coreErr) {
		t.Fatalf("error %T is not *core.Error", err)
	}
	if coreErr.Type != core.ErrServiceUnavailable {
		t.Errorf("Type = %v, want %v", coreErr.Type, core.ErrServiceUnavailable)
	}
	if coreErr.UpstreamStatus != http.StatusServiceUnavailable {
		t.Errorf("UpstreamStatus = %d, want 503", coreErr.UpstreamStatus)
	}
}

func TestCreateRoom_MissingRoomID(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sessionId":"nope"}`))
	}))
	defer srv.Close()

	p := New(srv.URL, "vsdk-token", "sip.videosdk.live", srv.Client(), nil)
	_, err := p.CreateRoom(context.Background())

	var coreErr *core.Error
	if !errors.As(err, &coreErr) {
		t.Fatalf("error %T is not *core.Error", err)
	}
	if coreErr.Type != core.ErrMalformedUpstream {
		t.Errorf("Type = %v, want %v", coreErr.Type, core.ErrMalformedUpstream)
	}
}

func TestSIPEndpoint(t *testing.T) {
	t.Parallel()
	p := New("https://api.videosdk.live/v2", "tok", "sip.videosdk.live", nil, nil)
	if got := p.SIPEndpoint("room-xyz"); got != "sip:room-xyz@sip.videosdk.live" {
		t.Errorf("SIPEndpoint = %q", got)
	}
}
