package agent

import (
	"context"
	"errors"
	"io"
	"testing"
)

type fakeLive struct {
	said   []string
	turns  int
	next   error
	closed bool
}

func (f *fakeLive) Say(ctx context.Context, text string) error {
	f.said = append(f.said, text)
	return nil
}

func (f *fakeLive) Next() error {
	if f.turns > 0 {
		f.turns--
		return nil
	}
	if f.next != nil {
		return f.next
	}
	return io.EOF
}

func (f *fakeLive) Close() error {
	f.closed = true
	return nil
}

func newFakeGemini(live *fakeLive, dialErr error) *Gemini {
	g := NewGemini(GeminiConfig{
		APIKey:            "gk",
		Model:             "gemini-2.0-flash-live-001",
		Voice:             "Leda",
		RoomPlatformToken: "vsdk-token",
	}, nil)
	g.dial = func(ctx context.Context, pipeline *Pipeline, instructions string) (liveSession, error) {
		if dialErr != nil {
			return nil, dialErr
		}
		return live, nil
	}
	return g
}

func TestGemini_AgentName(t *testing.T) {
	t.Parallel()
	if got := NewGemini(GeminiConfig{}, nil).AgentName(); got != "gemini" {
		t.Errorf("AgentName = %q", got)
	}
}

func TestGemini_CreatePipeline(t *testing.T) {
	t.Parallel()
	g := NewGemini(GeminiConfig{APIKey: "gk", Model: "m", Voice: "Leda"}, nil)
	p := g.CreatePipeline()
	if p.Model != "m" || p.Voice != "Leda" {
		t.Errorf("pipeline = %+v", p)
	}
	if len(p.ResponseModalities) != 1 || p.ResponseModalities[0] != "AUDIO" {
		t.Errorf("ResponseModalities = %v", p.ResponseModalities)
	}
}

func TestGemini_CreateSessionMergesContext(t *testing.T) {
	t.Parallel()
	g := newFakeGemini(&fakeLive{}, nil)
	sess, err := g.CreateSession("room-1", CallContext{CallType: "outbound", InitialGreeting: "Hi"})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	gs, ok := sess.(*geminiSession)
	if !ok {
		t.Fatalf("session type %T", sess)
	}
	if gs.callCtx.RoomID != "room-1" {
		t.Errorf("RoomID = %q", gs.callCtx.RoomID)
	}
	if gs.callCtx.AuthToken != "vsdk-token" {
		t.Errorf("AuthToken = %q", gs.callCtx.AuthToken)
	}
	if gs.callCtx.DisplayName == "" {
		t.Error("DisplayName not defaulted")
	}
	if gs.callCtx.CallType != "outbound" {
		t.Errorf("CallType = %q", gs.callCtx.CallType)
	}
}

func TestSessionStart_SpeaksGreetingAndEndsOnEOF(t *testing.T) {
	t.Parallel()
	live := &fakeLive{turns: 3}
	g := newFakeGemini(live, nil)
	sess, err := g.CreateSession("room-1", CallContext{CallType: "outbound", InitialGreeting: "Hello Sam"})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if err := sess.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(live.said) != 1 || live.said[0] != "Hello Sam" {
		t.Errorf("said = %v", live.said)
	}
	if !live.closed {
		t.Error("live session not closed")
	}
}

func TestSessionStart_DefaultGreeting(t *testing.T) {
	t.Parallel()
	live := &fakeLive{}
	g := newFakeGemini(live, nil)
	sess, _ := g.CreateSession("room-1", CallContext{CallType: "inbound"})

	if err := sess.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(live.said) != 1 || live.said[0] != defaultGreeting {
		t.Errorf("said = %v, want default greeting", live.said)
	}
}

func TestSessionStart_PipelineFailurePropagates(t *testing.T) {
	t.Parallel()
	wantErr := errors.New("stream reset")
	live := &fakeLive{next: wantErr}
	g := newFakeGemini(live, nil)
	sess, _ := g.CreateSession("room-1", CallContext{})

	if err := sess.Start(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("Start error = %v, want %v", err, wantErr)
	}
}

func TestSessionStart_DialFailure(t *testing.T) {
	t.Parallel()
	g := newFakeGemini(nil, errors.New("no network"))
	sess, _ := g.CreateSession("room-1", CallContext{})

	if err := sess.Start(context.Background()); err == nil {
		t.Fatal("Start succeeded with failing dialer")
	}
}

func TestRegistry_LookupUnknownAgent(t *testing.T) {
	t.Parallel()
	reg := NewRegistry(NewGemini(GeminiConfig{}, nil))

	if _, err := reg.Lookup("gemini"); err != nil {
		t.Fatalf("Lookup(gemini): %v", err)
	}
	if _, err := reg.Lookup("claude"); err == nil {
		t.Fatal("Lookup(claude) succeeded")
	}
}
