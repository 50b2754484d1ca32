package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"google.golang.org/genai"
)

const geminiName = "gemini"

// GeminiConfig configures the Gemini Live pipeline.
type GeminiConfig struct {
	APIKey string
	Model  string
	Voice  string

	// RoomPlatformToken is forwarded into the session context so the
	// pipeline can join the room.
	RoomPlatformToken string
}

// Pipeline is the construction-time description of the real-time model
// reference: model id, voice selection, response modalities, credential.
type Pipeline struct {
	Model              string
	Voice              string
	ResponseModalities []string
	apiKey             string
}

// Gemini is the agent factory wiring the Gemini Live model into sessions.
type Gemini struct {
	cfg    GeminiConfig
	logger *slog.Logger

	// dial is swapped in tests; the default connects to the Gemini Live API.
	dial liveDialer
}

// NewGemini returns a Gemini agent factory.
func NewGemini(cfg GeminiConfig, logger *slog.Logger) *Gemini {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gemini{cfg: cfg, logger: logger, dial: dialGeminiLive}
}

// CreatePipeline assembles the real-time model reference for a session.
func (g *Gemini) CreatePipeline() *Pipeline {
	return &Pipeline{
		Model:              g.cfg.Model,
		Voice:              g.cfg.Voice,
		ResponseModalities: []string{"AUDIO"},
		apiKey:             g.cfg.APIKey,
	}
}

// CreateSession binds a voice persona and a pipeline to the given room.
func (g *Gemini) CreateSession(roomID string, callCtx CallContext) (Session, error) {
	merged := callCtx
	merged.RoomID = roomID
	if merged.DisplayName == "" {
		merged.DisplayName = "Callbridge Gemini Agent"
	}
	merged.AuthToken = g.cfg.RoomPlatformToken

	return &geminiSession{
		persona:  NewVoiceAgent(g.logger),
		pipeline: g.CreatePipeline(),
		callCtx:  merged,
		dial:     g.dial,
		logger:   g.logger,
	}, nil
}

// AgentName returns the factory identifier.
func (g *Gemini) AgentName() string {
	return geminiName
}

// liveSession is the slice of the live transport the session run loop needs.
type liveSession interface {
	// Say speaks the given line through the pipeline.
	Say(ctx context.Context, text string) error
	// Next blocks until the next server turn; it returns io.EOF when the
	// live stream ends.
	Next() error
	Close() error
}

type liveDialer func(ctx context.Context, pipeline *Pipeline, instructions string) (liveSession, error)

type geminiSession struct {
	persona  *VoiceAgent
	pipeline *Pipeline
	callCtx  CallContext
	dial     liveDialer
	logger   *slog.Logger
}

// Start connects the pipeline, speaks the entry greeting, and drains server
// turns until the live stream ends or the context is cancelled.
func (s *geminiSession) Start(ctx context.Context) error {
	live, err := s.dial(ctx, s.pipeline, s.persona.Instructions)
	if err != nil {
		return fmt.Errorf("connect live pipeline: %w", err)
	}
	defer live.Close()

	s.persona.onEnter(s.callCtx.RoomID)
	defer s.persona.onExit(s.callCtx.RoomID)

	if err := live.Say(ctx, s.persona.Greeting(s.callCtx)); err != nil {
		return fmt.Errorf("speak greeting: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		for {
			if err := live.Next(); err != nil {
				errCh <- err
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
}

// dialGeminiLive opens a Gemini Live API session configured with the
// pipeline's voice and response modalities.
func dialGeminiLive(ctx context.Context, pipeline *Pipeline, instructions string) (liveSession, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  pipeline.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	modalities := make([]genai.Modality, 0, len(pipeline.ResponseModalities))
	for _, m := range pipeline.ResponseModalities {
		modalities = append(modalities, genai.Modality(m))
	}

	session, err := client.Live.Connect(ctx, pipeline.Model, &genai.LiveConnectConfig{
		ResponseModalities: modalities,
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: pipeline.Voice},
			},
		},
		SystemInstruction: genai.NewContentFromText(instructions, genai.RoleUser),
	})
	if err != nil {
		return nil, err
	}
	return &geminiLive{session: session}, nil
}

type geminiLive struct {
	session *genai.Session
}

func (g *geminiLive) Say(ctx context.Context, text string) error {
	return g.session.SendClientContent(genai.LiveClientContentInput{
		Turns:        []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		TurnComplete: genai.Ptr(true),
	})
}

func (g *geminiLive) Next() error {
	_, err := g.session.Receive()
	return err
}

func (g *geminiLive) Close() error {
	return g.session.Close()
}
