package agent

import (
	"log/slog"
)

const (
	defaultInstructions = "You are a medical appointment scheduling assistant. " +
		"Your goal is to confirm upcoming appointments and reschedule if needed."

	defaultGreeting = "Hello, this is Neha, calling from City Medical Center " +
		"regarding your upcoming appointment. Is this a good time to speak?"
)

// VoiceAgent is the conversational persona attached to a session. Its only
// session-entry behavior is speaking a greeting; turn-taking and language
// understanding are delegated to the pipeline.
type VoiceAgent struct {
	Instructions string
	Tools        []string

	logger *slog.Logger
}

// NewVoiceAgent returns a persona with the default scheduling instructions.
func NewVoiceAgent(logger *slog.Logger) *VoiceAgent {
	if logger == nil {
		logger = slog.Default()
	}
	return &VoiceAgent{
		Instructions: defaultInstructions,
		logger:       logger,
	}
}

// Greeting returns the line the agent speaks on entry: the caller-supplied
// greeting when present, the fixed default otherwise.
func (a *VoiceAgent) Greeting(callCtx CallContext) string {
	if callCtx.InitialGreeting != "" {
		return callCtx.InitialGreeting
	}
	return defaultGreeting
}

func (a *VoiceAgent) onEnter(roomID string) {
	a.logger.Info("agent entered session", "room_id", roomID)
}

func (a *VoiceAgent) onExit(roomID string) {
	a.logger.Info("call ended", "room_id", roomID)
}
