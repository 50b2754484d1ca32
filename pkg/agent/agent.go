// Package agent defines the conversational agent surface: factories produce
// runnable sessions that pair a voice persona with a real-time AI pipeline,
// bound to one room.
package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/relayvoice/callbridge/pkg/core"
)

// CallContext is the per-call context handed to session creation. It is not
// retained after the session starts.
type CallContext struct {
	RoomID          string
	CallType        string
	InitialGreeting string
	DisplayName     string
	AuthToken       string
	Metadata        map[string]string
}

// Session is a runnable agent session bound to one room.
type Session interface {
	// Start runs the session until the call ends, the context is cancelled,
	// or the pipeline fails.
	Start(ctx context.Context) error
}

// Factory produces sessions for one agent kind.
type Factory interface {
	// CreateSession merges the factory's default persona context with the
	// caller-supplied call context and returns a runnable session.
	CreateSession(roomID string, callCtx CallContext) (Session, error)

	// AgentName returns the factory's constant identifier.
	AgentName() string
}

// Registry is a name-keyed set of agent factories, populated once at
// start-up.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry builds a registry over the given factories, keyed by
// AgentName().
func NewRegistry(factories ...Factory) *Registry {
	m := make(map[string]Factory, len(factories))
	for _, f := range factories {
		m[f.AgentName()] = f
	}
	return &Registry{factories: m}
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, &core.Error{
			Type:    core.ErrUnknownAgent,
			Message: fmt.Sprintf("unsupported agent: %s (available: %s)", name, strings.Join(r.Names(), ", ")),
			Param:   "agent_name",
		}
	}
	return f, nil
}

// Names lists the registered agent names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
