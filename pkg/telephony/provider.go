// Package telephony defines the pluggable telephony provider surface: script
// generation for bridging a call leg into a room, and outbound call placement.
package telephony

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/relayvoice/callbridge/pkg/core"
)

// CallResult describes a placed outbound call.
type CallResult struct {
	CallSID  string
	Status   string
	Provider string
}

// Provider is a telephony backend. Implementations authenticate at
// construction time and fail fast on missing credentials.
type Provider interface {
	// TransferScript renders a call-control script directing the telephone
	// leg to dial the given SIP address. Pure given fixed configuration.
	TransferScript(sipEndpoint string) string

	// PlaceCall places an outbound call driven by the given script.
	PlaceCall(ctx context.Context, toNumber, script string) (CallResult, error)

	// Name returns the provider's constant identifier.
	Name() string
}

// Registry is a name-keyed set of providers, populated once at start-up.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds a registry over the given providers, keyed by Name().
func NewRegistry(providers ...Provider) *Registry {
	m := make(map[string]Provider, len(providers))
	for _, p := range providers {
		m[p.Name()] = p
	}
	return &Registry{providers: m}
}

// Lookup returns the provider registered under name.
func (r *Registry) Lookup(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, &core.Error{
			Type:    core.ErrUnknownProvider,
			Message: fmt.Sprintf("unsupported provider: %s (available: %s)", name, strings.Join(r.Names(), ", ")),
			Param:   "provider_name",
		}
	}
	return p, nil
}

// Names lists the registered provider names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Selector holds the currently active provider. The default is chosen at
// start-up; Configure is the single administrative entry point that swaps it.
type Selector struct {
	registry *Registry

	mu      sync.RWMutex
	current Provider
}

// NewSelector returns a selector with the named default provider active.
func NewSelector(registry *Registry, defaultName string) (*Selector, error) {
	p, err := registry.Lookup(defaultName)
	if err != nil {
		return nil, err
	}
	return &Selector{registry: registry, current: p}, nil
}

// Current returns the active provider.
func (s *Selector) Current() Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Configure swaps the active provider. An unknown name leaves the active
// selection unchanged.
func (s *Selector) Configure(name string) error {
	p, err := s.registry.Lookup(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.current = p
	s.mu.Unlock()
	return nil
}
