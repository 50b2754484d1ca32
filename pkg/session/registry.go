// Package session tracks live agent sessions by room id: it creates them
// through an agent factory, runs them as detached tasks, and removes them
// when their run loop ends.
package session

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/relayvoice/callbridge/pkg/agent"
	"github.com/relayvoice/callbridge/pkg/core"
)

// Info is a read-only snapshot of one active session.
type Info struct {
	RoomID    string `json:"room_id"`
	AgentType string `json:"agent_type"`
	Status    string `json:"status"`
}

// Event reports a session lifecycle transition to watch subscribers.
type Event struct {
	Type      string `json:"type"` // "created" or "ended"
	RoomID    string `json:"room_id"`
	SessionID string `json:"session_id"`
	Agent     string `json:"agent"`
}

type entry struct {
	id        uuid.UUID
	session   agent.Session
	agentName string
	status    string
	cancel    context.CancelFunc
}

// Registry owns the room-to-session mapping. It is the only component that
// mutates it: handlers create entries, and each session's own run loop is
// the sole deleter of its entry.
type Registry struct {
	agents *agent.Registry
	logger *slog.Logger

	baseCtx    context.Context
	baseCancel context.CancelFunc
	running    sync.WaitGroup

	mu       sync.RWMutex
	sessions map[string]*entry

	subMu sync.Mutex
	subs  map[chan Event]struct{}
}

// NewRegistry returns an empty registry creating sessions through the given
// agent registry.
func NewRegistry(agents *agent.Registry, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	baseCtx, baseCancel := context.WithCancel(context.Background())
	return &Registry{
		agents:     agents,
		logger:     logger,
		baseCtx:    baseCtx,
		baseCancel: baseCancel,
		sessions:   make(map[string]*entry),
		subs:       make(map[chan Event]struct{}),
	}
}

// Create builds a session for the room and records it. No entry is recorded
// until creation fully succeeds. A second create for a room with a live
// entry is rejected: the only known cause is duplicate webhook delivery, and
// silently replacing the handle would orphan the running session.
func (r *Registry) Create(roomID, callType, initialGreeting, agentName string) (agent.Session, error) {
	factory, err := r.agents.Lookup(agentName)
	if err != nil {
		return nil, err
	}

	callCtx := agent.CallContext{
		CallType:        callType,
		InitialGreeting: initialGreeting,
	}

	sess, err := factory.CreateSession(roomID, callCtx)
	if err != nil {
		return nil, err
	}

	e := &entry{
		id:        uuid.New(),
		session:   sess,
		agentName: factory.AgentName(),
		status:    "active",
	}

	r.mu.Lock()
	if _, exists := r.sessions[roomID]; exists {
		r.mu.Unlock()
		r.logger.Warn("rejected duplicate session create", "room_id", roomID)
		return nil, &core.Error{
			Type:    core.ErrValidation,
			Message: "session already active for room " + roomID,
			Code:    "session_exists",
			Param:   "room_id",
		}
	}
	r.sessions[roomID] = e
	r.mu.Unlock()

	r.logger.Info("session created", "room_id", roomID, "session_id", e.id, "agent", e.agentName, "call_type", callType)
	r.broadcast(Event{Type: "created", RoomID: roomID, SessionID: e.id.String(), Agent: e.agentName})
	return sess, nil
}

// Launch runs the session as a detached task. The session's context is
// cancelled by Shutdown, giving the registry a forced-hangup handle even
// though no API exposes it yet.
func (r *Registry) Launch(sess agent.Session, roomID string) {
	ctx, cancel := context.WithCancel(r.baseCtx)

	r.mu.Lock()
	if e, ok := r.sessions[roomID]; ok {
		e.cancel = cancel
	}
	r.mu.Unlock()

	r.running.Add(1)
	go func() {
		defer r.running.Done()
		defer cancel()
		r.run(ctx, sess, roomID)
	}()
}

// Run starts the session and blocks until its run loop ends. In all cases
// the room's entry is removed exactly once; a session failure is logged and
// never propagates.
func (r *Registry) Run(sess agent.Session, roomID string) {
	r.run(r.baseCtx, sess, roomID)
}

func (r *Registry) run(ctx context.Context, sess agent.Session, roomID string) {
	defer r.Cleanup(roomID)

	r.logger.Info("starting session", "room_id", roomID)
	if err := sess.Start(ctx); err != nil {
		r.logger.Error("session error", "room_id", roomID, "error", err)
		return
	}
	r.logger.Info("session ended", "room_id", roomID)
}

// Cleanup removes the room's entry. Absent keys are a no-op.
func (r *Registry) Cleanup(roomID string) {
	r.mu.Lock()
	e, ok := r.sessions[roomID]
	if ok {
		delete(r.sessions, roomID)
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	r.logger.Info("session cleaned up", "room_id", roomID)
	r.broadcast(Event{Type: "ended", RoomID: roomID, SessionID: e.id.String(), Agent: e.agentName})
}

// Count returns the number of active sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Snapshot lists the active sessions, sorted by room id. Callers must
// tolerate staleness against concurrent creation and cleanup.
func (r *Registry) Snapshot() []Info {
	r.mu.RLock()
	out := make([]Info, 0, len(r.sessions))
	for roomID, e := range r.sessions {
		out = append(out, Info{RoomID: roomID, AgentType: e.agentName, Status: e.status})
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].RoomID < out[j].RoomID })
	return out
}

// Subscribe registers a lifecycle event channel. Slow subscribers miss
// events rather than block session bookkeeping. The returned func
// unsubscribes and closes the channel.
func (r *Registry) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	r.subMu.Lock()
	r.subs[ch] = struct{}{}
	r.subMu.Unlock()

	once := sync.Once{}
	unsubscribe := func() {
		once.Do(func() {
			r.subMu.Lock()
			delete(r.subs, ch)
			r.subMu.Unlock()
			close(ch)
		})
	}
	return ch, unsubscribe
}

func (r *Registry) broadcast(ev Event) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	for ch := range r.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Shutdown cancels every running session and waits for their run loops to
// finish, bounded by ctx. It reports whether all sessions drained in time.
func (r *Registry) Shutdown(ctx context.Context) bool {
	r.baseCancel()

	done := make(chan struct{})
	go func() {
		r.running.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}
