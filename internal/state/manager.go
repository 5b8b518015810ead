package state

import (
	"context"
	"sync"

	"github.com/arman-h/arvis-core/internal/bus"
)

// EventStateChanged is published whenever the room state actually changes.
const EventStateChanged = "room.state_changed"

// eventSource identifies the state manager on published events.
const eventSource = "state_manager"

// Publisher is the interface the manager needs from the event bus.
type Publisher interface {
	Publish(ctx context.Context, evt bus.Event)
}

// Logger defines the logging interface used by the Manager.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Manager holds the current room state and enforces the transition graph.
//
// The manager is the single owner of the state value; no other component
// mutates it directly. Change notifications go out on the event bus as
// "room.state_changed" events with the old and new state in the payload.
type Manager struct {
	mu        sync.Mutex
	current   RoomState
	publisher Publisher
	logger    Logger
}

// NewManager creates a Manager starting in the empty state.
//
// The publisher may be nil, in which case state changes are applied but
// not announced (useful in tests that only care about the value).
func NewManager(publisher Publisher) *Manager {
	return &Manager{
		current:   StateEmpty,
		publisher: publisher,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// Current returns the current room state. Side-effect free.
func (m *Manager) Current() RoomState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// CanTransition reports whether a transition from the current state to
// the target would be accepted.
func (m *Manager) CanTransition(to RoomState) bool {
	return CanTransition(m.Current(), to)
}

// Transition moves the room to a new state.
//
// A same-state request succeeds immediately with no side effects. An
// out-of-graph request is rejected: the return value is false, the state
// is unchanged, and nothing is published. When force is true the graph
// check is skipped entirely (administrative/test override), but the
// no-op suppression still applies.
//
// On an actual change the manager publishes EventStateChanged with
// payload {"old_state": ..., "new_state": ...}.
func (m *Manager) Transition(ctx context.Context, to RoomState, force bool) bool {
	m.mu.Lock()
	old := m.current

	if old == to {
		m.mu.Unlock()
		m.logger.Debug("state unchanged", "state", old)
		return true
	}

	if !force && !CanTransition(old, to) {
		m.mu.Unlock()
		m.logger.Warn("invalid state transition rejected", "from", old, "to", to)
		return false
	}

	m.current = to
	m.mu.Unlock()

	m.logger.Info("state changed", "from", old, "to", to, "forced", force)

	// Publish outside the lock so handlers can read (or further mutate)
	// the state without deadlocking.
	if m.publisher != nil {
		m.publisher.Publish(ctx, bus.NewEvent(EventStateChanged, eventSource, map[string]any{
			"old_state": string(old),
			"new_state": string(to),
		}))
	}

	return true
}

// Reset forces the state back to empty without validation and without
// publishing a notification. Administrative use only (e.g. shutdown).
func (m *Manager) Reset() {
	m.mu.Lock()
	m.current = StateEmpty
	m.mu.Unlock()
	m.logger.Info("state reset to empty")
}
