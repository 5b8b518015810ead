package presence

import (
	"context"
	"sync"
	"time"

	"github.com/arman-h/arvis-core/internal/bus"
	"github.com/arman-h/arvis-core/internal/state"
)

// Bus event types produced and consumed by the agent.
const (
	// EventMotionDetected is the debounced motion signal the agent consumes.
	EventMotionDetected = "presence.motion_detected"

	// EventEntryDetected fires exactly once per EMPTY→OCCUPIED edge.
	EventEntryDetected = "presence.entry_detected"

	// EventExitDetected fires exactly once per OCCUPIED→EMPTY edge.
	EventExitDetected = "presence.exit_detected"

	// EventRoomEmptyTimeout is the diagnostic companion to EventExitDetected.
	EventRoomEmptyTimeout = "presence.room_empty_timeout"
)

// agentSource identifies the agent on published events.
const agentSource = "presence_agent"

// minCheckInterval is the floor for the timeout polling cadence; below
// this the loop would just burn CPU.
const minCheckInterval = 50 * time.Millisecond

// AgentConfig holds the agent's timing parameters.
type AgentConfig struct {
	// OccupancyTimeout is how long the room must be motion-free before
	// it is declared empty.
	OccupancyTimeout time.Duration

	// CheckInterval is the upper bound on the timeout polling cadence.
	// The effective cadence is capped at OccupancyTimeout/2.
	CheckInterval time.Duration
}

// Logger defines the logging interface used by the Agent and Detector.
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

// EventBus is the subset of the bus the agent needs.
type EventBus interface {
	Subscribe(pattern string, handler bus.Handler) bus.Subscription
	Unsubscribe(sub bus.Subscription) bool
	Publish(ctx context.Context, evt bus.Event)
}

// Agent drives EMPTY ⇄ OCCUPIED transitions from motion events and a
// periodic inactivity check.
//
// Thread Safety: all methods are safe for concurrent use. Transitions
// are serialised through the agent's own mutex so motion events racing
// the timeout loop cannot produce duplicate entry/exit notifications.
type Agent struct {
	bus   EventBus
	state *state.Manager
	cfg   AgentConfig

	mu         sync.Mutex
	lastMotion time.Time

	runMu   sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	sub     bus.Subscription

	logger Logger
}

// NewAgent creates a presence agent. It does nothing until Start.
func NewAgent(b EventBus, sm *state.Manager, cfg AgentConfig) *Agent {
	return &Agent{
		bus:    b,
		state:  sm,
		cfg:    cfg,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the agent.
func (a *Agent) SetLogger(logger Logger) {
	if logger != nil {
		a.logger = logger
	}
}

// Start subscribes to motion events and launches the timeout loop.
// Calling Start on a running agent is a logged no-op.
func (a *Agent) Start(ctx context.Context) {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	if a.running {
		a.logger.Warn("presence agent already running")
		return
	}

	a.sub = a.bus.Subscribe(EventMotionDetected, a.onMotion)

	loopCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})
	a.running = true

	go a.timeoutLoop(loopCtx)

	a.logger.Info("presence agent started",
		"occupancy_timeout", a.cfg.OccupancyTimeout,
		"check_interval", a.effectiveInterval(),
	)
}

// Stop unsubscribes, cancels the timeout loop, and waits for it to
// terminate. Safe to call on a stopped agent.
func (a *Agent) Stop() {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	if !a.running {
		return
	}

	a.bus.Unsubscribe(a.sub)
	a.cancel()
	<-a.done
	a.running = false

	a.logger.Info("presence agent stopped")
}

// Running reports whether the agent's background loop is active.
func (a *Agent) Running() bool {
	a.runMu.Lock()
	defer a.runMu.Unlock()
	return a.running
}

// TimeSinceMotion returns the time elapsed since the last motion event.
// ok is false when no motion has been seen yet.
func (a *Agent) TimeSinceMotion() (elapsed time.Duration, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastMotion.IsZero() {
		return 0, false
	}
	return time.Since(a.lastMotion), true
}

// TriggerExit manually forces the OCCUPIED→EMPTY exit path, bypassing
// the polling cadence. A no-op (not an error) when the room is not
// occupied.
func (a *Agent) TriggerExit(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.exitLocked(ctx)
}

// onMotion handles a debounced motion event.
func (a *Agent) onMotion(ctx context.Context, _ bus.Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.lastMotion = time.Now()
	previous := a.state.Current()

	if previous != state.StateEmpty {
		// Already occupied (or asleep/waking); the refreshed motion
		// time is the only effect.
		a.logger.Debug("motion while occupied, timer reset")
		return nil
	}

	if !a.state.Transition(ctx, state.StateOccupied, false) {
		return nil
	}

	a.logger.Info("entry detected, room now occupied")
	a.bus.Publish(ctx, bus.NewEvent(EventEntryDetected, agentSource, map[string]any{
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"previous_state": previous.String(),
	}))
	return nil
}

// timeoutLoop periodically checks whether the occupancy timeout has
// elapsed since the last motion.
func (a *Agent) timeoutLoop(ctx context.Context) {
	defer close(a.done)

	ticker := time.NewTicker(a.effectiveInterval())
	defer ticker.Stop()

	a.logger.Debug("timeout loop started")
	for {
		select {
		case <-ctx.Done():
			a.logger.Debug("timeout loop stopped")
			return
		case <-ticker.C:
			a.CheckTimeout(ctx)
		}
	}
}

// CheckTimeout performs one inactivity check, transitioning to EMPTY
// when the occupancy timeout has elapsed. Exposed so tests and the
// manual trigger path can invoke a check without waiting for the
// ticker.
func (a *Agent) CheckTimeout(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state.Current() != state.StateOccupied {
		return
	}
	if a.lastMotion.IsZero() {
		return
	}
	if time.Since(a.lastMotion) < a.cfg.OccupancyTimeout {
		return
	}
	a.exitLocked(ctx)
}

// exitLocked runs the OCCUPIED→EMPTY exit path. Caller holds a.mu.
func (a *Agent) exitLocked(ctx context.Context) {
	previous := a.state.Current()
	if previous != state.StateOccupied {
		return
	}

	if !a.state.Transition(ctx, state.StateEmpty, false) {
		return
	}

	timeoutMinutes := a.cfg.OccupancyTimeout.Minutes()
	a.logger.Info("exit detected, room now empty", "timeout_minutes", timeoutMinutes)

	now := time.Now().UTC().Format(time.RFC3339)
	a.bus.Publish(ctx, bus.NewEvent(EventExitDetected, agentSource, map[string]any{
		"timestamp":       now,
		"previous_state":  previous.String(),
		"timeout_minutes": timeoutMinutes,
	}))
	a.bus.Publish(ctx, bus.NewEvent(EventRoomEmptyTimeout, agentSource, map[string]any{
		"timestamp":       now,
		"elapsed_minutes": timeoutMinutes,
	}))
}

// effectiveInterval caps the configured check interval at half the
// occupancy timeout so short timeouts are detected within one timeout
// period, with a floor to avoid a busy loop.
func (a *Agent) effectiveInterval() time.Duration {
	interval := a.cfg.CheckInterval
	if a.cfg.OccupancyTimeout > 0 && interval > a.cfg.OccupancyTimeout/2 {
		interval = a.cfg.OccupancyTimeout / 2
	}
	if interval < minCheckInterval {
		interval = minCheckInterval
	}
	return interval
}
