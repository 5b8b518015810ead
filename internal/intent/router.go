package intent

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/arman-h/arvis-core/internal/bus"
)

// EventVoiceCommand is the well-known bus topic carrying fully-formed
// commands from the voice pipeline.
const EventVoiceCommand = "voice.command"

// Spoken fallback responses. A missing binding is an expected outcome
// with its own message; a handler fault gets the generic one.
const (
	responseNoHandler   = "I can't do that yet."
	responseHandlerFail = "Something went wrong."
)

// Handler fulfils a single intent action.
type Handler func(ctx context.Context, in Intent, hctx *Context) error

// Logger defines the logging interface used by the Router.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Bus is the subset of the event bus the router needs.
type Bus interface {
	Subscribe(pattern string, handler bus.Handler) bus.Subscription
	Unsubscribe(sub bus.Subscription) bool
}

// Router maps action names to handlers and dispatches intents.
//
// Thread Safety: all methods are safe for concurrent use.
type Router struct {
	bus  Bus
	hctx *Context

	mu       sync.RWMutex
	handlers map[string]Handler

	runMu   sync.Mutex
	running bool
	subs    []bus.Subscription

	logger Logger
}

// NewRouter creates a router bound to the given bus and handler context.
func NewRouter(b Bus, hctx *Context) *Router {
	return &Router{
		bus:      b,
		hctx:     hctx,
		handlers: make(map[string]Handler),
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the router.
func (r *Router) SetLogger(logger Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// Register binds a handler to an action name.
//
// Re-registering an action replaces the previous binding; last
// registration wins. This is a deliberate design choice, not an error;
// it lets later initialisation stages override defaults.
func (r *Router) Register(action string, handler Handler) {
	r.mu.Lock()
	_, replaced := r.handlers[action]
	r.handlers[action] = handler
	r.mu.Unlock()

	if replaced {
		r.logger.Warn("replacing handler binding", "action", action)
	} else {
		r.logger.Debug("registered handler", "action", action)
	}
}

// Actions returns the sorted list of registered action names.
func (r *Router) Actions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	actions := make([]string, 0, len(r.handlers))
	for action := range r.handlers {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	return actions
}

// Start subscribes the router to the voice.command topic.
func (r *Router) Start() {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	if r.running {
		r.logger.Warn("router already running")
		return
	}
	r.running = true
	r.subs = append(r.subs, r.bus.Subscribe(EventVoiceCommand, r.onVoiceCommand))

	r.mu.RLock()
	count := len(r.handlers)
	r.mu.RUnlock()
	r.logger.Info("intent router started", "handlers", count)
}

// Stop removes the router's bus subscriptions.
func (r *Router) Stop() {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	if !r.running {
		return
	}
	for _, sub := range r.subs {
		r.bus.Unsubscribe(sub)
	}
	r.subs = nil
	r.running = false
	r.logger.Info("intent router stopped")
}

// BindEvent subscribes the router to an additional bus topic and maps
// each received event to a fixed action, with the event payload as the
// intent parameters. Used to turn presence notifications into scene
// intents without a bespoke subscriber.
//
// Bindings made before Stop are removed by Stop; bindings made while
// stopped take effect immediately and are removed by the next Stop.
func (r *Router) BindEvent(eventType, action string) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	sub := r.bus.Subscribe(eventType, func(ctx context.Context, evt bus.Event) error {
		in := New(action, evt.Source, evt.Payload)
		r.Dispatch(ctx, in)
		return nil
	})
	r.subs = append(r.subs, sub)
	r.logger.Debug("bound event to action", "event", eventType, "action", action)
}

// Dispatch routes an intent to its registered handler.
//
// Returns true only when a handler was found and completed without
// fault. A missing binding speaks the "can't do that" response; a
// handler error or panic is logged and speaks the generic failure. The
// router never propagates a handler fault to its own caller.
func (r *Router) Dispatch(ctx context.Context, in Intent) bool {
	r.mu.RLock()
	handler := r.handlers[in.Action]
	r.mu.RUnlock()

	if handler == nil {
		r.logger.Warn("no handler for action", "action", in.Action, "source", in.Source)
		r.hctx.Say(ctx, responseNoHandler)
		return false
	}

	if err := r.invoke(ctx, handler, in); err != nil {
		r.logger.Error("handler failed", "action", in.Action, "error", err)
		r.hctx.Say(ctx, responseHandlerFail)
		return false
	}

	r.logger.Debug("handler executed", "action", in.Action)
	return true
}

// invoke runs a handler, converting panics into errors.
func (r *Router) invoke(ctx context.Context, handler Handler, in Intent) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panic: %v", rec)
		}
	}()
	return handler(ctx, in, r.hctx)
}

// onVoiceCommand converts a voice.command event into an Intent and
// dispatches it. The conversion never fails hard: anything malformed
// degrades to the "unknown" action.
func (r *Router) onVoiceCommand(ctx context.Context, evt bus.Event) error {
	in := intentFromPayload(evt.Payload)
	r.logger.Info("routing voice intent", "action", in.Action)
	r.Dispatch(ctx, in)
	return nil
}

// intentFromPayload extracts an Intent from a voice.command payload of
// the shape {"text": ..., "intent": {"action": ..., "params": {...}}}.
func intentFromPayload(payload map[string]any) Intent {
	in := Intent{
		Action: ActionUnknown,
		Params: map[string]any{},
		Source: "voice",
	}
	if payload == nil {
		return in
	}

	if text, ok := payload["text"].(string); ok {
		in.RawText = text
	}

	data, ok := payload["intent"].(map[string]any)
	if !ok {
		return in
	}
	if action, ok := data["action"].(string); ok && action != "" {
		in.Action = action
	}
	if params, ok := data["params"].(map[string]any); ok {
		in.Params = params
	}
	return in
}
