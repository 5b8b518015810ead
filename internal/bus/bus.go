package bus

import (
	"context"
	"fmt"
	"sync"
)

// Handler processes a single event.
//
// Handlers run synchronously inside Publish. A returned error is logged
// and discarded; it never reaches the publisher and never prevents other
// matched handlers from running. Handlers that perform slow I/O should
// hand the work off to their own goroutine so they do not stall delivery
// to unrelated subscribers.
type Handler func(ctx context.Context, evt Event) error

// Logger defines the logging interface used by the Bus.
type Logger interface {
	Debug(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Error(string, ...any) {}

// Subscription identifies a single registered handler so it can later be
// removed. Go function values are not comparable, so unsubscription works
// through this handle rather than the handler itself.
type Subscription struct {
	id      uint64
	pattern string
}

// Pattern returns the pattern this subscription was registered under.
func (s Subscription) Pattern() string { return s.pattern }

// entry pairs a handler with its subscription identity.
type entry struct {
	id      uint64
	handler Handler
}

// Bus is the in-process publish/subscribe broker.
//
// Exact-topic and wildcard subscriptions are kept in separate tables,
// both preserving registration order per pattern. The zero value is not
// usable; create instances with New.
//
// Thread Safety: all methods are safe for concurrent use.
type Bus struct {
	mu       sync.RWMutex
	exact    map[string][]entry
	wildcard map[string][]entry
	nextID   uint64
	logger   Logger
}

// New creates an empty event bus.
func New() *Bus {
	return &Bus{
		exact:    make(map[string][]entry),
		wildcard: make(map[string][]entry),
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger used for delivery diagnostics and handler
// failure reports.
func (b *Bus) SetLogger(logger Logger) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if logger != nil {
		b.logger = logger
	}
}

// Subscribe registers a handler for an exact topic or a glob pattern.
//
// Multiple handlers may share one pattern; delivery preserves their
// registration order. The returned Subscription is the handle for
// Unsubscribe.
func (b *Bus) Subscribe(pattern string, handler Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	e := entry{id: b.nextID, handler: handler}

	if IsPattern(pattern) {
		b.wildcard[pattern] = append(b.wildcard[pattern], e)
	} else {
		b.exact[pattern] = append(b.exact[pattern], e)
	}

	b.logger.Debug("subscribed", "pattern", pattern, "subscription_id", e.id)
	return Subscription{id: e.id, pattern: pattern}
}

// Unsubscribe removes the handler identified by sub.
//
// Returns true if the subscription was found and removed. Removing an
// unknown or already-removed subscription is a harmless no-op.
func (b *Bus) Unsubscribe(sub Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	table := b.exact
	if IsPattern(sub.pattern) {
		table = b.wildcard
	}

	entries := table[sub.pattern]
	for i, e := range entries {
		if e.id == sub.id {
			table[sub.pattern] = append(entries[:i], entries[i+1:]...)
			if len(table[sub.pattern]) == 0 {
				delete(table, sub.pattern)
			}
			b.logger.Debug("unsubscribed", "pattern", sub.pattern, "subscription_id", sub.id)
			return true
		}
	}
	return false
}

// Publish delivers an event to every matching subscriber.
//
// The matched set is the union of handlers registered for the exact
// event type and handlers whose wildcard pattern matches it. All matched
// handlers run before Publish returns. Each invocation is isolated: an
// error is logged, a panic is recovered and logged, and neither stops
// the remaining handlers nor reaches the caller.
func (b *Bus) Publish(ctx context.Context, evt Event) {
	matched := b.matchedHandlers(evt.Type)
	if len(matched) == 0 {
		return
	}

	b.logger.Debug("publishing event", "type", evt.Type, "source", evt.Source, "handlers", len(matched))

	for _, h := range matched {
		b.invoke(ctx, h, evt)
	}
}

// matchedHandlers snapshots the handlers matching a topic. The snapshot
// is taken under the read lock so handlers can freely mutate the
// subscription tables while running.
func (b *Bus) matchedHandlers(topic string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var matched []Handler
	for _, e := range b.exact[topic] {
		matched = append(matched, e.handler)
	}
	for pattern, entries := range b.wildcard {
		if !Match(pattern, topic) {
			continue
		}
		for _, e := range entries {
			matched = append(matched, e.handler)
		}
	}
	return matched
}

// invoke runs one handler with full fault isolation.
func (b *Bus) invoke(ctx context.Context, h Handler, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				"type", evt.Type,
				"panic", fmt.Sprintf("%v", r),
			)
		}
	}()

	if err := h(ctx, evt); err != nil {
		b.logger.Error("event handler failed", "type", evt.Type, "error", err)
	}
}

// Clear removes all subscriptions. Used at shutdown and between tests.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.exact = make(map[string][]entry)
	b.wildcard = make(map[string][]entry)
	b.logger.Debug("cleared all subscriptions")
}

// SubscriptionCount returns the total number of registered handlers
// across exact and wildcard patterns.
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for _, entries := range b.exact {
		n += len(entries)
	}
	for _, entries := range b.wildcard {
		n += len(entries)
	}
	return n
}
