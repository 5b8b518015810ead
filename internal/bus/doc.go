// Package bus provides the in-process publish/subscribe event bus for
// Arvis Core.
//
// Every component communicates through the bus: sensors publish raw
// observations, agents derive higher-level events from them, and the
// intent router listens for fully-formed commands. The bus is the only
// coupling point between producers and consumers.
//
// # Topics
//
// Event types are dot-namespaced strings (e.g. "presence.motion_detected").
// Subscriptions are either exact topics or glob patterns:
//
//   - "room.state_changed"  exact match
//   - "presence.*"          one or more segments under presence
//   - "*"                   every event
//
// Pattern matching is segment-aware on the "." delimiter; see Match for
// the full rules.
//
// # Delivery
//
// Publish is a synchronisation point: it invokes every matched handler
// before returning. Handlers are fully isolated from each other: an
// error or panic in one handler is logged and does not affect the
// remaining handlers or the publisher. Per-pattern registration order is
// preserved; no ordering is promised between different patterns.
//
// # Thread Safety
//
// All methods are safe for concurrent use. Subscription tables are
// mutex-protected and handlers are invoked without the lock held, so a
// handler may itself subscribe, unsubscribe, or publish.
package bus
