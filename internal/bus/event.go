package bus

import (
	"time"

	"github.com/google/uuid"
)

// Event is an immutable fact broadcast on the bus.
//
// Events are created fresh for each publish, identified by a
// dot-namespaced type string, and live only for the duration of
// dispatch; they are never persisted.
type Event struct {
	// ID uniquely identifies this event instance.
	ID string `json:"id"`

	// Type is the dot-namespaced event type (e.g. "presence.motion_detected").
	Type string `json:"type"`

	// Payload carries event-specific data. Treat as read-only after creation.
	Payload map[string]any `json:"payload,omitempty"`

	// Timestamp records when the event was created.
	Timestamp time.Time `json:"timestamp"`

	// Source identifies the component that produced the event.
	Source string `json:"source"`
}

// NewEvent creates an Event with a fresh ID and the current time.
//
// A nil payload is replaced with an empty map so handlers never have to
// nil-check before reading.
func NewEvent(eventType, source string, payload map[string]any) Event {
	if payload == nil {
		payload = map[string]any{}
	}
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
		Source:    source,
	}
}
