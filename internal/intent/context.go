package intent

import (
	"context"

	"github.com/arman-h/arvis-core/internal/bus"
	"github.com/arman-h/arvis-core/internal/scene"
	"github.com/arman-h/arvis-core/internal/state"
)

// Publisher is the interface handlers use to publish follow-up events.
type Publisher interface {
	Publish(ctx context.Context, evt bus.Event)
}

// Speaker speaks a text response to the user.
//
// The boolean result reports whether playback was accepted; handlers
// treat a false result as best-effort and carry on.
type Speaker interface {
	Say(ctx context.Context, text string) bool
}

// LightController is the narrow contract the handlers need from the
// lighting hardware adapter.
type LightController interface {
	// SetPower turns the light strip on or off.
	SetPower(ctx context.Context, on bool) error

	// Animate plays a named animation (e.g. "golden_shimmer", "fade_out").
	Animate(ctx context.Context, animation string) error

	// State reports the last commanded power state and active scene slug
	// (empty when no scene is active).
	State() (on bool, scene string)
}

// PlugController is the narrow contract for smart-plug power control.
// All results are booleans: a missing device or a failed command is an
// expected outcome, never a fault.
type PlugController interface {
	// TurnOn powers a device on. Returns false if the device is unknown
	// or the command could not be sent.
	TurnOn(ctx context.Context, deviceID string) bool

	// TurnOff powers a device off, with the same result semantics.
	TurnOff(ctx context.Context, deviceID string) bool

	// IsOn reports the last known power state. known is false when the
	// device has never been seen.
	IsOn(deviceID string) (on, known bool)
}

// SceneActivator applies a named scene. The returned scene lets the
// caller inspect what was applied (e.g. whether it carried its own
// voice line).
type SceneActivator interface {
	Activate(ctx context.Context, slug, trigger string) (*scene.Scene, error)
}

// Context is the dependency bundle passed to every intent handler.
//
// It is purely a reference carrier: it holds no state of its own and
// enforces no invariants. Any field may be nil when the corresponding
// collaborator is not configured; handlers degrade gracefully.
type Context struct {
	State  *state.Manager
	Bus    Publisher
	Lights LightController
	Plugs  PlugController
	Speech Speaker
	Scenes SceneActivator
}

// Say speaks via the configured speaker, if any.
func (c *Context) Say(ctx context.Context, text string) {
	if c.Speech != nil {
		c.Speech.Say(ctx, text)
	}
}
