package scene

import (
	"context"
	"errors"
	"fmt"

	"github.com/arman-h/arvis-core/internal/bus"
)

// EventSceneActivated is published after a scene has been applied.
const EventSceneActivated = "scene.activated"

// eventSource identifies the activator on published events.
const eventSource = "scene_activator"

// LightCommander is the interface the activator needs from the lighting
// adapter. The slug lets the adapter track which scene its strip is in.
type LightCommander interface {
	Apply(ctx context.Context, slug string, setting LightSetting) error
	Animate(ctx context.Context, animation string) error
}

// Speaker speaks a scene's voice line.
type Speaker interface {
	Say(ctx context.Context, text string) bool
}

// Publisher is the interface for announcing activations on the bus.
type Publisher interface {
	Publish(ctx context.Context, evt bus.Event)
}

// Activator applies scenes: lights first, then animation, then the
// voice line, then a scene.activated event.
//
// Thread Safety: Activate is safe for concurrent use.
type Activator struct {
	registry *Registry
	lights   LightCommander
	speech   Speaker
	bus      Publisher
	logger   Logger
}

// NewActivator creates a scene activator. lights, speech, and publisher
// may each be nil; the corresponding step is skipped.
func NewActivator(registry *Registry, lights LightCommander, speech Speaker, publisher Publisher) *Activator {
	return &Activator{
		registry: registry,
		lights:   lights,
		speech:   speech,
		bus:      publisher,
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the activator.
func (a *Activator) SetLogger(logger Logger) {
	if logger != nil {
		a.logger = logger
	}
}

// Activate applies the scene identified by slug (falling back to ID
// lookup) and returns the applied scene.
//
// Returns ErrSceneNotFound for an unknown scene and ErrSceneDisabled
// for a disabled one; both are expected outcomes for the caller to
// translate into a spoken response.
func (a *Activator) Activate(ctx context.Context, slug, trigger string) (*Scene, error) {
	s, err := a.registry.GetBySlug(ctx, slug)
	if errors.Is(err, ErrSceneNotFound) {
		s, err = a.registry.Get(ctx, slug)
	}
	if err != nil {
		return nil, err
	}

	if !s.Enabled {
		return nil, ErrSceneDisabled
	}

	a.logger.Info("activating scene", "slug", s.Slug, "trigger", trigger)

	if a.lights != nil && s.Lights != nil {
		if err := a.lights.Apply(ctx, s.Slug, *s.Lights); err != nil {
			return nil, fmt.Errorf("applying scene lights: %w", err)
		}
	}

	if a.lights != nil && s.Animation != nil {
		if err := a.lights.Animate(ctx, *s.Animation); err != nil {
			// Animation is decoration; log and continue with the rest.
			a.logger.Warn("scene animation failed", "slug", s.Slug, "error", err)
		}
	}

	if a.speech != nil && s.Voice != nil {
		a.speech.Say(ctx, *s.Voice)
	}

	if a.bus != nil {
		a.bus.Publish(ctx, bus.NewEvent(EventSceneActivated, eventSource, map[string]any{
			"scene_id": s.ID,
			"slug":     s.Slug,
			"trigger":  trigger,
		}))
	}

	return s, nil
}
