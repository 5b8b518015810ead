package hardware

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/arman-h/arvis-core/internal/infrastructure/mqtt"
	"github.com/arman-h/arvis-core/internal/scene"
)

// commandQoS is the QoS for device commands. At-least-once: devices
// treat repeated commands as idempotent.
const commandQoS = 1

// Publisher is the interface the adapters need from the MQTT client.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Logger defines the logging interface used by the hardware adapters.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// lightCommand is the payload for arvis/light/{id}/set.
type lightCommand struct {
	On         bool   `json:"on"`
	Colour     string `json:"colour,omitempty"`
	Brightness int    `json:"brightness,omitempty"`
}

// animateCommand is the payload for arvis/light/{id}/animate.
type animateCommand struct {
	Animation string `json:"animation"`
}

// Lights drives the room's LED light controller over MQTT.
//
// It tracks the last commanded state (power and active scene) so the
// assistant can answer status questions without querying the device.
//
// Thread Safety: all methods are safe for concurrent use.
type Lights struct {
	mqtt    Publisher
	lightID string

	mu    sync.Mutex
	on    bool
	scene string

	logger Logger
}

// NewLights creates a light adapter for the given controller ID.
func NewLights(publisher Publisher, lightID string) *Lights {
	return &Lights{
		mqtt:    publisher,
		lightID: lightID,
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the adapter.
func (l *Lights) SetLogger(logger Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// SetPower turns the lights on or off without changing colour.
func (l *Lights) SetPower(ctx context.Context, on bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(lightCommand{On: on})
	if err != nil {
		return fmt.Errorf("encoding light command: %w", err)
	}

	topic := mqtt.Topics{}.LightSet(l.lightID)
	if err := l.mqtt.Publish(topic, payload, commandQoS, false); err != nil {
		return fmt.Errorf("%w: %w", ErrCommandFailed, err)
	}

	l.mu.Lock()
	l.on = on
	if !on {
		l.scene = ""
	}
	l.mu.Unlock()

	l.logger.Debug("light power set", "light_id", l.lightID, "on", on)
	return nil
}

// Apply sets the lights to a scene's setting and records the scene as
// active. Used by the scene activator.
func (l *Lights) Apply(ctx context.Context, slug string, setting scene.LightSetting) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(lightCommand{
		On:         setting.On,
		Colour:     setting.Colour,
		Brightness: setting.Brightness,
	})
	if err != nil {
		return fmt.Errorf("encoding light command: %w", err)
	}

	topic := mqtt.Topics{}.LightSet(l.lightID)
	if err := l.mqtt.Publish(topic, payload, commandQoS, false); err != nil {
		return fmt.Errorf("%w: %w", ErrCommandFailed, err)
	}

	l.mu.Lock()
	l.on = setting.On
	if setting.On {
		l.scene = slug
	} else {
		l.scene = ""
	}
	l.mu.Unlock()

	l.logger.Debug("light scene applied", "light_id", l.lightID, "scene", slug)
	return nil
}

// Animate runs a named animation on the light controller.
func (l *Lights) Animate(ctx context.Context, animation string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(animateCommand{Animation: animation})
	if err != nil {
		return fmt.Errorf("encoding animate command: %w", err)
	}

	topic := mqtt.Topics{}.LightAnimate(l.lightID)
	if err := l.mqtt.Publish(topic, payload, commandQoS, false); err != nil {
		return fmt.Errorf("%w: %w", ErrCommandFailed, err)
	}

	l.logger.Debug("light animation started", "light_id", l.lightID, "animation", animation)
	return nil
}

// State returns the last commanded power state and active scene slug.
// The scene is empty when no scene is active.
func (l *Lights) State() (on bool, sceneSlug string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on, l.scene
}
