package hardware

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/arman-h/arvis-core/internal/infrastructure/mqtt"
)

// Subscriber is the subset of the MQTT client the plug adapter needs
// beyond publishing.
type Subscriber interface {
	Publisher
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// plugCommand is the payload for arvis/plug/{id}/power.
type plugCommand struct {
	On bool `json:"on"`
}

// plugState is the retained payload on arvis/plug/{id}/state.
type plugState struct {
	On bool `json:"on"`
}

// Plugs drives the room's smart plugs over MQTT.
//
// Commands go to arvis/plug/{id}/power. Each plug reports its actual
// state on a retained arvis/plug/{id}/state topic; the adapter caches
// those reports so IsOn reflects the device, not just the last command.
// Retained delivery means the cache repopulates on restart.
//
// Thread Safety: all methods are safe for concurrent use.
type Plugs struct {
	mqtt Subscriber

	// configured is the set of plug IDs this deployment controls.
	// Commands for anything else are refused.
	configured map[string]bool

	mu     sync.Mutex
	states map[string]bool

	runMu   sync.Mutex
	running bool

	logger Logger
}

// NewPlugs creates a plug adapter for the configured plug IDs.
func NewPlugs(client Subscriber, plugIDs []string) *Plugs {
	configured := make(map[string]bool, len(plugIDs))
	for _, id := range plugIDs {
		configured[id] = true
	}
	return &Plugs{
		mqtt:       client,
		configured: configured,
		states:     make(map[string]bool),
		logger:     noopLogger{},
	}
}

// SetLogger sets the logger for the adapter.
func (p *Plugs) SetLogger(logger Logger) {
	if logger != nil {
		p.logger = logger
	}
}

// Start subscribes to the retained plug state topics.
func (p *Plugs) Start(ctx context.Context) error {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	if p.running {
		p.logger.Warn("plug adapter already running")
		return nil
	}

	topic := mqtt.Topics{}.AllPlugStates()
	err := p.mqtt.Subscribe(topic, commandQoS, func(topic string, payload []byte) error {
		return p.onState(topic, payload)
	})
	if err != nil {
		return fmt.Errorf("subscribing to plug states: %w", err)
	}

	p.running = true
	return nil
}

// Stop removes the state subscription.
func (p *Plugs) Stop() error {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	if !p.running {
		return nil
	}

	if err := p.mqtt.Unsubscribe(mqtt.Topics{}.AllPlugStates()); err != nil {
		return fmt.Errorf("unsubscribing from plug states: %w", err)
	}
	p.running = false
	return nil
}

// TurnOn switches a plug on. Returns false when the plug is unknown or
// the command could not be delivered.
func (p *Plugs) TurnOn(ctx context.Context, plugID string) bool {
	return p.setPower(ctx, plugID, true)
}

// TurnOff switches a plug off. Returns false when the plug is unknown
// or the command could not be delivered.
func (p *Plugs) TurnOff(ctx context.Context, plugID string) bool {
	return p.setPower(ctx, plugID, false)
}

// IsOn reports the last known state of a plug. known is false when the
// plug has never reported state (or is not configured).
func (p *Plugs) IsOn(plugID string) (on bool, known bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	on, known = p.states[plugID]
	return on, known
}

// Known returns the configured plug IDs, for status reporting.
func (p *Plugs) Known() []string {
	ids := make([]string, 0, len(p.configured))
	for id := range p.configured {
		ids = append(ids, id)
	}
	return ids
}

func (p *Plugs) setPower(ctx context.Context, plugID string, on bool) bool {
	if err := ctx.Err(); err != nil {
		return false
	}
	if !p.configured[plugID] {
		p.logger.Warn("command for unknown plug", "plug_id", plugID)
		return false
	}

	payload, err := json.Marshal(plugCommand{On: on})
	if err != nil {
		return false
	}

	topic := mqtt.Topics{}.PlugPower(plugID)
	if err := p.mqtt.Publish(topic, payload, commandQoS, false); err != nil {
		p.logger.Warn("plug command failed", "plug_id", plugID, "error", err)
		return false
	}

	// Optimistic update. The retained state report will confirm or
	// correct it when the device acts on the command.
	p.mu.Lock()
	p.states[plugID] = on
	p.mu.Unlock()

	p.logger.Debug("plug command sent", "plug_id", plugID, "on", on)
	return true
}

// onState handles a retained plug state report.
func (p *Plugs) onState(topic string, payload []byte) error {
	var st plugState
	if err := json.Unmarshal(payload, &st); err != nil {
		return fmt.Errorf("parsing plug state on %s: %w", topic, err)
	}

	plugID := plugIDFromTopic(topic)

	p.mu.Lock()
	p.states[plugID] = st.On
	p.mu.Unlock()

	p.logger.Debug("plug state updated", "plug_id", plugID, "on", st.On)
	return nil
}

// plugIDFromTopic extracts the plug ID from an arvis/plug/{id}/state topic.
func plugIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) >= 3 {
		return parts[2]
	}
	return topic
}
