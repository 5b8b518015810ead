package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/arman-h/arvis-core/internal/bus"
	"github.com/arman-h/arvis-core/internal/infrastructure/mqtt"
)

// detectorSource identifies the detector on published events.
const detectorSource = "motion_detector"

// motionQoS is the QoS for sensor subscriptions. At-least-once: the
// debounce window absorbs duplicates.
const motionQoS = 1

// Subscriber is the interface the detector needs from the MQTT client.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// Publisher is the interface for publishing motion events on the bus.
type Publisher interface {
	Publish(ctx context.Context, evt bus.Event)
}

// motionMessage is the payload published by motion sensors.
type motionMessage struct {
	Motion bool `json:"motion"`
}

// Detector turns raw MQTT motion signals into debounced bus events.
//
// PIR sensors chatter: a single pass through the room can raise several
// signals within a second. The detector suppresses signals arriving
// faster than the debounce window (per sensor), so downstream
// subscribers see one motion event per actual movement.
type Detector struct {
	mqtt     Subscriber
	bus      Publisher
	debounce time.Duration

	mu         sync.Mutex
	lastSignal map[string]time.Time

	runMu   sync.Mutex
	running bool

	logger Logger
}

// NewDetector creates a motion detector.
func NewDetector(subscriber Subscriber, publisher Publisher, debounce time.Duration) *Detector {
	return &Detector{
		mqtt:       subscriber,
		bus:        publisher,
		debounce:   debounce,
		lastSignal: make(map[string]time.Time),
		logger:     noopLogger{},
	}
}

// SetLogger sets the logger for the detector.
func (d *Detector) SetLogger(logger Logger) {
	if logger != nil {
		d.logger = logger
	}
}

// Start subscribes to all sensor motion topics.
func (d *Detector) Start(ctx context.Context) error {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	if d.running {
		d.logger.Warn("motion detector already running")
		return nil
	}

	topic := mqtt.Topics{}.AllSensorMotion()
	err := d.mqtt.Subscribe(topic, motionQoS, func(topic string, payload []byte) error {
		return d.onSignal(ctx, topic, payload)
	})
	if err != nil {
		return fmt.Errorf("subscribing to motion topics: %w", err)
	}

	d.running = true
	d.logger.Info("motion detector started", "debounce", d.debounce)
	return nil
}

// Stop removes the sensor subscription.
func (d *Detector) Stop() error {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	if !d.running {
		return nil
	}

	if err := d.mqtt.Unsubscribe(mqtt.Topics{}.AllSensorMotion()); err != nil {
		return fmt.Errorf("unsubscribing from motion topics: %w", err)
	}
	d.running = false
	d.logger.Info("motion detector stopped")
	return nil
}

// TriggerMotion injects a motion signal for a sensor, bypassing MQTT.
// Used by the HTTP API and tests; subject to the same debounce as real
// signals.
func (d *Detector) TriggerMotion(ctx context.Context, sensorID string) {
	d.signal(ctx, sensorID)
}

// onSignal handles one raw MQTT motion message.
func (d *Detector) onSignal(ctx context.Context, topic string, payload []byte) error {
	var msg motionMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("parsing motion payload on %s: %w", topic, err)
	}
	if !msg.Motion {
		// Clear-signals (motion ended) carry no information the agent
		// needs; the inactivity timeout owns that side.
		return nil
	}

	d.signal(ctx, sensorIDFromTopic(topic))
	return nil
}

// signal applies the debounce window and publishes the motion event.
func (d *Detector) signal(ctx context.Context, sensorID string) {
	now := time.Now()

	d.mu.Lock()
	last, seen := d.lastSignal[sensorID]
	if seen && now.Sub(last) < d.debounce {
		d.mu.Unlock()
		d.logger.Debug("motion signal debounced", "sensor_id", sensorID)
		return
	}
	d.lastSignal[sensorID] = now
	d.mu.Unlock()

	d.bus.Publish(ctx, bus.NewEvent(EventMotionDetected, detectorSource, map[string]any{
		"sensor_id": sensorID,
	}))
}

// sensorIDFromTopic extracts the sensor ID from an arvis/sensor/{id}/motion topic.
func sensorIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) >= 3 {
		return parts[2]
	}
	return topic
}
