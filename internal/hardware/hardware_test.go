package hardware

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/arman-h/arvis-core/internal/infrastructure/mqtt"
	"github.com/arman-h/arvis-core/internal/scene"
)

// fakeMQTT records published messages and captures subscriptions so
// tests can inject device reports.
type fakeMQTT struct {
	mu        sync.Mutex
	published []publishedMsg
	handlers  map[string]mqtt.MessageHandler
	failPubl  bool
	unsubbed  []string
	subErr    error
}

type publishedMsg struct {
	topic    string
	payload  []byte
	retained bool
}

func newFakeMQTT() *fakeMQTT {
	return &fakeMQTT{handlers: make(map[string]mqtt.MessageHandler)}
}

func (f *fakeMQTT) Publish(topic string, payload []byte, qos byte, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPubl {
		return errors.New("broker unreachable")
	}
	f.published = append(f.published, publishedMsg{topic: topic, payload: payload, retained: retained})
	return nil
}

func (f *fakeMQTT) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subErr != nil {
		return f.subErr
	}
	f.handlers[topic] = handler
	return nil
}

func (f *fakeMQTT) Unsubscribe(topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.handlers, topic)
	f.unsubbed = append(f.unsubbed, topic)
	return nil
}

func (f *fakeMQTT) lastPublished(t *testing.T) publishedMsg {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.published) == 0 {
		t.Fatal("nothing published")
	}
	return f.published[len(f.published)-1]
}

func (f *fakeMQTT) deliver(t *testing.T, pattern, topic string, payload []byte) {
	t.Helper()
	f.mu.Lock()
	handler, ok := f.handlers[pattern]
	f.mu.Unlock()
	if !ok {
		t.Fatalf("no handler registered for %s", pattern)
	}
	if err := handler(topic, payload); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

// =============================================================================
// Lights
// =============================================================================

func TestLightsSetPower(t *testing.T) {
	fake := newFakeMQTT()
	lights := NewLights(fake, "strip")
	ctx := context.Background()

	if err := lights.SetPower(ctx, true); err != nil {
		t.Fatalf("SetPower(on) error = %v", err)
	}

	msg := fake.lastPublished(t)
	if msg.topic != "arvis/light/strip/set" {
		t.Errorf("topic = %s", msg.topic)
	}
	var cmd lightCommand
	if err := json.Unmarshal(msg.payload, &cmd); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if !cmd.On {
		t.Error("command on = false, want true")
	}

	on, slug := lights.State()
	if !on || slug != "" {
		t.Errorf("State() = %v, %q; want true, \"\"", on, slug)
	}
}

func TestLightsApplyTracksScene(t *testing.T) {
	fake := newFakeMQTT()
	lights := NewLights(fake, "strip")
	ctx := context.Background()

	setting := scene.LightSetting{On: true, Colour: "#FFB464", Brightness: 200}
	if err := lights.Apply(ctx, "entry", setting); err != nil {
		t.Fatalf("Apply error = %v", err)
	}

	on, slug := lights.State()
	if !on || slug != "entry" {
		t.Errorf("State() = %v, %q; want true, entry", on, slug)
	}

	// Turning off clears the active scene.
	if err := lights.SetPower(ctx, false); err != nil {
		t.Fatalf("SetPower(off) error = %v", err)
	}
	on, slug = lights.State()
	if on || slug != "" {
		t.Errorf("State() after off = %v, %q", on, slug)
	}
}

func TestLightsApplyOffScene(t *testing.T) {
	fake := newFakeMQTT()
	lights := NewLights(fake, "strip")

	setting := scene.LightSetting{On: false}
	if err := lights.Apply(context.Background(), "sleep", setting); err != nil {
		t.Fatalf("Apply error = %v", err)
	}

	on, slug := lights.State()
	if on || slug != "" {
		t.Errorf("off scene left State() = %v, %q", on, slug)
	}
}

func TestLightsAnimate(t *testing.T) {
	fake := newFakeMQTT()
	lights := NewLights(fake, "strip")

	if err := lights.Animate(context.Background(), "golden_shimmer"); err != nil {
		t.Fatalf("Animate error = %v", err)
	}

	msg := fake.lastPublished(t)
	if msg.topic != "arvis/light/strip/animate" {
		t.Errorf("topic = %s", msg.topic)
	}
	var cmd animateCommand
	if err := json.Unmarshal(msg.payload, &cmd); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if cmd.Animation != "golden_shimmer" {
		t.Errorf("animation = %q", cmd.Animation)
	}
}

func TestLightsPublishFailure(t *testing.T) {
	fake := newFakeMQTT()
	fake.failPubl = true
	lights := NewLights(fake, "strip")

	err := lights.SetPower(context.Background(), true)
	if !errors.Is(err, ErrCommandFailed) {
		t.Errorf("SetPower error = %v, want ErrCommandFailed", err)
	}

	// Failed command must not update tracked state.
	on, _ := lights.State()
	if on {
		t.Error("State() = on after failed command")
	}
}

// =============================================================================
// Plugs
// =============================================================================

func TestPlugsTurnOnOff(t *testing.T) {
	fake := newFakeMQTT()
	plugs := NewPlugs(fake, []string{"heater", "fan"})
	ctx := context.Background()

	if !plugs.TurnOn(ctx, "heater") {
		t.Fatal("TurnOn(heater) = false")
	}

	msg := fake.lastPublished(t)
	if msg.topic != "arvis/plug/heater/power" {
		t.Errorf("topic = %s", msg.topic)
	}

	on, known := plugs.IsOn("heater")
	if !known || !on {
		t.Errorf("IsOn(heater) = %v, %v; want true, true", on, known)
	}

	if !plugs.TurnOff(ctx, "heater") {
		t.Fatal("TurnOff(heater) = false")
	}
	on, _ = plugs.IsOn("heater")
	if on {
		t.Error("IsOn(heater) = true after TurnOff")
	}
}

func TestPlugsUnknownDevice(t *testing.T) {
	fake := newFakeMQTT()
	plugs := NewPlugs(fake, []string{"heater"})

	if plugs.TurnOn(context.Background(), "toaster") {
		t.Error("TurnOn(toaster) = true for unconfigured plug")
	}
	if len(fake.published) != 0 {
		t.Error("command published for unknown plug")
	}
	if _, known := plugs.IsOn("toaster"); known {
		t.Error("IsOn(toaster) known = true")
	}
}

func TestPlugsStateFromRetainedReport(t *testing.T) {
	fake := newFakeMQTT()
	plugs := NewPlugs(fake, []string{"heater"})

	if err := plugs.Start(context.Background()); err != nil {
		t.Fatalf("Start error = %v", err)
	}

	fake.deliver(t, "arvis/plug/+/state", "arvis/plug/heater/state", []byte(`{"on":true}`))

	on, known := plugs.IsOn("heater")
	if !known || !on {
		t.Errorf("IsOn(heater) = %v, %v after state report", on, known)
	}

	// Device report overrides the optimistic command cache.
	fake.deliver(t, "arvis/plug/+/state", "arvis/plug/heater/state", []byte(`{"on":false}`))
	on, _ = plugs.IsOn("heater")
	if on {
		t.Error("IsOn(heater) = true after off report")
	}

	if err := plugs.Stop(); err != nil {
		t.Fatalf("Stop error = %v", err)
	}
	if len(fake.unsubbed) != 1 {
		t.Errorf("unsubscribed topics = %v", fake.unsubbed)
	}
}

func TestPlugsPublishFailure(t *testing.T) {
	fake := newFakeMQTT()
	fake.failPubl = true
	plugs := NewPlugs(fake, []string{"heater"})

	if plugs.TurnOn(context.Background(), "heater") {
		t.Error("TurnOn = true when publish fails")
	}
	if _, known := plugs.IsOn("heater"); known {
		t.Error("failed command cached a state")
	}
}

// =============================================================================
// Speaker
// =============================================================================

func TestSpeakerSay(t *testing.T) {
	fake := newFakeMQTT()
	speaker := NewSpeaker(fake)

	if !speaker.Say(context.Background(), "Welcome back.") {
		t.Fatal("Say = false")
	}

	msg := fake.lastPublished(t)
	if msg.topic != "arvis/audio/say" {
		t.Errorf("topic = %s", msg.topic)
	}
	var cmd sayCommand
	if err := json.Unmarshal(msg.payload, &cmd); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if cmd.Text != "Welcome back." {
		t.Errorf("text = %q", cmd.Text)
	}
}

func TestSpeakerEmptyText(t *testing.T) {
	fake := newFakeMQTT()
	speaker := NewSpeaker(fake)

	if !speaker.Say(context.Background(), "") {
		t.Error("Say(\"\") = false, want true no-op")
	}
	if len(fake.published) != 0 {
		t.Error("empty text was published")
	}
}

func TestSpeakerDeliveryFailure(t *testing.T) {
	fake := newFakeMQTT()
	fake.failPubl = true
	speaker := NewSpeaker(fake)

	if speaker.Say(context.Background(), "Hello.") {
		t.Error("Say = true when publish fails")
	}
}
