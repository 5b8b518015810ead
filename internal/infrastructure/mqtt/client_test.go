package mqtt

import (
	"errors"
	"testing"
)

// Validation paths run before any broker I/O, so they are testable
// without a connection. Broker-dependent behaviour lives in
// integration_test.go behind the integration tag.

func TestPublishValidation(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}

	if err := c.Publish("", []byte("{}"), 1, false); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic: err = %v, want ErrInvalidTopic", err)
	}
	if err := c.Publish("arvis/audio/say", []byte("{}"), 3, false); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("qos 3: err = %v, want ErrInvalidQoS", err)
	}

	oversized := make([]byte, maxPayloadSize+1)
	if err := c.Publish("arvis/audio/say", oversized, 1, false); !errors.Is(err, ErrPublishFailed) {
		t.Errorf("oversized payload: err = %v, want ErrPublishFailed", err)
	}
}

func TestSubscribeValidation(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}

	handler := func(string, []byte) error { return nil }

	if err := c.Subscribe("", 1, handler); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic: err = %v, want ErrInvalidTopic", err)
	}
	if err := c.Subscribe("arvis/sensor/+/motion", 5, handler); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("qos 5: err = %v, want ErrInvalidQoS", err)
	}
	if err := c.Subscribe("arvis/sensor/+/motion", 1, nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("nil handler: err = %v, want ErrSubscribeFailed", err)
	}
	if err := c.Unsubscribe(""); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("unsubscribe empty topic: err = %v, want ErrInvalidTopic", err)
	}
}

func TestSubscriptionTracking(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}

	if c.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", c.SubscriptionCount())
	}
	if c.HasSubscription("arvis/plug/+/state") {
		t.Error("HasSubscription() = true on empty client")
	}

	c.subscriptions["arvis/plug/+/state"] = subscription{
		topic: "arvis/plug/+/state",
		qos:   1,
	}
	if !c.HasSubscription("arvis/plug/+/state") {
		t.Error("HasSubscription() = false for tracked topic")
	}
	if c.SubscriptionCount() != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", c.SubscriptionCount())
	}
}

func TestCloseNil(t *testing.T) {
	client := &Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on zero client error = %v, want nil", err)
	}
}

func TestTopicBuilders(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"SensorMotion", topics.SensorMotion("pir-door"), "arvis/sensor/pir-door/motion"},
		{"LightSet", topics.LightSet("strip"), "arvis/light/strip/set"},
		{"LightAnimate", topics.LightAnimate("strip"), "arvis/light/strip/animate"},
		{"PlugPower", topics.PlugPower("heater"), "arvis/plug/heater/power"},
		{"PlugState", topics.PlugState("heater"), "arvis/plug/heater/state"},
		{"AudioSay", topics.AudioSay(), "arvis/audio/say"},
		{"SystemStatus", topics.SystemStatus(), "arvis/system/status"},
		{"AllSensorMotion", topics.AllSensorMotion(), "arvis/sensor/+/motion"},
		{"AllPlugStates", topics.AllPlugStates(), "arvis/plug/+/state"},
		{"AllTopics", topics.AllTopics(), "arvis/#"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}
