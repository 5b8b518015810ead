//go:build integration

package mqtt

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/arman-h/arvis-core/internal/infrastructure/config"
)

// Integration tests for live broker behaviour.
// These tests require a running MQTT broker at 127.0.0.1:1883.
//
// Run with:
//   go test -tags=integration -v ./internal/infrastructure/mqtt/...

func integrationConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "arvis-integration-test",
			TLS:      false,
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

func TestIntegration_ConnectAndClose(t *testing.T) {
	client, err := Connect(integrationConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect")
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close")
	}
}

func TestIntegration_ConnectInvalidBroker(t *testing.T) {
	cfg := integrationConfig()
	cfg.Broker.Port = 19999

	_, err := Connect(cfg)
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestIntegration_PublishSubscribeRoundTrip(t *testing.T) {
	cfg := integrationConfig()
	cfg.Broker.ClientID = "arvis-int-roundtrip"

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	var mu sync.Mutex
	var received []string

	topic := Topics{}.SensorMotion("pir-test")
	err = client.Subscribe(Topics{}.AllSensorMotion(), 1, func(topic string, payload []byte) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, string(payload))
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if err := client.Publish(topic, []byte(`{"motion":true}`), 1, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		mu.Lock()
		n := len(received)
		mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("message never delivered")
		case <-time.After(50 * time.Millisecond):
		}
	}

	if err := client.Unsubscribe(Topics{}.AllSensorMotion()); err != nil {
		t.Errorf("Unsubscribe() error = %v", err)
	}
	if client.HasSubscription(Topics{}.AllSensorMotion()) {
		t.Error("subscription still tracked after Unsubscribe")
	}
}
