// Package mqtt provides MQTT client connectivity for Arvis.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// Arvis uses MQTT as the hardware transport connecting the assistant
// core to the room's devices: PIR motion sensors, the LED light
// controller, smart plugs, and the speech output service. The broker
// decouples the core from device firmware.
//
//	Arvis Core ↔ MQTT Broker ↔ Room Hardware
//
// # Security Considerations
//
//   - TLS is required for anything beyond a single-host deployment
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to all motion sensors
//	err = client.Subscribe(mqtt.Topics{}.AllSensorMotion(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Turn a plug on
//	topic := mqtt.Topics{}.PlugPower("heater")
//	client.Publish(topic, []byte(`{"on":true}`), 1, false)
package mqtt
