package mqtt

import "fmt"

// Topic prefixes for the Arvis MQTT namespace.
//
// Hardware topics use the flat scheme: arvis/{kind}/{id}/{channel}.
// Everything the assistant talks to over MQTT lives under this prefix,
// so a single broker ACL entry covers the whole deployment.
const (
	// TopicPrefix is the root of all Arvis topics.
	TopicPrefix = "arvis"

	// TopicPrefixSystem is the base for system-level topics.
	TopicPrefixSystem = "arvis/system"
)

// Topics provides builders for Arvis MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
//
//	topics := mqtt.Topics{}
//	cmdTopic := topics.PlugPower("heater")
//	// Returns: "arvis/plug/heater/power"
type Topics struct{}

// SensorMotion returns the topic a motion sensor publishes on.
//
// Example: arvis/sensor/pir-door/motion
func (Topics) SensorMotion(sensorID string) string {
	return fmt.Sprintf("%s/sensor/%s/motion", TopicPrefix, sensorID)
}

// LightSet returns the command topic for a light controller.
//
// Example: arvis/light/strip/set
func (Topics) LightSet(lightID string) string {
	return fmt.Sprintf("%s/light/%s/set", TopicPrefix, lightID)
}

// LightAnimate returns the animation command topic for a light controller.
//
// Example: arvis/light/strip/animate
func (Topics) LightAnimate(lightID string) string {
	return fmt.Sprintf("%s/light/%s/animate", TopicPrefix, lightID)
}

// PlugPower returns the command topic for a smart plug.
//
// Example: arvis/plug/heater/power
func (Topics) PlugPower(plugID string) string {
	return fmt.Sprintf("%s/plug/%s/power", TopicPrefix, plugID)
}

// PlugState returns the retained state topic for a smart plug.
//
// Example: arvis/plug/heater/state
func (Topics) PlugState(plugID string) string {
	return fmt.Sprintf("%s/plug/%s/state", TopicPrefix, plugID)
}

// AudioSay returns the topic the speech output service listens on.
//
// Example: arvis/audio/say
func (Topics) AudioSay() string {
	return fmt.Sprintf("%s/audio/say", TopicPrefix)
}

// SystemStatus returns the assistant's online/offline status topic.
//
// Example: arvis/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// Wildcard patterns for subscriptions.

// AllSensorMotion returns a pattern matching every motion sensor.
//
// Pattern: arvis/sensor/+/motion
func (Topics) AllSensorMotion() string {
	return fmt.Sprintf("%s/sensor/+/motion", TopicPrefix)
}

// AllPlugStates returns a pattern matching every plug's retained state.
//
// Pattern: arvis/plug/+/state
func (Topics) AllPlugStates() string {
	return fmt.Sprintf("%s/plug/+/state", TopicPrefix)
}

// AllTopics returns a pattern matching the entire Arvis namespace.
// Use with caution - this receives ALL traffic.
//
// Pattern: arvis/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
