// Package hardware adapts the room's physical devices to the
// interfaces the assistant's coordination layer expects.
//
// Three adapters live here, all speaking MQTT:
//
//   - Lights: the LED light controller (arvis/light/{id}/set and
//     arvis/light/{id}/animate). Tracks the last commanded state so
//     status queries answer without a round trip.
//   - Plugs: smart plugs (arvis/plug/{id}/power commands,
//     arvis/plug/{id}/state retained status). A retained-state cache
//     keeps IsOn answers current across restarts.
//   - Speaker: the speech output service (arvis/audio/say).
//
// Adapters are intentionally thin: they translate commands to JSON
// payloads and report success or failure. Decisions about WHAT to do
// belong to the intent handlers and the scene activator.
package hardware
