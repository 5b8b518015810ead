// Package api implements the HTTP REST API and WebSocket event stream
// for Arvis.
//
// This package provides:
//   - REST endpoints for room state, scenes, intents, and presence
//   - WebSocket hub streaming bus events to connected clients
//   - Middleware stack (request ID, logging, recovery, CORS)
//
// # Architecture
//
// The API server is a thin shell over the event coordination layer:
// state requests go through the state manager, scene activations
// through the activator, and commands through the intent router, the
// same paths voice commands take. The WebSocket hub relays every bus
// event, so a dashboard sees exactly what the assistant's internals see.
//
// # Graceful Degradation
//
// The server operates without the voice pipeline or hardware attached;
// the affected endpoints report the condition rather than failing the
// whole process.
package api
