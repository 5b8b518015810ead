// Package intent routes structured action requests to their handlers.
//
// An Intent is "what was asked for", an action name plus parameters,
// regardless of whether it came from a spoken command, the presence
// agent, or the HTTP API. The Router decouples that request from "how
// it is fulfilled": handlers are plain functions registered against an
// action name in an explicit map (no annotation machinery).
//
// # Dispatch contract
//
//   - No handler bound: the router speaks a fallback response and
//     reports handled=false. This is an expected outcome, not an error.
//   - Handler returns an error or panics: caught at the router
//     boundary, logged, converted to a generic spoken failure,
//     handled=false. Faults never propagate to the dispatcher's caller.
//   - Otherwise: handled=true.
//
// The router also subscribes itself to the "voice.command" bus topic
// and converts incoming payloads into Intents. Malformed payloads
// degrade to an "unknown" action, which falls through the no-handler
// path.
//
// Handler sets live in handlers_*.go and are registered by explicit
// RegisterXxxHandlers routines called from the entrypoint.
package intent
