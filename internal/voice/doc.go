// Package voice turns captured speech into intents on the event bus.
//
// The pipeline is two pluggable stages:
//
//	audio → Transcriber → text → IntentExtractor → voice.command event
//
// Both stages are interfaces because the backends are deployment
// choices (a local transcription model, a hosted one, a rule-based
// extractor). The pipeline owns only the plumbing between them: stage
// sequencing, failure responses, and publishing the resulting
// voice.command event for the intent router.
//
// Failure handling is conversational rather than propagated: a dead
// backend makes the assistant say so out loud, because the person who
// spoke is the one who needs to know.
package voice
