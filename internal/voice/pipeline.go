package voice

import (
	"context"
	"errors"
	"fmt"

	"github.com/arman-h/arvis-core/internal/bus"
	"github.com/arman-h/arvis-core/internal/intent"
)

// pipelineSource identifies the pipeline on published events.
const pipelineSource = "voice_pipeline"

// Spoken responses for pipeline failures.
const (
	responseBackendOffline = "I can't hear right now."
	responseNotUnderstood  = "Sorry, I didn't catch that."
)

// ErrBackendOffline is returned by a Transcriber or IntentExtractor
// when its backing service is unreachable. The pipeline treats it as a
// temporary condition and apologises rather than failing silently.
var ErrBackendOffline = errors.New("voice: backend offline")

// Transcriber converts captured audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Extraction is the structured result of intent extraction.
type Extraction struct {
	Action string
	Params map[string]any
}

// IntentExtractor converts a transcript into a structured intent.
//
// Unrecognised text is not an error: extractors should return an
// Extraction with an empty Action and let the router's unknown-action
// path respond.
type IntentExtractor interface {
	Extract(ctx context.Context, text string) (Extraction, error)
}

// Publisher is the interface for publishing events on the bus.
type Publisher interface {
	Publish(ctx context.Context, evt bus.Event)
}

// Speaker voices pipeline failures back to the user.
type Speaker interface {
	Say(ctx context.Context, text string) bool
}

// Logger defines the logging interface used by the Pipeline.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Pipeline runs speech through transcription and intent extraction,
// then publishes the result as a voice.command event.
type Pipeline struct {
	transcriber Transcriber
	extractor   IntentExtractor
	bus         Publisher
	speaker     Speaker
	logger      Logger
}

// NewPipeline creates a voice pipeline.
func NewPipeline(transcriber Transcriber, extractor IntentExtractor, publisher Publisher, speaker Speaker) *Pipeline {
	return &Pipeline{
		transcriber: transcriber,
		extractor:   extractor,
		bus:         publisher,
		speaker:     speaker,
		logger:      noopLogger{},
	}
}

// SetLogger sets the logger for the pipeline.
func (p *Pipeline) SetLogger(logger Logger) {
	if logger != nil {
		p.logger = logger
	}
}

// HandleAudio runs captured audio through the full pipeline.
//
// An empty transcript (silence, noise) is dropped without a response.
// Backend failures are spoken aloud and returned for logging.
func (p *Pipeline) HandleAudio(ctx context.Context, audio []byte) error {
	text, err := p.transcriber.Transcribe(ctx, audio)
	if err != nil {
		p.speakFailure(ctx, err)
		return fmt.Errorf("transcribing audio: %w", err)
	}
	if text == "" {
		p.logger.Debug("empty transcript, dropping")
		return nil
	}

	return p.HandleText(ctx, text)
}

// HandleText runs a transcript (or typed command) through intent
// extraction and publishes the voice.command event. Used directly by
// the HTTP API for text input.
func (p *Pipeline) HandleText(ctx context.Context, text string) error {
	extraction, err := p.extractor.Extract(ctx, text)
	if err != nil {
		p.speakFailure(ctx, err)
		return fmt.Errorf("extracting intent: %w", err)
	}

	p.logger.Info("voice command understood", "text", text, "action", extraction.Action)

	p.bus.Publish(ctx, bus.NewEvent(intent.EventVoiceCommand, pipelineSource, map[string]any{
		"text": text,
		"intent": map[string]any{
			"action": extraction.Action,
			"params": extraction.Params,
		},
	}))
	return nil
}

// speakFailure voices a stage failure. Offline backends get a distinct
// apology so the user knows the assistant heard them.
func (p *Pipeline) speakFailure(ctx context.Context, err error) {
	p.logger.Warn("voice pipeline failure", "error", err)
	if errors.Is(err, ErrBackendOffline) {
		p.speaker.Say(ctx, responseBackendOffline)
		return
	}
	p.speaker.Say(ctx, responseNotUnderstood)
}
